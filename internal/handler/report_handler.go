package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reportingest/internal/domain"
	"reportingest/internal/export"
	"reportingest/internal/service"
)

// ReportHandler handles report and scan endpoints.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// List handles GET /api/v1/reports
// @Summary List reports
// @Description Lists stored reports, newest first
// @Tags reports
// @Produce json
// @Param type query string false "Report type (chiusura_pos, daily_report_spielo, report_novoline_range, or any stored tool name)"
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Pagination limit (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.ReportDocument,meta=PagMeta}
// @Failure 400 {object} ErrorResponseBody
// @Failure 401 {object} ErrorResponseBody
// @Failure 500 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /api/v1/reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	offset, limit, ok := parsePagination(c)
	if !ok {
		return
	}

	filters := domain.ReportFilters{
		Type:   domain.ReportType(c.Query("type")),
		Offset: offset,
		Limit:  limit,
	}
	reports, total, err := h.reportService.List(c.Request.Context(), filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, reports, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/reports/:id
// @Summary Get a report
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} Response{data=domain.ReportDocument}
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Report not found"
// @Security BearerAuth
// @Router /api/v1/reports/{id} [get]
func (h *ReportHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid report ID")
		return
	}

	report, err := h.reportService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, report)
}

// Export handles GET /api/v1/reports/export
// @Summary Export reports
// @Description Downloads every matching report as CSV (UTF-8 with BOM) or XLSX
// @Tags reports
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv or xlsx" default(csv)
// @Param type query string false "Report type"
// @Success 200 {file} binary "Export file"
// @Failure 400 {object} ErrorResponseBody "Unsupported format"
// @Failure 401 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /api/v1/reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", err.Error())
		return
	}

	reportType := c.Query("type")
	filename := export.BuildFilename(reportType, format, time.Now())

	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	filters := domain.ReportFilters{Type: domain.ReportType(reportType)}
	if err := h.reportService.Export(c.Request.Context(), c.Writer, filters, format); err != nil {
		if !c.Writer.Written() {
			c.Writer.Header().Del("Content-Type")
			c.Writer.Header().Del("Content-Disposition")
			HandleError(c, err)
			return
		}
		// Headers are already sent; the client sees a truncated file.
		_ = c.Error(err)
	}
}

// ListScans handles GET /api/v1/scans
// @Summary List fallback scans
// @Description Lists scan records saved when no report could be recognized
// @Tags scans
// @Produce json
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Pagination limit (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.ScanDocument,meta=PagMeta}
// @Failure 400 {object} ErrorResponseBody
// @Failure 401 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /api/v1/scans [get]
func (h *ReportHandler) ListScans(c *gin.Context) {
	offset, limit, ok := parsePagination(c)
	if !ok {
		return
	}

	scans, total, err := h.reportService.ListScans(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, scans, PagMeta{Total: total, Offset: offset, Limit: limit})
}
