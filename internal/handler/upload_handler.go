package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reportingest/internal/service"
)

// UploadHandler handles report image uploads.
type UploadHandler struct {
	uploadService service.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploadService service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// Upload handles POST /api/v1/uploads
// @Summary Upload a report image
// @Description Stores an image under the uploads prefix; the storage notification then triggers ingestion
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image (JPG, PNG, GIF or WEBP)"
// @Success 201 {object} Response{data=service.UploadResult} "Image stored"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 500 {object} ErrorResponseBody "Upload failed"
// @Security BearerAuth
// @Router /api/v1/uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.uploadService.Upload(c.Request.Context(), service.UploadInput{
		File:   file,
		Header: header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, result)
}
