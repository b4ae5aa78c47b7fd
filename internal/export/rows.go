// Package export renders reports as CSV or XLSX, one row per report.
package export

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"reportingest/internal/domain"
)

// Format selects the export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format query value; empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// columns defines the header row shared by both encodings.
var columns = []string{
	"ID",
	"Type",
	"Date",
	"Time",
	"From",
	"To",
	"Total",
	"Company Name",
	"VLT Rows",
	"Image Path",
	"Image URL",
	"Conversation ID",
	"Created At",
}

const totalColumn = 6

// reportToRow flattens a report into the column layout. Fields a report type
// does not have are left empty.
func reportToRow(doc *domain.ReportDocument) []string {
	row := make([]string, len(columns))
	row[0] = doc.ID.String()
	row[1] = string(doc.Type)
	row[9] = doc.ImagePath
	row[10] = doc.ImageURL
	row[11] = deref(doc.ConversationID)
	row[12] = doc.CreatedAt.Format(time.RFC3339)

	switch f := doc.Fields.(type) {
	case *domain.ChiusuraPOSFields:
		row[2] = deref(f.Data)
		row[3] = deref(f.Ora)
		row[totalColumn] = formatMoney(f.Totale)
		row[7] = deref(f.NomeAzienda)
	case *domain.DailySpieloFields:
		row[2] = deref(f.Data)
		row[totalColumn] = formatMoney(f.Totale)
		row[7] = deref(f.NomeAzienda)
		row[8] = strconv.Itoa(len(f.VLT))
	case *domain.NovolineRangeFields:
		row[2] = deref(f.Data)
		row[4] = deref(f.From)
		row[5] = deref(f.To)
		row[totalColumn] = formatMoney(f.Totale)
		row[8] = strconv.Itoa(len(f.VLT))
	}
	return row
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns "<name>_<YYYY-MM-DD>.<ext>" for Content-Disposition.
func BuildFilename(name string, format Format, now time.Time) string {
	sanitized := SanitizeFilename(name)
	if sanitized == "" {
		sanitized = "reports"
	}
	return fmt.Sprintf("%s_%s.%s", sanitized, now.Format("2006-01-02"), format)
}
