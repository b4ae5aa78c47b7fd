package domain

// ReportType names the kind of document the analysis API recognized.
// Values outside the known set are kept as-is and stored with their raw arguments.
type ReportType string

const (
	ReportTypeChiusuraPOS   ReportType = "chiusura_pos"
	ReportTypeDailySpielo   ReportType = "daily_report_spielo"
	ReportTypeNovolineRange ReportType = "report_novoline_range"
)

// ScanTypeUnknown is the type stored on fallback scan records.
const ScanTypeUnknown = "unknown"

const (
	DefaultUploadsPrefix   = "uploads/"
	ImageContentTypePrefix = "image/"
)

// KnownReportTypes lists the report types with a dedicated document layout.
var KnownReportTypes = []ReportType{
	ReportTypeChiusuraPOS,
	ReportTypeDailySpielo,
	ReportTypeNovolineRange,
}

// IsKnown reports whether t has a dedicated document layout.
func (t ReportType) IsKnown() bool {
	for _, k := range KnownReportTypes {
		if t == k {
			return true
		}
	}
	return false
}

// AllowedImageTypes maps detected MIME types accepted by the upload endpoint to
// the file extension used in storage keys.
var AllowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}
