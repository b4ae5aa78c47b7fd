package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadEvent describes an object that finished uploading to storage.
type UploadEvent struct {
	Bucket      string
	Key         string
	ContentType string
	Metadata    map[string]string
}

// Eligible reports whether the object sits under prefix and is an image.
func (e UploadEvent) Eligible(prefix string) bool {
	return strings.HasPrefix(e.Key, prefix) && strings.HasPrefix(e.ContentType, ImageContentTypePrefix)
}

// ToolCall is one function call extracted from an analysis API response.
type ToolCall struct {
	Name         string
	Arguments    map[string]any
	RawArguments json.RawMessage
	CallID       string
}

// ReportFields is the type-specific part of a ReportDocument. Every layout keeps
// the arguments exactly as received under rawArgs.
type ReportFields interface {
	reportFields()
}

// VLTRecord is a per-machine row as returned by the analysis API.
type VLTRecord map[string]any

// ChiusuraPOSFields holds a point-of-sale closing receipt.
type ChiusuraPOSFields struct {
	Data        *string         `json:"data"`
	Ora         *string         `json:"ora"`
	Totale      float64         `json:"totale"`
	NomeAzienda *string         `json:"nomeAzienda"`
	RawArgs     json.RawMessage `json:"rawArgs,omitempty"`
}

// DailySpieloFields holds a daily gaming-machine report.
type DailySpieloFields struct {
	Data        *string         `json:"data"`
	Totale      float64         `json:"totale"`
	NomeAzienda *string         `json:"nomeAzienda"`
	VLT         []VLTRecord     `json:"vlt"`
	RawArgs     json.RawMessage `json:"rawArgs,omitempty"`
}

// NovolineRangeFields holds a date-range gaming-machine report. Totale is
// always derived from the VLT rows.
type NovolineRangeFields struct {
	Data    *string         `json:"data"`
	From    *string         `json:"from"`
	To      *string         `json:"to"`
	Totale  float64         `json:"totale"`
	VLT     []VLTRecord     `json:"vlt"`
	RawArgs json.RawMessage `json:"rawArgs,omitempty"`
}

// UnknownFields preserves the arguments of a tool call with no dedicated layout.
type UnknownFields struct {
	RawArgs json.RawMessage `json:"rawArgs"`
}

func (*ChiusuraPOSFields) reportFields()   {}
func (*DailySpieloFields) reportFields()   {}
func (*NovolineRangeFields) reportFields() {}
func (*UnknownFields) reportFields()       {}

// ReportDocument is a normalized record persisted once per tool call.
type ReportDocument struct {
	ID             uuid.UUID    `db:"id"`
	Type           ReportType   `db:"type"`
	ImagePath      string       `db:"image_path"`
	ImageURL       string       `db:"image_url"`
	ConversationID *string      `db:"conversation_id"`
	CallID         *string      `db:"call_id"`
	Fields         ReportFields `db:"-"`
	CreatedAt      time.Time    `db:"created_at"`
}

// MarshalJSON flattens the base envelope and the type-specific fields into one object.
// Base keys win on collision.
func (d ReportDocument) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"id":             d.ID,
		"type":           d.Type,
		"imagePath":      d.ImagePath,
		"imageUrl":       d.ImageURL,
		"conversationId": d.ConversationID,
		"callId":         d.CallID,
		"createdAt":      d.CreatedAt,
	}
	if d.Fields != nil {
		raw, err := json.Marshal(d.Fields)
		if err != nil {
			return nil, fmt.Errorf("marshaling report fields: %w", err)
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("flattening report fields: %w", err)
		}
		for k, v := range fields {
			if _, taken := out[k]; !taken {
				out[k] = v
			}
		}
	}
	return json.Marshal(out)
}

// DecodeReportFields rebuilds the typed fields stored for a report of type t.
func DecodeReportFields(t ReportType, raw []byte) (ReportFields, error) {
	var fields ReportFields
	switch t {
	case ReportTypeChiusuraPOS:
		fields = &ChiusuraPOSFields{}
	case ReportTypeDailySpielo:
		fields = &DailySpieloFields{}
	case ReportTypeNovolineRange:
		fields = &NovolineRangeFields{}
	default:
		fields = &UnknownFields{}
	}
	if len(raw) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(raw, fields); err != nil {
		return nil, fmt.Errorf("decoding %s fields: %w", t, err)
	}
	return fields, nil
}

// ScanDocument is the fallback record written when a response carries no
// interpretable tool call.
type ScanDocument struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Type        string          `db:"type" json:"type"`
	ImagePath   string          `db:"image_path" json:"imagePath"`
	ImageURL    string          `db:"image_url" json:"imageUrl"`
	RawResponse json.RawMessage `db:"raw_response" json:"rawResponse"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

// ReportFilters narrows report listings and exports.
type ReportFilters struct {
	Type   ReportType
	Offset int
	Limit  int
}
