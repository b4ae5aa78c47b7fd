package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}

// --- Report Schemas (for documentation) ---

// ChiusuraPOSReport documents a stored chiusura_pos report.
type ChiusuraPOSReport struct {
	ID             string                 `json:"id" example:"3f0c6b1e-7a43-4b36-9a55-2f7d1c0e9b11"`
	Type           string                 `json:"type" example:"chiusura_pos"`
	ImagePath      string                 `json:"imagePath" example:"uploads/2024/01/scontrino.jpg"`
	ImageURL       string                 `json:"imageUrl"`
	ConversationID *string                `json:"conversationId"`
	CallID         *string                `json:"callId" example:"call_1"`
	Data           *string                `json:"data" example:"2024-01-01"`
	Ora            *string                `json:"ora" example:"23:15"`
	Totale         float64                `json:"totale" example:"100.5"`
	NomeAzienda    *string                `json:"nomeAzienda" example:"Acme"`
	RawArgs        map[string]interface{} `json:"rawArgs"`
	CreatedAt      string                 `json:"createdAt" example:"2024-01-01T23:20:00Z"`
}

// VLTRow documents one machine row of a Spielo or Novoline report.
type VLTRow struct {
	ID          string  `json:"id" example:"VLT-01"`
	Bet         float64 `json:"bet" example:"120"`
	Win         float64 `json:"win" example:"70"`
	TotalNetWin float64 `json:"totalNetWin" example:"50"`
}

// DailySpieloReport documents a stored daily_report_spielo report.
type DailySpieloReport struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type" example:"daily_report_spielo"`
	ImagePath   string                 `json:"imagePath"`
	ImageURL    string                 `json:"imageUrl"`
	Data        *string                `json:"data" example:"2024-01-01"`
	Totale      float64                `json:"totale" example:"340"`
	NomeAzienda *string                `json:"nomeAzienda"`
	VLT         []VLTRow               `json:"vlt"`
	RawArgs     map[string]interface{} `json:"rawArgs"`
	CreatedAt   string                 `json:"createdAt"`
}

// NovolineRangeReport documents a stored report_novoline_range report.
// Totale is the sum of every row's totalNetWin.
type NovolineRangeReport struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type" example:"report_novoline_range"`
	ImagePath string                 `json:"imagePath"`
	ImageURL  string                 `json:"imageUrl"`
	Data      *string                `json:"data" example:"2024-01-01"`
	From      *string                `json:"from" example:"2024-01-01"`
	To        *string                `json:"to" example:"2024-01-07"`
	Totale    float64                `json:"totale" example:"40"`
	VLT       []VLTRow               `json:"vlt"`
	RawArgs   map[string]interface{} `json:"rawArgs"`
	CreatedAt string                 `json:"createdAt"`
}

// UnknownReport documents a report whose tool name has no dedicated layout.
type UnknownReport struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type" example:"fattura"`
	ImagePath string                 `json:"imagePath"`
	ImageURL  string                 `json:"imageUrl"`
	RawArgs   map[string]interface{} `json:"rawArgs"`
	CreatedAt string                 `json:"createdAt"`
}
