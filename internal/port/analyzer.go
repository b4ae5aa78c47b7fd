package port

import (
	"context"
	"encoding/json"
)

// AnalyzeInput carries the image reference sent to the analysis API.
type AnalyzeInput struct {
	ImageURL    string
	ImagePath   string
	ContentType string
}

// AnalyzeOutput holds the raw JSON returned by the analysis API.
type AnalyzeOutput struct {
	Raw      json.RawMessage
	Provider string
}

// Analyzer abstracts the upstream document-analysis API.
type Analyzer interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeOutput, error)
}
