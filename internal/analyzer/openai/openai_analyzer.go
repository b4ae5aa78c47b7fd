// Package openai calls the OpenAI chat completions API directly with the report
// tools attached, bypassing the hub. The raw completion is returned unchanged so
// the interpreter can read choices[0].message.tool_calls.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"reportingest/internal/analyzer"
	"reportingest/internal/config"
	"reportingest/internal/port"
)

const (
	providerName = "openai"
	userPrompt   = "Analizza questo report."
)

// Analyzer implements port.Analyzer on top of openai-go.
type Analyzer struct {
	client *openai.Client
	model  shared.ChatModel
}

// NewAnalyzer creates an OpenAI analyzer from the analyzer config.
func NewAnalyzer(cfg *config.AnalyzerConfig) (*Analyzer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai analyzer requires an api key")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.TimeoutSecs > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(cfg.TimeoutSecs)*time.Second))
	}
	return newAnalyzer(cfg.DefaultModel, opts...), nil
}

// NewAnalyzerWithOptions builds an analyzer from raw client options (useful for tests).
func NewAnalyzerWithOptions(model string, opts ...option.RequestOption) *Analyzer {
	return newAnalyzer(model, opts...)
}

func newAnalyzer(model string, opts ...option.RequestOption) *Analyzer {
	if model == "" {
		model = string(shared.ChatModelGPT4o)
	}
	client := openai.NewClient(opts...)
	return &Analyzer{client: &client, model: shared.ChatModel(model)}
}

func (a *Analyzer) Analyze(ctx context.Context, input port.AnalyzeInput) (*port.AnalyzeOutput, error) {
	completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(userPrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: input.ImageURL,
				}),
			}),
		},
		Tools: reportTools(),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &analyzer.StatusError{
				Provider:   providerName,
				StatusCode: apiErr.StatusCode,
				Body:       apiErr.RawJSON(),
			}
		}
		return nil, fmt.Errorf("calling openai API: %w", err)
	}

	raw := completion.RawJSON()
	if raw == "" {
		return nil, errors.New("openai returned an empty completion")
	}
	return &port.AnalyzeOutput{Raw: []byte(raw), Provider: providerName}, nil
}
