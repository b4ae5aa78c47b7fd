package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"reportingest/internal/analyzer"
	"reportingest/internal/config"
	"reportingest/internal/port"
)

const (
	providerName     = "hub"
	apiKeyHeader     = "X-API-Key"
	defaultMessage   = "analizza questo report"
	maxResponseBytes = 10 << 20
)

// Client calls the hub chatbot endpoint. The same endpoint serves image analysis
// and status messages.
type Client struct {
	apiKey   string
	endpoint string
	message  string
	client   *http.Client
}

// NewClient creates a hub client from config with an already resolved API key.
func NewClient(cfg *config.HubConfig, apiKey string) *Client {
	message := cfg.Message
	if message == "" {
		message = defaultMessage
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:   apiKey,
		endpoint: cfg.Endpoint,
		message:  message,
		client:   &http.Client{Timeout: timeout},
	}
}

type analyzeRequest struct {
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
}

type statusRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationID,omitempty"`
}

// Analyze sends the image URL to the hub and returns its raw JSON answer.
func (c *Client) Analyze(ctx context.Context, input port.AnalyzeInput) (*port.AnalyzeOutput, error) {
	body, err := c.post(ctx, analyzeRequest{Message: c.message, ImageURL: input.ImageURL})
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("hub response is not valid JSON: %s", analyzer.Truncate(string(body), 200))
	}
	return &port.AnalyzeOutput{Raw: body, Provider: providerName}, nil
}

// SendStatus posts a plain status message, without an image, to the hub.
func (c *Client) SendStatus(ctx context.Context, message, conversationID string) error {
	_, err := c.post(ctx, statusRequest{Message: message, ConversationID: conversationID})
	return err
}

func (c *Client) post(ctx context.Context, payload any) ([]byte, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling hub API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &analyzer.StatusError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}
	return respBody, nil
}
