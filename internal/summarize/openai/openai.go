// Package openai implements the summarize.ChatClient interface against an
// OpenAI-compatible chat-completions HTTP API, including Azure OpenAI
// deployments.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/meetscribe/meetscribe/internal/summarize"
)

// ClientName is the registered name for the OpenAI chat client.
const ClientName = "openai"

const (
	defaultModel   = "gpt-4"
	defaultTimeout = 60 * time.Second
)

// Config holds configuration for the OpenAI chat client.
type Config struct {
	// BaseURL is the API root (e.g. an Azure OpenAI endpoint).
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// APIKey authenticates requests.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// Model is the chat model or deployment name.
	Model string `yaml:"model" mapstructure:"model"`
	// APIVersion, when set, is appended as the api-version query parameter
	// (Azure OpenAI deployments require it).
	APIVersion string `yaml:"api_version" mapstructure:"api_version"`
	// Timeout bounds each HTTP call.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Client implements summarize.ChatClient using the chat-completions API.
type Client struct {
	cfg    Config
	client *http.Client
	tracer trace.Tracer
}

// NewClient creates a new OpenAI chat client.
func NewClient(cfg Config) *Client {
	cfg.ApplyDefaults()
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		tracer: otel.Tracer("meetscribe/summarize/openai"),
	}
}

// Name returns the client name.
func (c *Client) Name() string { return ClientName }

// IsAvailable reports whether the client is configured.
func (c *Client) IsAvailable(_ context.Context) bool {
	return c.cfg.BaseURL != "" && c.cfg.APIKey != ""
}

type chatRequest struct {
	Model       string              `json:"model"`
	Messages    []summarize.Message `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends a chat-completion request and returns the full response.
func (c *Client) Complete(ctx context.Context, req summarize.CompletionRequest) (*summarize.CompletionResponse, error) {
	ctx, span := c.tracer.Start(ctx, "openai.complete",
		trace.WithAttributes(attribute.String("llm.model", c.cfg.Model)))
	defer span.End()

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: marshal request: %w", err)
	}

	url := c.cfg.BaseURL + "/chat/completions"
	if c.cfg.APIVersion != "" {
		url += "?api-version=" + c.cfg.APIVersion
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	// Azure OpenAI authenticates with the api-key header instead of Bearer.
	httpReq.Header.Set("api-key", c.cfg.APIKey)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: send request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai: unexpected status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("openai: api error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("openai: empty completion")
	}

	return &summarize.CompletionResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
	}, nil
}
