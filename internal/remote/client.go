// Package remote extracts records by asking a hosted language model, with
// rate limiting, bounded retry and strict validation of what comes back.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the default Messages API endpoint root.
	BaseURL = "https://api.anthropic.com"

	// APIVersion is sent as the anthropic-version header.
	APIVersion = "2023-06-01"

	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-sonnet-4-5-20250929"

	// DefaultMaxTokens bounds the size of one extraction answer.
	DefaultMaxTokens = 4096

	// DefaultTimeout is the HTTP timeout for one request.
	DefaultTimeout = 120 * time.Second

	// RateLimit is the default number of requests per second.
	RateLimit = 1.0
)

// Client is a rate-limited HTTP client for a Messages-style completion API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithModel selects the model.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens sets the answer size limit.
func WithMaxTokens(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithRateLimit sets the sustained request rate. Zero or less disables limiting.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithLogger sets the logger for request events.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client. The API key defaults to ANTHROPIC_API_KEY.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		logger:     slog.Default(),
		apiKey:     os.Getenv("ANTHROPIC_API_KEY"),
		baseURL:    BaseURL,
		model:      DefaultModel,
		maxTokens:  DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends prompt as a single user message and returns the text of the answer.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	url := c.baseURL + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("anthropic-version", APIVersion)
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	reqID := uuid.New().String()
	start := time.Now()
	c.logger.Debug("remote.http.request", "req_id", reqID, "url", url, "model", c.model, "content_length", len(body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("remote.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}

	c.logger.Debug("remote.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if err := checkHTTPErrors(resp.StatusCode, raw); err != nil {
		c.logger.Warn("remote.http.error", "req_id", reqID, "status", resp.StatusCode, "error", err)
		return "", err
	}

	var mr messagesResponse
	if err := json.Unmarshal(raw, &mr); err != nil {
		return "", fmt.Errorf("%w: decoding envelope: %v", ErrMalformedResponse, err)
	}

	var text strings.Builder
	for _, block := range mr.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("%w: no text content (stop_reason %q)", ErrMalformedResponse, mr.StopReason)
	}
	return text.String(), nil
}

// checkHTTPErrors returns an *APIError for any non-2xx status.
func checkHTTPErrors(status int, body []byte) error {
	if status/100 == 2 {
		return nil
	}
	apiErr := &APIError{StatusCode: status, Message: http.StatusText(status)}
	var er errorResponse
	if json.Unmarshal(body, &er) == nil && er.Error.Message != "" {
		apiErr.Type = er.Error.Type
		apiErr.Message = er.Error.Message
	}
	return apiErr
}
