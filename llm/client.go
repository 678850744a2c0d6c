package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/commitai/config"
)

// maxResponseSize limits the response body to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// defaultMaxTokens bounds the completion length for all backends.
const defaultMaxTokens = 1024

// Client sends completion requests to a single configured provider,
// enforcing a request timeout and classifying failures into ProviderError
// kinds.
type Client struct {
	providerName string
	providerCfg  config.ProviderConfig
	httpClient   *http.Client
	timeout      time.Duration
	temperature  *float64
	maxTokens    int
	logger       *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		if d > 0 {
			client.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// WithTemperature sets an explicit sampling temperature.
func WithTemperature(t float64) ClientOption {
	return func(client *Client) {
		client.temperature = &t
	}
}

// NewClient creates a client for the named provider. The name is validated
// lazily on the first Generate call so that diagnostic commands can surface
// ErrUnknownProvider themselves.
func NewClient(name string, cfg config.ProviderConfig, opts ...ClientOption) *Client {
	temp := 0.2
	c := &Client{
		providerName: name,
		providerCfg:  cfg,
		timeout:      30 * time.Second,
		temperature:  &temp,
		maxTokens:    defaultMaxTokens,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	return c
}

// Name returns the configured provider name.
func (c *Client) Name() string {
	return c.providerName
}

// Generate sends the messages to the provider and returns the raw generated
// text. Failures are returned as *ProviderError, except an unregistered
// provider name which returns ErrUnknownProvider.
func (c *Client) Generate(ctx context.Context, messages []Message) (string, error) {
	provider := GetProvider(c.providerName)
	if provider == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, c.providerName)
	}
	if len(messages) == 0 {
		return "", NewProviderError(c.providerName, KindMalformedResponse, errors.New("no messages to send"))
	}

	requestID := uuid.New().String()
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := provider.BuildURL(c.providerCfg.BaseURL, c.providerCfg.Model)

	body, err := provider.BuildRequestBody(c.providerCfg.Model, messages, c.temperature, c.maxTokens)
	if err != nil {
		return "", NewProviderError(c.providerName, KindMalformedResponse, fmt.Errorf("build request body: %w", err))
	}

	c.logger.Debug("Sending generation request",
		"request_id", requestID,
		"provider", c.providerName,
		"model", c.providerCfg.Model,
		"url", url,
		"messages", len(messages))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", NewProviderError(c.providerName, KindMalformedResponse, fmt.Errorf("create HTTP request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	provider.SetHeaders(httpReq, c.providerCfg)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			return "", NewProviderError(c.providerName, KindTimeout, fmt.Errorf("request timed out after %s: %w", c.timeout, err))
		}
		// Connection failures are retried the same way timeouts are.
		return "", NewProviderError(c.providerName, KindTimeout, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return "", NewProviderError(c.providerName, KindMalformedResponse, fmt.Errorf("read response body: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", c.classifyHTTPError(httpResp.StatusCode, respBody)
	}

	content, err := provider.ParseResponse(respBody)
	if err != nil {
		return "", NewProviderError(c.providerName, KindMalformedResponse, err)
	}

	c.logger.Debug("Generation request complete",
		"request_id", requestID,
		"provider", c.providerName,
		"duration_ms", time.Since(started).Milliseconds(),
		"content_bytes", len(content))

	return content, nil
}

// classifyHTTPError maps an HTTP status to a ProviderError kind.
func (c *Client) classifyHTTPError(statusCode int, body []byte) error {
	bodyStr := string(body)
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}

	err := fmt.Errorf("API error (status %d): %s", statusCode, bodyStr)

	switch {
	case statusCode == http.StatusTooManyRequests:
		return NewProviderError(c.providerName, KindRateLimit, err)
	case statusCode == http.StatusUnauthorized,
		statusCode == http.StatusForbidden:
		return NewProviderError(c.providerName, KindAuth, err)
	case statusCode == http.StatusRequestTimeout,
		statusCode == http.StatusGatewayTimeout:
		return NewProviderError(c.providerName, KindTimeout, err)
	default:
		return NewProviderError(c.providerName, KindMalformedResponse, err)
	}
}
