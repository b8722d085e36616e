package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/raphaelgruber/parley/internal/metrics"
)

const (
	// DefaultEndpoint is the OpenAI chat completions endpoint.
	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

	// DefaultModel is the default completion model.
	DefaultModel = "gpt-3.5-turbo"

	// DefaultMaxTokens bounds the completion length.
	DefaultMaxTokens = 500

	// DefaultTemperature is the default sampling temperature.
	DefaultTemperature = 0.7

	// RequestTimeout bounds a single completion attempt.
	RequestTimeout = 30 * time.Second
)

// Completer produces an assistant reply for a single user message.
type Completer interface {
	Complete(ctx context.Context, text string) (string, error)
}

// ClientConfig configures the native completion client.
type ClientConfig struct {
	Endpoint    string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Client talks to an OpenAI-compatible chat completions endpoint over
// HTTPS with a bearer credential. Transient failures (timeouts, 5xx) are
// retried with linear backoff; everything else fails fast with a
// classified error.
type Client struct {
	endpoint    string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64

	httpClient *http.Client
	timeout    time.Duration
	policy     RetryPolicy
	online     func() bool
	sleep      sleepFunc
	logger     *slog.Logger
	collector  *metrics.Collector
}

// Compile-time check that Client implements Completer.
var _ Completer = (*Client)(nil)

// NewClient creates a completion client. Zero config fields fall back to
// the package defaults. logger and collector may be nil.
func NewClient(cfg ClientConfig, logger *slog.Logger, collector *metrics.Collector) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		endpoint:    cfg.Endpoint,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{},
		timeout:     RequestTimeout,
		policy:      DefaultRetryPolicy(),
		online:      defaultOnline,
		sleep:       sleepContext,
		logger:      logger,
		collector:   collector,
	}
}

// completionRequest is the chat completions request payload.
type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// completionResponse is the chat completions response payload.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
}

// errorResponse is the upstream error envelope.
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends text as a single user message and returns the trimmed
// assistant reply, guaranteed non-empty on success. Preconditions are
// checked before any network attempt, each short-circuiting with a
// distinct classification.
func (c *Client) Complete(ctx context.Context, text string) (string, error) {
	if c.online != nil && !c.online() {
		return "", &Error{Kind: KindNetworkOffline}
	}
	if c.apiKey == "" {
		return "", &Error{Kind: KindCredentialMissing}
	}
	if strings.TrimSpace(text) == "" {
		return "", &Error{Kind: KindEmptyRequest}
	}

	content, err := retry(ctx, c.policy, c.sleep, func(attempt int) (string, error) {
		out, rerr := c.request(ctx, text)
		if rerr != nil {
			c.logger.Warn("completion attempt failed",
				"attempt", attempt, "model", c.model, "error", rerr)
		}
		return out, rerr
	})
	if err != nil {
		if c.collector != nil {
			c.collector.RecordFailure(metrics.OpCompletion)
		}
		return "", err
	}
	return content, nil
}

// request performs one completion attempt under the request timeout.
func (c *Client) request(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: text}},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", &Error{Kind: KindUnknown, Message: err.Error()}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Kind: KindUnknown, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", &Error{Kind: KindTimeout}
		}
		return "", &Error{Kind: KindUnknown, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return "", &Error{Kind: KindTimeout}
		}
		return "", &Error{Kind: KindUnknown, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", classifyStatus(resp.StatusCode, body)
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &Error{Kind: KindEmptyResponse, Message: fmt.Sprintf("malformed response: %v", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &Error{Kind: KindEmptyResponse}
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", &Error{Kind: KindEmptyResponse}
	}

	if c.collector != nil {
		c.collector.RecordUsage(metrics.OpCompletion, time.Since(start),
			parsed.Usage.PromptTokens, parsed.Usage.CompletionTokens)
	}
	return content, nil
}

// classifyStatus maps a non-2xx response to a classified error.
func classifyStatus(status int, body []byte) *Error {
	switch status {
	case http.StatusUnauthorized:
		return &Error{Kind: KindAuth, Status: status}
	case http.StatusTooManyRequests:
		return &Error{Kind: KindUpstreamRateLimited, Status: status}
	case http.StatusBadRequest:
		e := &Error{Kind: KindBadRequest, Status: status}
		var upstream errorResponse
		if json.Unmarshal(body, &upstream) == nil {
			e.Message = upstream.Error.Message
		}
		return e
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return &Error{Kind: KindUpstreamUnavailable, Status: status}
	default:
		return &Error{Kind: KindService, Status: status}
	}
}

// isTimeout reports whether err is a deadline or transport timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// defaultOnline checks for a non-loopback interface address. A cheap
// connectivity precondition, not a reachability guarantee.
func defaultOnline() bool {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return true // can't tell, let the request decide
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.IsGlobalUnicast() {
			return true
		}
	}
	return false
}
