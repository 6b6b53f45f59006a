package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"TOSAnalyzer/internal/config"
	"TOSAnalyzer/internal/ports"
)

// Client talks to an external inference service hosting the summarization model.
type Client struct {
	endpoint  string
	apiKey    string
	http      *http.Client
	params    generationParams
	attempts  uint64
	baseDelay time.Duration
	limiter   *rate.Limiter
}

var _ ports.Summarizer = (*Client)(nil)
var _ ports.ReadinessChecker = (*Client)(nil)

type generationParams struct {
	MaxLength           int `json:"max_length"`
	MinLength           int `json:"min_length"`
	NumBeams            int `json:"num_beams"`
	ExtractiveSentences int `json:"extractive_sentences"`
}

type summarizeRequest struct {
	Inputs     string           `json:"inputs"`
	Parameters generationParams `json:"parameters"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
	Error   string `json:"error"`
}

type statusError struct {
	code   int
	status string
	body   string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("unexpected status %s", e.status)
	}
	return fmt.Sprintf("unexpected status %s: %s", e.status, e.body)
}

func (e *statusError) transient() bool {
	return e.code >= http.StatusInternalServerError || e.code == http.StatusTooManyRequests
}

// NewClient creates a reusable HTTP client. An empty endpoint yields a client
// that always reports ports.ErrSummarizerUnavailable.
func NewClient(cfg config.MLConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	attempts := cfg.Retries
	if attempts < 1 {
		attempts = 1
	}
	base := cfg.RetryBaseDelay
	if base <= 0 {
		base = time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		endpoint: strings.TrimRight(cfg.InferenceURL, "/"),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
		params: generationParams{
			MaxLength:           cfg.MaxLength,
			MinLength:           cfg.MinLength,
			NumBeams:            cfg.NumBeams,
			ExtractiveSentences: cfg.ExtractiveSentences,
		},
		attempts:  uint64(attempts),
		baseDelay: base,
		limiter:   limiter,
	}
}

// Summarize requests an abstractive summary of text. A model that keeps
// answering 503 is reported as ports.ErrSummarizerUnavailable.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if c.endpoint == "" {
		return "", ports.ErrSummarizerUnavailable
	}

	var resp summarizeResponse
	err := c.post(ctx, "/summarize", summarizeRequest{Inputs: text, Parameters: c.params}, &resp)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusServiceUnavailable {
			return "", fmt.Errorf("%w: %v", ports.ErrSummarizerUnavailable, err)
		}
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("inference error: %s", resp.Error)
	}

	return strings.TrimSpace(resp.Summary), nil
}

// Ready probes GET /health once, without retries.
func (c *Client) Ready(ctx context.Context) error {
	if c.endpoint == "" {
		return ports.ErrSummarizerUnavailable
	}
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	backoff := retry.WithMaxRetries(c.attempts-1, retry.NewExponential(c.baseDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limit: %w", err)
			}
		}
		err := c.do(ctx, http.MethodPost, path, body, v)
		if transient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, v any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, status: resp.Status, body: strings.TrimSpace(string(snippet))}
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func transient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.transient()
	}
	var ue *url.Error
	return errors.As(err, &ue)
}
