// Package ocr extracts text from images through an external OCR service.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sethvargo/go-retry"

	"TOSAnalyzer/internal/config"
	"TOSAnalyzer/internal/ports"
)

// Client posts images to POST {endpoint}/ocr.
type Client struct {
	endpoint  string
	apiKey    string
	http      *http.Client
	attempts  uint64
	baseDelay time.Duration
}

var _ ports.TextExtractor = (*Client)(nil)

type ocrRequest struct {
	Image    string `json:"image"`
	MimeType string `json:"mimeType"`
}

type ocrResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// NewClient wires an OCR client from configuration.
func NewClient(cfg config.OCRConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	attempts := cfg.Retries
	if attempts < 1 {
		attempts = 1
	}
	base := cfg.RetryBaseDelay
	if base <= 0 {
		base = time.Second
	}

	return &Client{
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:    cfg.APIKey,
		http:      &http.Client{Timeout: timeout},
		attempts:  uint64(attempts),
		baseDelay: base,
	}
}

// DetectImage sniffs the payload and returns its image MIME type, or
// ports.ErrUnsupportedImage when the bytes are not an image.
func DetectImage(image []byte) (string, error) {
	mt := mimetype.Detect(image)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: %s", ports.ErrUnsupportedImage, mt.String())
	}
	return mt.String(), nil
}

// ExtractText runs OCR over image. The sniffed type wins over the declared one.
func (c *Client) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if c.endpoint == "" {
		return "", fmt.Errorf("ocr endpoint not configured")
	}

	detected, err := DetectImage(image)
	if err != nil {
		return "", err
	}
	if mimeType == "" || !strings.EqualFold(mimeType, detected) {
		mimeType = detected
	}

	body, err := json.Marshal(ocrRequest{
		Image:    base64.StdEncoding.EncodeToString(image),
		MimeType: mimeType,
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	var resp ocrResponse
	backoff := retry.WithMaxRetries(c.attempts-1, retry.NewExponential(c.baseDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		return c.post(ctx, body, &resp)
	})
	if err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", errors.New(resp.Error)
	}

	return resp.Text, nil
}

func (c *Client) post(ctx context.Context, body []byte, v *ocrResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/ocr", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) && ctx.Err() == nil {
			return retry.RetryableError(fmt.Errorf("do request: %w", err))
		}
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		var payload ocrResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload)
		if payload.Error != "" {
			return retry.RetryableError(fmt.Errorf("ocr service %s: %s", resp.Status, payload.Error))
		}
		return retry.RetryableError(fmt.Errorf("ocr service %s", resp.Status))
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ocr service %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
