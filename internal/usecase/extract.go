package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"TOSAnalyzer/internal/metrics"
	"TOSAnalyzer/internal/ports"
)

var (
	// ErrNoImage is returned when the request carries no image payload.
	ErrNoImage = errors.New("no image provided")
	// ErrInvalidImage is returned when the payload is not valid base64.
	ErrInvalidImage = errors.New("invalid image encoding")
	// ErrInvalidURL is returned for anything but an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrExtractorMissing is returned when the matching collaborator is not configured.
	ErrExtractorMissing = errors.New("extractor not configured")
)

// ExtractDeps wires the upstream text sources.
type ExtractDeps struct {
	OCR     ports.TextExtractor
	Fetcher ports.PageFetcher
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// ExtractService produces document text from images and web pages.
type ExtractService struct {
	ocr     ports.TextExtractor
	fetcher ports.PageFetcher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewExtractService constructs the extraction use case.
func NewExtractService(deps ExtractDeps) *ExtractService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ExtractService{
		ocr:     deps.OCR,
		fetcher: deps.Fetcher,
		metrics: deps.Metrics,
		logger:  logger,
	}
}

// ExtractImage decodes a base64 image (optionally a data URL) and runs OCR on it.
func (s *ExtractService) ExtractImage(ctx context.Context, encoded, mimeType string) (string, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		if i := strings.IndexByte(encoded, ','); i >= 0 {
			if mimeType == "" {
				mimeType = strings.TrimSuffix(strings.TrimPrefix(encoded[:i], "data:"), ";base64")
			}
			encoded = encoded[i+1:]
		}
	}
	if encoded == "" {
		return "", ErrNoImage
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(raw) == 0 {
		return "", ErrNoImage
	}

	if s.ocr == nil {
		s.metrics.OCRRequest("disabled")
		return "", fmt.Errorf("OCR failed: %w", ErrExtractorMissing)
	}

	text, err := s.ocr.ExtractText(ctx, raw, mimeType)
	if err != nil {
		s.metrics.OCRRequest("error")
		s.logger.Warn("ocr failed", "mime", mimeType, "bytes", len(raw), "error", err)
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	s.metrics.OCRRequest("ok")

	return strings.TrimSpace(text), nil
}

// ExtractURL downloads rawURL and returns its readable text.
func (s *ExtractService) ExtractURL(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", ErrInvalidURL
	}

	if s.fetcher == nil {
		return "", fmt.Errorf("fetch page: %w", ErrExtractorMissing)
	}

	text, err := s.fetcher.FetchText(ctx, parsed.String())
	if err != nil {
		s.logger.Warn("page fetch failed", "url", parsed.Redacted(), "error", err)
		return "", fmt.Errorf("fetch page: %w", err)
	}

	return strings.TrimSpace(text), nil
}
