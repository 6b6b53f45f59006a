package ports

import (
	"context"
	"errors"
	"time"
)

// ErrSummarizerUnavailable marks a summarizer that is not configured or not loaded.
// Callers substitute a placeholder summary instead of failing the request.
var ErrSummarizerUnavailable = errors.New("summarizer unavailable")

// ErrUnsupportedImage is returned by text extractors for payloads that are not images.
var ErrUnsupportedImage = errors.New("unsupported image type")

// ErrBlockedAddress is returned by page fetchers for hosts that resolve to
// loopback, private or link-local addresses.
var ErrBlockedAddress = errors.New("address not allowed")

// Summarizer turns long document text into a short abstractive summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// ReadinessChecker reports whether a collaborator finished loading.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// TextExtractor runs OCR over raw image bytes.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte, mimeType string) (string, error)
}

// PageFetcher downloads a web page and returns its readable text.
type PageFetcher interface {
	FetchText(ctx context.Context, rawURL string) (string, error)
}

// SummaryCache stores summaries keyed by a document digest.
type SummaryCache interface {
	Get(ctx context.Context, key string) (summary string, found bool, err error)
	Put(ctx context.Context, key, summary string) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
