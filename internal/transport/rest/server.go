// Package rest exposes the analyzer over HTTP and serves the browser page.
package rest

import (
	"context"
	"embed"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"TOSAnalyzer/internal/domain"
)

//go:embed static/index.html
var staticFS embed.FS

const defaultMaxBodyBytes = 10 << 20

// Analyzer is the analyze use case.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (domain.AnalysisResult, error)
}

// Extractor is the text extraction use case.
type Extractor interface {
	ExtractImage(ctx context.Context, encoded, mimeType string) (string, error)
	ExtractURL(ctx context.Context, rawURL string) (string, error)
}

// ReadinessReporter reports whether the summarizer finished loading.
type ReadinessReporter interface {
	Ready() bool
}

// Deps wires the use cases into the HTTP layer.
type Deps struct {
	Analyzer     Analyzer
	Extractor    Extractor
	Readiness    ReadinessReporter
	Metrics      http.Handler
	Logger       *slog.Logger
	MaxBodyBytes int64
}

// Server holds the handlers.
type Server struct {
	analyzer     Analyzer
	extractor    Extractor
	readiness    ReadinessReporter
	metrics      http.Handler
	logger       *slog.Logger
	maxBodyBytes int64
}

// New builds a Server.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &Server{
		analyzer:     deps.Analyzer,
		extractor:    deps.Extractor,
		readiness:    deps.Readiness,
		metrics:      deps.Metrics,
		logger:       logger,
		maxBodyBytes: maxBody,
	}
}

// Routes returns the chi router with middleware and every endpoint mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/extract_text", s.handleExtractText)
		r.Post("/extract_url", s.handleExtractURL)
	})

	return r
}
