package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"TOSAnalyzer/internal/domain"
	"TOSAnalyzer/internal/metrics"
	"TOSAnalyzer/internal/ports"
	"TOSAnalyzer/internal/risk"
)

// AnalyzeDeps wires the collaborators of the analyze workflow.
type AnalyzeDeps struct {
	Analyzer    *risk.Analyzer
	Summarizer  ports.Summarizer
	Backend     string
	Cache       ports.SummaryCache
	Readiness   *Readiness
	Placeholder string
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// AnalyzeService turns raw document text into an AnalysisResult.
type AnalyzeService struct {
	analyzer    *risk.Analyzer
	summarizer  ports.Summarizer
	backend     string
	cache       ports.SummaryCache
	readiness   *Readiness
	placeholder string
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewAnalyzeService constructs the analyze use case.
func NewAnalyzeService(deps AnalyzeDeps) *AnalyzeService {
	analyzer := deps.Analyzer
	if analyzer == nil {
		analyzer = risk.NewAnalyzer()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AnalyzeService{
		analyzer:    analyzer,
		summarizer:  deps.Summarizer,
		backend:     deps.Backend,
		cache:       deps.Cache,
		readiness:   deps.Readiness,
		placeholder: deps.Placeholder,
		metrics:     deps.Metrics,
		logger:      logger,
	}
}

// Analyze trims text, summarizes it and runs the risk heuristics.
// Blank input fails with domain.ErrEmptyInput before the summarizer is touched.
func (s *AnalyzeService) Analyze(ctx context.Context, text string) (domain.AnalysisResult, error) {
	start := time.Now()

	text = strings.TrimSpace(text)
	if text == "" {
		s.metrics.AnalysisFailed("empty")
		return domain.AnalysisResult{}, domain.ErrEmptyInput
	}

	summary, err := s.summarize(ctx, text)
	if err != nil {
		s.metrics.AnalysisFailed("error")
		return domain.AnalysisResult{}, fmt.Errorf("summarize: %w", err)
	}

	result, err := s.analyzer.Analyze(text, summary)
	if err != nil {
		s.metrics.AnalysisFailed("error")
		return domain.AnalysisResult{}, fmt.Errorf("analyze: %w", err)
	}

	s.metrics.ObserveAnalysis(result, time.Since(start))
	s.logger.Debug("document analyzed",
		"chars", len(text),
		"aggressive", len(result.AggressiveLanguage),
		"clauses", len(result.SuspiciousClauses),
		"took", time.Since(start))

	return result, nil
}

func (s *AnalyzeService) summarize(ctx context.Context, text string) (string, error) {
	if s.summarizer == nil {
		s.metrics.SummaryOutcome(s.backend, "disabled")
		return s.placeholder, nil
	}

	key := SummaryKey(text)
	if s.cache != nil {
		summary, found, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.metrics.CacheLookup("error")
			s.logger.Warn("summary cache lookup failed", "error", err)
		case found:
			s.metrics.CacheLookup("hit")
			return summary, nil
		default:
			s.metrics.CacheLookup("miss")
		}
	}

	if s.readiness != nil && !s.readiness.Ready() {
		s.metrics.SummaryOutcome(s.backend, "not_ready")
		s.logger.Warn("summarizer not ready, using placeholder")
		return s.placeholder, nil
	}

	summary, err := s.summarizer.Summarize(ctx, text)
	if errors.Is(err, ports.ErrSummarizerUnavailable) {
		s.metrics.SummaryOutcome(s.backend, "unavailable")
		s.logger.Warn("summarizer unavailable, using placeholder", "error", err)
		return s.placeholder, nil
	}
	if err != nil {
		s.metrics.SummaryOutcome(s.backend, "error")
		return "", err
	}
	s.metrics.SummaryOutcome(s.backend, "ok")

	if s.cache != nil {
		if err := s.cache.Put(ctx, key, summary); err != nil {
			s.logger.Warn("summary cache write failed", "error", err)
		}
	}

	return summary, nil
}

// SummaryKey is the cache key of a trimmed document: hex SHA-256 of its bytes.
func SummaryKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
