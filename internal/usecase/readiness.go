package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"

	"TOSAnalyzer/internal/metrics"
	"TOSAnalyzer/internal/ports"
)

// Readiness caches the last summarizer probe result. A nil checker has nothing
// to load and is always ready.
type Readiness struct {
	checker ports.ReadinessChecker
	ready   atomic.Bool
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewReadiness starts not ready until the first Probe, unless checker is nil.
func NewReadiness(checker ports.ReadinessChecker, m *metrics.Metrics, logger *slog.Logger) *Readiness {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Readiness{checker: checker, metrics: m, logger: logger}
	if checker == nil {
		r.ready.Store(true)
		m.SetSummarizerReady(true)
	}
	return r
}

// Probe asks the checker once and stores the outcome.
func (r *Readiness) Probe(ctx context.Context) error {
	if r.checker == nil {
		return nil
	}

	err := r.checker.Ready(ctx)
	now := err == nil
	was := r.ready.Swap(now)
	r.metrics.SetSummarizerReady(now)

	switch {
	case now && !was:
		r.logger.Info("summarizer ready")
	case !now && was:
		r.logger.Warn("summarizer became unavailable", "error", err)
	case !now:
		r.logger.Debug("summarizer still not ready", "error", err)
	}

	return err
}

// Ready reports the last probe result.
func (r *Readiness) Ready() bool {
	return r.ready.Load()
}
