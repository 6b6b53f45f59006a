package usecase

import (
	"context"
	"time"

	"TOSAnalyzer/internal/ports"
)

// Scheduler drives the readiness probe from a recurring driver.
type Scheduler struct {
	driver    ports.Scheduler
	readiness *Readiness
	timeout   time.Duration
}

// NewScheduler returns a helper to start/stop the recurring probe.
// Each probe is bounded by timeout when positive.
func NewScheduler(driver ports.Scheduler, readiness *Readiness, timeout time.Duration) *Scheduler {
	return &Scheduler{driver: driver, readiness: readiness, timeout: timeout}
}

// Start registers the probe with the provided driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.readiness == nil {
		return nil
	}

	job := func(time.Time) {
		probeCtx := ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			probeCtx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		_ = s.readiness.Probe(probeCtx)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
