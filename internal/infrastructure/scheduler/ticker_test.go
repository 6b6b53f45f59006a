package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestTicker_RunsImmediatelyAndRepeats(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	ticker := NewTicker(5 * time.Millisecond)

	if err := ticker.Start(context.Background(), func(time.Time) { runs.Add(1) }); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if runs.Load() < 3 {
		t.Fatalf("job ran %d times", runs.Load())
	}

	if err := ticker.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	if runs.Load() != after {
		t.Fatal("job ran after Stop")
	}
}

func TestTicker_StartTwiceAndStopIdle(t *testing.T) {
	t.Parallel()

	ticker := NewTicker(time.Hour)
	if err := ticker.Stop(context.Background()); err != nil {
		t.Fatalf("Stop on idle ticker: %v", err)
	}

	var runs atomic.Int32
	job := func(time.Time) { runs.Add(1) }
	_ = ticker.Start(context.Background(), job)
	_ = ticker.Start(context.Background(), job)
	if err := ticker.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if runs.Load() != 1 {
		t.Fatalf("job ran %d times, want 1", runs.Load())
	}
}

func TestTicker_ContextCancelStops(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	ticker := NewTicker(time.Millisecond)
	if err := ticker.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := ticker.Stop(stopCtx); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
}
