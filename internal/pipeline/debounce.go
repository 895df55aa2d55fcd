package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultDebounceInterval is the quiet period after a trigger before a
	// run starts.
	DefaultDebounceInterval = 5 * time.Second

	// DefaultMaxDeferral caps how long a continuous trigger stream can keep
	// postponing a run.
	DefaultMaxDeferral = 60 * time.Second
)

// Debouncer coalesces bursts of triggers into single pipeline runs.
//
// Trigger may be called from any goroutine and never blocks. The worker
// started by Start is the only goroutine that executes runs, which is what
// keeps at most one run live at a time.
type Debouncer struct {
	logger      *zap.Logger
	interval    time.Duration
	maxDeferral time.Duration
	run         func(ctx context.Context)

	// latest is the wall-clock nanosecond timestamp of the most recent
	// trigger, the single atomically updated field shared between trigger
	// callers and the worker.
	latest atomic.Int64

	// pending is a single-slot register signalling "a trigger arrived".
	pending chan struct{}
}

// NewDebouncer creates a Debouncer invoking run after each debounced
// trigger burst. Non-positive durations fall back to the defaults.
func NewDebouncer(logger *zap.Logger, interval, maxDeferral time.Duration, run func(ctx context.Context)) *Debouncer {
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}
	if maxDeferral <= 0 {
		maxDeferral = DefaultMaxDeferral
	}
	return &Debouncer{
		logger:      logger.Named("debouncer"),
		interval:    interval,
		maxDeferral: maxDeferral,
		run:         run,
		pending:     make(chan struct{}, 1),
	}
}

// Trigger records a new trigger and wakes the worker. Fire-and-forget:
// failures inside the run are never propagated back to the caller.
func (d *Debouncer) Trigger() {
	d.latest.Store(time.Now().UnixNano())
	select {
	case d.pending <- struct{}{}:
	default:
		// The worker already has a wakeup queued; the stored timestamp is
		// enough to supersede the scheduled run.
	}
}

// Start runs the worker loop until the context is cancelled. Blocking;
// meant to be launched as its own goroutine.
func (d *Debouncer) Start(ctx context.Context) error {
	// lastRun marks the trigger timestamp most recently processed, so that
	// leftover wakeups from a coalesced burst do not schedule extra runs.
	var lastRun int64

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-d.pending:
		}

		if d.latest.Load() == lastRun {
			continue
		}

		burstStart := time.Now()
		for {
			ts := d.latest.Load()

			fireAt := time.Unix(0, ts).Add(d.interval)
			if deadline := burstStart.Add(d.maxDeferral); fireAt.After(deadline) {
				fireAt = deadline
			}
			if wait := time.Until(fireAt); wait > 0 {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(wait):
				}
			}

			if d.latest.Load() != ts && time.Since(burstStart) < d.maxDeferral {
				// A newer trigger arrived during the quiet period; this
				// scheduled run is superseded.
				continue
			}

			lastRun = ts
			d.run(ctx)
			break
		}
	}
}
