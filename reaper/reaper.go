// Package reaper periodically reclaims leases abandoned by crashed or
// hung worker processes, so their jobs become eligible for
// acquisition again instead of sitting stuck in Processing forever.
package reaper

import (
	"context"
	"log/slog"
	"time"

	"github.com/dkowalski/queuectl"
	"github.com/dkowalski/queuectl/internal/lifecycle"
)

// Reaper periodically calls Store.ReapLeases for leases older than
// queuectl.LeaseTTL.
//
// Reaper has the same strict lifecycle as Worker: Start may only be
// called once, and Stop waits for the in-flight sweep to finish or
// the timeout to expire.
type Reaper struct {
	queuectl.Lifecycle

	store    queuectl.Store
	log      *slog.Logger
	interval time.Duration
	ttl      time.Duration
	task     lifecycle.TimerTask
}

// New creates a Reaper that sweeps every interval, reclaiming leases
// older than ttl. If interval is zero, queuectl.PollInterval is used;
// if ttl is zero, queuectl.LeaseTTL is used.
func New(store queuectl.Store, interval, ttl time.Duration, log *slog.Logger) *Reaper {
	if interval <= 0 {
		interval = queuectl.PollInterval
	}
	if ttl <= 0 {
		ttl = queuectl.LeaseTTL
	}
	return &Reaper{store: store, log: log, interval: interval, ttl: ttl}
}

func (r *Reaper) sweep(ctx context.Context) {
	expiredBefore := time.Now().UTC().Add(-r.ttl)
	count, err := r.store.ReapLeases(ctx, expiredBefore)
	if err != nil {
		r.log.Error("lease sweep failed", "err", err)
		return
	}
	if count > 0 {
		r.log.Warn("reclaimed stale leases", "count", count)
	}
}

// Start begins periodic sweeping. Returns queuectl.ErrDoubleStarted if
// already running.
func (r *Reaper) Start(ctx context.Context) error {
	if err := r.TryStart(); err != nil {
		return err
	}
	r.task.Start(ctx, r.sweep, r.interval)
	return nil
}

// Stop terminates the sweep loop, waiting up to timeout for the
// in-flight sweep to finish.
func (r *Reaper) Stop(timeout time.Duration) error {
	return r.TryStop(timeout, r.task.Stop)
}
