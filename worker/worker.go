// Package worker runs the single serial acquire-execute-update loop
// that drives one job at a time on behalf of one OS process.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dkowalski/queuectl"
	"github.com/dkowalski/queuectl/internal/lifecycle"
	"github.com/dkowalski/queuectl/job"
	"github.com/dkowalski/queuectl/metrics"
	"github.com/dkowalski/queuectl/runner"
)

// Config defines the runtime behavior of a Worker.
type Config struct {
	// ID identifies this worker's lease ownership. Must be unique among
	// concurrently running workers sharing a Store.
	ID string

	// PollInterval is how often the worker attempts to acquire a job
	// when idle. Defaults to queuectl.PollInterval if zero.
	PollInterval time.Duration

	// Backoff computes the next retry time for a failed job.
	Backoff queuectl.RetryPolicy

	// Metrics records job outcomes. Nil disables recording.
	Metrics *metrics.Collector
}

// Worker coordinates acquiring, executing and recording the outcome of
// jobs, one at a time, until stopped.
//
// Unlike a pool of concurrent handler goroutines, Worker processes
// exactly one job at a time: concurrency across workers comes from
// running several Worker instances in separate OS processes (see
// package pool), each with its own Store connection.
type Worker struct {
	queuectl.Lifecycle

	store    queuectl.Store
	runner   runner.Runner
	log      *slog.Logger
	id       string
	interval time.Duration
	backoff  queuectl.RetryPolicy
	metrics  *metrics.Collector

	task lifecycle.TimerTask
}

// New creates a Worker. The worker is not started automatically; call
// Start to begin the acquire loop.
func New(store queuectl.Store, run runner.Runner, cfg Config, log *slog.Logger) *Worker {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = queuectl.PollInterval
	}
	return &Worker{
		store:    store,
		runner:   run,
		log:      log,
		id:       cfg.ID,
		interval: interval,
		backoff:  cfg.Backoff,
		metrics:  cfg.Metrics,
	}
}

// tick attempts to acquire and fully process one job. It never blocks
// longer than the runner's own execution timeout.
func (w *Worker) tick(ctx context.Context) {
	j, err := w.store.Acquire(ctx, w.id)
	if err != nil {
		w.log.Error("acquire failed", "worker", w.id, "err", err)
		return
	}
	if j == nil {
		return
	}
	w.log.Info("job acquired", "worker", w.id, "id", j.ID, "command", j.Command, "attempt", j.Attempts+1)
	// A job in hand runs to its outcome even once shutdown has canceled
	// ctx; only the runner's own timeout bounds it.
	w.process(context.WithoutCancel(ctx), j)
}

func (w *Worker) process(ctx context.Context, j *job.Job) {
	ok, diag := func() (ok bool, diag string) {
		defer func() {
			if r := recover(); r != nil {
				ok, diag = false, fmt.Sprint(r)
			}
		}()
		return w.runner.Execute(ctx, j.Command)
	}()
	j.Attempts++

	if ok {
		j.Status = job.Completed
		j.ErrorMessage = nil
		j.NextRetryAt = nil
		if _, err := w.store.Update(ctx, j); err != nil {
			w.log.Error("cannot record completion", "worker", w.id, "id", j.ID, "err", err)
		} else {
			w.log.Info("job completed", "worker", w.id, "id", j.ID)
			if w.metrics != nil {
				w.metrics.RecordCompleted()
			}
		}
		return
	}

	j.ErrorMessage = &diag
	if j.Attempts >= j.MaxRetries {
		j.Status = job.Dead
		j.NextRetryAt = nil
		if _, err := w.store.Update(ctx, j); err != nil {
			w.log.Error("cannot record death", "worker", w.id, "id", j.ID, "err", err)
		} else {
			w.log.Warn("job exhausted retries", "worker", w.id, "id", j.ID, "attempts", j.Attempts, "err", diag)
			if w.metrics != nil {
				w.metrics.RecordDead()
			}
		}
		return
	}

	j.Status = job.Failed
	next := w.backoff.NextAfter(j.Attempts, time.Now().UTC())
	j.NextRetryAt = &next
	if _, err := w.store.Update(ctx, j); err != nil {
		w.log.Error("cannot record failure", "worker", w.id, "id", j.ID, "err", err)
	} else {
		w.log.Warn("job failed, retry scheduled", "worker", w.id, "id", j.ID, "attempts", j.Attempts, "next_retry_at", next, "err", diag)
		if w.metrics != nil {
			w.metrics.RecordFailed()
		}
	}
}

// Start begins the acquire loop on a background goroutine. It returns
// queuectl.ErrDoubleStarted if already running.
func (w *Worker) Start(ctx context.Context) error {
	if err := w.TryStart(); err != nil {
		return err
	}
	w.task.Start(ctx, w.tick, w.interval)
	return nil
}

// Stop waits for the in-flight tick (if any) to finish, then stops the
// poll loop. If the in-flight job does not finish within timeout, the
// job's lease is left intact for another worker (or this same worker,
// once restarted) to reclaim once it expires. After a clean stop, any
// lease still held by this worker's ID is released via
// Store.ReleaseWorker.
func (w *Worker) Stop(timeout time.Duration) error {
	if err := w.TryStop(timeout, w.task.Stop); err != nil {
		return err
	}
	if _, err := w.store.ReleaseWorker(context.Background(), w.id); err != nil {
		w.log.Error("cannot release leases", "worker", w.id, "err", err)
	}
	return nil
}
