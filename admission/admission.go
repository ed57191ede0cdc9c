// Package admission is the client-facing façade over a Store: job
// submission, lookup, listing, aggregate stats and dead-letter
// requeueing, independent of how the job is eventually processed.
package admission

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dkowalski/queuectl"
	"github.com/dkowalski/queuectl/job"
	"github.com/dkowalski/queuectl/metrics"
	"github.com/google/uuid"
)

// Service is the admission API backed by a Store.
type Service struct {
	store             queuectl.Store
	defaultMaxRetries uint32
	log               *slog.Logger
	metrics           *metrics.Collector
}

// New creates a Service. defaultMaxRetries is used for Submit calls
// that do not specify one explicitly (maxRetries == 0).
func New(store queuectl.Store, defaultMaxRetries uint32, log *slog.Logger) *Service {
	return &Service{store: store, defaultMaxRetries: defaultMaxRetries, log: log}
}

// SetMetrics attaches a Collector that future Submit/SubmitWithID calls
// record into. A nil Collector disables recording.
func (s *Service) SetMetrics(c *metrics.Collector) {
	s.metrics = c
}

// Submit enqueues a new Pending job running command. If maxRetries is
// zero, the service's configured default is used instead. A random
// id is assigned; use SubmitWithID to pin one explicitly.
func (s *Service) Submit(ctx context.Context, command string, maxRetries uint32) (*job.Job, error) {
	return s.SubmitWithID(ctx, "", command, maxRetries)
}

// SubmitWithID behaves like Submit but uses id verbatim instead of
// generating one, returning queuectl.ErrDuplicateID if it is already
// in use. An empty id generates a random one, same as Submit.
func (s *Service) SubmitWithID(ctx context.Context, id, command string, maxRetries uint32) (*job.Job, error) {
	if maxRetries == 0 {
		maxRetries = s.defaultMaxRetries
	}
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	j := &job.Job{
		ID:         id,
		Command:    command,
		Status:     job.Pending,
		MaxRetries: maxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	ok, err := s.store.Enqueue(ctx, j)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", queuectl.ErrDuplicateID, j.ID)
	}
	s.log.Info("job submitted", "id", j.ID, "command", j.Command)
	if s.metrics != nil {
		s.metrics.RecordEnqueue()
	}
	return j, nil
}

// Get returns the job with id, or queuectl.ErrNotFound if none exists.
func (s *Service) Get(ctx context.Context, id string) (*job.Job, error) {
	j, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, fmt.Errorf("%w: %s", queuectl.ErrNotFound, id)
	}
	return j, nil
}

// List returns jobs in status, most recently created first. A zero
// status matches every state. limit <= 0 means unlimited.
func (s *Service) List(ctx context.Context, status job.Status, limit int) ([]*job.Job, error) {
	return s.store.List(ctx, status, limit)
}

// Stats returns a point-in-time count of jobs per state.
func (s *Service) Stats(ctx context.Context) (map[job.Status]int64, error) {
	return s.store.Stats(ctx)
}

// Delete permanently removes a job regardless of its state.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	return s.store.Delete(ctx, id)
}

// RequeueFromDead resets a Dead job back to Pending with Attempts
// reset to zero, so it is eligible for acquisition again. It returns
// queuectl.ErrNotFound if the job does not exist, or
// queuectl.ErrInvalidState if the job is not currently Dead.
func (s *Service) RequeueFromDead(ctx context.Context, id string) (*job.Job, error) {
	j, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, fmt.Errorf("%w: %s", queuectl.ErrNotFound, id)
	}
	if j.Status != job.Dead {
		return nil, fmt.Errorf("%w: job %s is %s, not dead", queuectl.ErrInvalidState, id, j.Status)
	}
	j.Status = job.Pending
	j.Attempts = 0
	j.ErrorMessage = nil
	j.NextRetryAt = nil
	if _, err := s.store.Update(ctx, j); err != nil {
		return nil, err
	}
	s.log.Info("job requeued from dead letter queue", "id", id)
	return j, nil
}
