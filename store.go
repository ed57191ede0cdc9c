package queuectl

import (
	"context"
	"errors"
	"time"

	"github.com/dkowalski/queuectl/job"
)

// LeaseTTL is the visibility timeout granted by Acquire: a job that has
// sat in Processing for longer than LeaseTTL since LockedAt is treated
// as abandoned and becomes eligible for acquisition again, either by a
// fresh Acquire call or by a ReapLeases sweep.
//
// LeaseTTL equals the runner's default execution ceiling (see package
// runner). Under worst-case scheduling a worker may finish exactly as
// another steals the job; the resulting duplicate execution is the
// worst case the system explicitly accepts.
const LeaseTTL = 5 * time.Minute

// PollInterval is the default delay a worker sleeps after an Acquire
// call that found no eligible job.
const PollInterval = 1 * time.Second

var (
	// ErrNotFound indicates an operation referenced an id that does not
	// exist in the store.
	ErrNotFound = errors.New("queuectl: job not found")

	// ErrDuplicateID indicates a submission used an id that already
	// exists. The existing record is left untouched.
	ErrDuplicateID = errors.New("queuectl: duplicate job id")

	// ErrInvalidState indicates an operation required the job to be in
	// a particular state (for example RequeueFromDead requiring Dead)
	// and it was not.
	ErrInvalidState = errors.New("queuectl: invalid job state for operation")

	// ErrStore wraps any failure surfaced by the underlying durable
	// storage layer. Callers should use errors.Is(err, ErrStore) rather
	// than comparing the dynamic error directly, since store
	// implementations wrap driver-specific errors underneath it.
	ErrStore = errors.New("queuectl: store error")
)

// Store is the durable, concurrency-safe repository of Job records.
// Each operation is a single linearizable transaction against the
// underlying storage; Acquire in particular must be serializable
// across concurrent callers: two concurrent Acquire calls
// from distinct workers must observe distinct jobs, or at least one
// must return nil.
//
// Store implementations live outside this package (see the nested
// store module's bun/SQLite backend) so the queue logic here stays
// storage-agnostic.
type Store interface {
	// Enqueue inserts a new Pending job. It returns false with a nil
	// error if j.ID already exists; in that case the existing record is
	// untouched.
	Enqueue(ctx context.Context, j *job.Job) (bool, error)

	// Get returns a snapshot of the job identified by id, or (nil, nil)
	// if no such job exists.
	Get(ctx context.Context, id string) (*job.Job, error)

	// Acquire atomically selects the single most eligible job — the
	// oldest (by CreatedAt, tie-broken by ID) Pending job, or the oldest
	// Failed job whose NextRetryAt has passed — whose lease (if any) is
	// not live, transitions it to Processing under a lease to workerID,
	// and returns the updated snapshot. Returns (nil, nil) if no job is
	// eligible. Does not touch Attempts or NextRetryAt.
	Acquire(ctx context.Context, workerID string) (*job.Job, error)

	// Update replaces the persistent record for j.ID with j, clearing
	// LockedBy/LockedAt unconditionally and setting UpdatedAt to now. It
	// returns false with a nil error if j.ID is absent.
	Update(ctx context.Context, j *job.Job) (bool, error)

	// List returns jobs matching status (job.Unknown means no filter),
	// ordered by CreatedAt descending, at most limit of them (limit <= 0
	// means no limit).
	List(ctx context.Context, status job.Status, limit int) ([]*job.Job, error)

	// Stats returns a consistent, single-transaction snapshot of job
	// counts per state.
	Stats(ctx context.Context) (map[job.Status]int64, error)

	// Delete permanently removes the job identified by id. It returns
	// false if no such job existed.
	Delete(ctx context.Context, id string) (bool, error)

	// ReapLeases restores to Pending every Processing job whose LockedAt
	// is before expiredBefore, clearing its lease. It is idempotent: two
	// successive calls with the same cutoff leave the same final state
	// as one. It returns the number of jobs reclaimed.
	ReapLeases(ctx context.Context, expiredBefore time.Time) (int64, error)

	// ReleaseWorker restores to Pending every Processing job currently
	// leased to workerID, clearing its lease. Used on voluntary worker
	// shutdown. It returns the number of jobs released.
	ReleaseWorker(ctx context.Context, workerID string) (int64, error)
}
