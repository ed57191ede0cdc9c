package job

import (
	"fmt"
	"time"
)

// Job is the sole durable entity in queuectl: a request to run an
// opaque shell command, plus the bookkeeping needed to dispatch it
// exactly once per successful attempt, retry it with backoff on
// failure, and eventually either complete it or declare it dead.
//
// CreatedAt records when the job was admitted. UpdatedAt records the
// last state-affecting change. NextRetryAt is set while Status is
// Failed and stays set when a Failed job is acquired into Processing;
// it is nil in Pending, Completed and Dead. ErrorMessage holds the
// last failure's diagnostic. LockedBy
// and LockedAt together form the lease granted to whichever worker is
// currently holding the job for Processing; both are nil or both are
// set, never one without the other.
//
// Job values returned by the store are snapshots: mutating the fields
// of a Job you hold does not affect persisted state. All transitions go
// through Store.Update (or Store.Acquire for the Pending/Failed ->
// Processing transition).
type Job struct {
	ID      string
	Command string

	Status      Status
	Attempts    uint32
	MaxRetries  uint32

	CreatedAt time.Time
	UpdatedAt time.Time

	NextRetryAt *time.Time
	ErrorMessage *string

	LockedBy *string
	LockedAt *time.Time
}

// Clone returns an independent copy of j: the pointer fields are
// copied too, so mutating the clone never affects j. A nil j yields
// nil.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	if j.NextRetryAt != nil {
		t := *j.NextRetryAt
		c.NextRetryAt = &t
	}
	if j.ErrorMessage != nil {
		s := *j.ErrorMessage
		c.ErrorMessage = &s
	}
	if j.LockedBy != nil {
		s := *j.LockedBy
		c.LockedBy = &s
	}
	if j.LockedAt != nil {
		t := *j.LockedAt
		c.LockedAt = &t
	}
	return &c
}

// CheckInvariants validates the structural invariants that must hold
// after every atomic store operation. A violation indicates
// a programmer error in the caller or the store implementation, not a
// runtime condition to recover from, so callers are expected to treat
// a non-nil return as fatal to the operation in progress.
func (j *Job) CheckInvariants() error {
	if (j.LockedBy == nil) != (j.LockedAt == nil) {
		return fmt.Errorf("job %s: locked_by and locked_at must be set together", j.ID)
	}
	if j.Status == Processing && j.LockedBy == nil {
		return fmt.Errorf("job %s: processing job must have a lock owner", j.ID)
	}
	if (j.Status == Pending || j.Status == Completed || j.Status == Dead) && j.NextRetryAt != nil {
		return fmt.Errorf("job %s: next_retry_at must be nil in state %s", j.ID, j.Status)
	}
	if j.Status == Failed {
		if j.NextRetryAt == nil {
			return fmt.Errorf("job %s: failed job must have next_retry_at", j.ID)
		}
		if !(j.Attempts > 0 && j.Attempts < j.MaxRetries) {
			return fmt.Errorf("job %s: failed job must satisfy 0 < attempts < max_retries", j.ID)
		}
	}
	if j.Status == Dead && j.Attempts < j.MaxRetries {
		return fmt.Errorf("job %s: dead job must have attempts >= max_retries", j.ID)
	}
	if j.Status == Completed && (j.Attempts < 1 || j.ErrorMessage != nil) {
		return fmt.Errorf("job %s: completed job must have attempts >= 1 and no error_message", j.ID)
	}
	return nil
}
