package store

import (
	"time"

	"github.com/dkowalski/queuectl/job"
	"github.com/uptrace/bun"
)

// jobModel mirrors the persisted "jobs" table: one row
// per Job, state persisted as text, lease and retry timestamps
// nullable.
type jobModel struct {
	bun.BaseModel `bun:"table:jobs"`

	ID      string `bun:"id,pk"`
	Command string `bun:"command,notnull"`

	State      job.Status `bun:"state,notnull"`
	Attempts   uint32     `bun:"attempts,notnull,default:0"`
	MaxRetries uint32     `bun:"max_retries,notnull,default:3"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`

	NextRetryAt *time.Time `bun:"next_retry_at,nullzero"`
	ErrorMsg    *string    `bun:"error_message,nullzero"`

	LockedBy *string    `bun:"locked_by,nullzero"`
	LockedAt *time.Time `bun:"locked_at,nullzero"`
}

func toModel(j *job.Job) *jobModel {
	return &jobModel{
		ID:          j.ID,
		Command:     j.Command,
		State:       j.Status,
		Attempts:    j.Attempts,
		MaxRetries:  j.MaxRetries,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		NextRetryAt: j.NextRetryAt,
		ErrorMsg:    j.ErrorMessage,
		LockedBy:    j.LockedBy,
		LockedAt:    j.LockedAt,
	}
}

func (m *jobModel) toJob() *job.Job {
	return &job.Job{
		ID:           m.ID,
		Command:      m.Command,
		Status:       m.State,
		Attempts:     m.Attempts,
		MaxRetries:   m.MaxRetries,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		NextRetryAt:  m.NextRetryAt,
		ErrorMessage: m.ErrorMsg,
		LockedBy:     m.LockedBy,
		LockedAt:     m.LockedAt,
	}
}
