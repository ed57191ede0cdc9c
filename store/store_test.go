package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/dkowalski/queuectl/job"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingJob(id, command string) *job.Job {
	now := time.Now().UTC()
	return &job.Job{
		ID:         id,
		Command:    command,
		Status:     job.Pending,
		MaxRetries: 3,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestEnqueueRejectsDuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.Enqueue(ctx, newPendingJob("a", "echo hi"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Enqueue(ctx, newPendingJob("a", "echo bye"))
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "echo hi", got.Command)
}

func TestGetMissingReturnsNil(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAcquireOrdersByCreatedAtThenID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	first := newPendingJob("b", "first")
	first.CreatedAt = base
	second := newPendingJob("a", "second")
	second.CreatedAt = base // same timestamp, tie broken by id

	_, err := s.Enqueue(ctx, first)
	require.NoError(t, err)
	_, err = s.Enqueue(ctx, second)
	require.NoError(t, err)

	j, err := s.Acquire(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, j)
	assert.Equal(t, "a", j.ID, "tie on created_at should break on id ascending")
	assert.Equal(t, job.Processing, j.Status)
	require.NotNil(t, j.LockedBy)
	assert.Equal(t, "worker-1", *j.LockedBy)
}

func TestAcquireReturnsNilWhenNothingEligible(t *testing.T) {
	s := newTestStore(t)
	j, err := s.Acquire(context.Background(), "worker-1")
	require.NoError(t, err)
	assert.Nil(t, j)
}

func TestAcquireIgnoresFutureRetries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	j := newPendingJob("future", "cmd")
	_, err := s.Enqueue(ctx, j)
	require.NoError(t, err)

	acquired, err := s.Acquire(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, acquired)

	future := time.Now().UTC().Add(time.Hour)
	acquired.Status = job.Failed
	acquired.Attempts = 1
	acquired.NextRetryAt = &future
	ok, err := s.Update(ctx, acquired)
	require.NoError(t, err)
	require.True(t, ok)

	next, err := s.Acquire(ctx, "worker-2")
	require.NoError(t, err)
	assert.Nil(t, next, "a Failed job whose NextRetryAt is in the future must not be acquired")
}

func TestUpdateTransitionsToCompleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Enqueue(ctx, newPendingJob("c", "echo ok"))
	require.NoError(t, err)

	j, err := s.Acquire(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, j)

	j.Status = job.Completed
	j.Attempts++
	ok, err := s.Update(ctx, j)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, job.Completed, got.Status)
	assert.Nil(t, got.LockedBy)
	assert.Nil(t, got.LockedAt)
}

func TestUpdateUnknownIDReturnsFalse(t *testing.T) {
	s := newTestStore(t)
	ok, err := s.Update(context.Background(), newPendingJob("missing", "echo"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListFiltersByStatusAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"j1", "j2", "j3"} {
		_, err := s.Enqueue(ctx, newPendingJob(id, "echo "+id))
		require.NoError(t, err)
	}

	all, err := s.List(ctx, job.Unknown, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := s.List(ctx, job.Pending, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := s.List(ctx, job.Dead, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStatsCountsByState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Enqueue(ctx, newPendingJob("p1", "echo"))
	require.NoError(t, err)
	_, err = s.Enqueue(ctx, newPendingJob("p2", "echo"))
	require.NoError(t, err)

	acquired, err := s.Acquire(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, acquired)
	acquired.Status = job.Completed
	acquired.Attempts = 1
	_, err = s.Update(ctx, acquired)
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats[job.Pending])
	assert.Equal(t, int64(1), stats[job.Completed])
}

func TestDeleteRemovesRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Enqueue(ctx, newPendingJob("d1", "echo"))
	require.NoError(t, err)

	ok, err := s.Delete(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, "d1")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReapLeasesRestoresStaleProcessingToPending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Enqueue(ctx, newPendingJob("r1", "echo"))
	require.NoError(t, err)

	acquired, err := s.Acquire(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, acquired)

	count, err := s.ReapLeases(ctx, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, job.Pending, got.Status)
	assert.Nil(t, got.LockedBy)
}

func TestReleaseWorkerOnlyAffectsOwnedJobs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Enqueue(ctx, newPendingJob("w1", "echo"))
	require.NoError(t, err)

	acquired, err := s.Acquire(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, acquired)

	count, err := s.ReleaseWorker(ctx, "worker-2")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	count, err = s.ReleaseWorker(ctx, "worker-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := s.Get(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, job.Pending, got.Status)
}
