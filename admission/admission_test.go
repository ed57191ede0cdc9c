package admission_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dkowalski/queuectl"
	"github.com/dkowalski/queuectl/admission"
	"github.com/dkowalski/queuectl/job"
	"github.com/dkowalski/queuectl/metrics"
	"github.com/dkowalski/queuectl/store"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"
)

func newServiceAndStore(t *testing.T) (*admission.Service, *store.Store) {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", "file::memory:?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	require.NoError(t, store.InitDB(context.Background(), db))
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.New(db)
	return admission.New(st, 3, log), st
}

func newService(t *testing.T) *admission.Service {
	t.Helper()
	s, _ := newServiceAndStore(t)
	return s
}

func TestSubmitAssignsIDAndDefaults(t *testing.T) {
	s := newService(t)
	j, err := s.Submit(context.Background(), "echo hi", 0)
	require.NoError(t, err)
	require.NotEmpty(t, j.ID)
	require.Equal(t, uint32(3), j.MaxRetries)
	require.Equal(t, job.Pending, j.Status)
}

func TestSubmitHonorsExplicitMaxRetries(t *testing.T) {
	s := newService(t)
	j, err := s.Submit(context.Background(), "echo hi", 7)
	require.NoError(t, err)
	require.Equal(t, uint32(7), j.MaxRetries)
}

func TestSubmitWithIDRejectsDuplicate(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	j, err := s.SubmitWithID(ctx, "fixed-id", "echo hi", 0)
	require.NoError(t, err)
	require.Equal(t, "fixed-id", j.ID)

	_, err = s.SubmitWithID(ctx, "fixed-id", "echo bye", 0)
	require.True(t, errors.Is(err, queuectl.ErrDuplicateID))
}

func TestSubmitRecordsEnqueueMetric(t *testing.T) {
	s := newService(t)
	collector := metrics.NewCollector()
	s.SetMetrics(collector)

	_, err := s.Submit(context.Background(), "echo hi", 0)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, req)
	require.Contains(t, rec.Body.String(), "queuectl_jobs_enqueued_total 1")
}

func TestGetUnknownReturnsErrNotFound(t *testing.T) {
	s := newService(t)
	_, err := s.Get(context.Background(), "missing")
	require.True(t, errors.Is(err, queuectl.ErrNotFound))
}

func TestRequeueFromDeadRequiresDeadState(t *testing.T) {
	s := newService(t)
	j, err := s.Submit(context.Background(), "echo hi", 3)
	require.NoError(t, err)

	_, err = s.RequeueFromDead(context.Background(), j.ID)
	require.True(t, errors.Is(err, queuectl.ErrInvalidState))
}

func TestRequeueFromDeadResetsJob(t *testing.T) {
	s, st := newServiceAndStore(t)
	ctx := context.Background()

	j, err := s.Submit(ctx, "false", 1)
	require.NoError(t, err)

	// Admission exposes no "mark failed" operation of its own; drive the
	// job to Dead directly through the store, as a worker would.
	j.Status = job.Dead
	j.Attempts = 1
	msg := "boom"
	j.ErrorMessage = &msg
	ok, err := st.Update(ctx, j)
	require.NoError(t, err)
	require.True(t, ok)

	requeued, err := s.RequeueFromDead(ctx, j.ID)
	require.NoError(t, err)
	require.Equal(t, job.Pending, requeued.Status)
	require.Equal(t, uint32(0), requeued.Attempts)
	require.Nil(t, requeued.ErrorMessage)
}

func TestListAndStats(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, err := s.Submit(ctx, "echo a", 0)
	require.NoError(t, err)
	_, err = s.Submit(ctx, "echo b", 0)
	require.NoError(t, err)

	jobs, err := s.List(ctx, job.Pending, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats[job.Pending])
}

func TestDeleteRemovesJob(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	j, err := s.Submit(ctx, "echo a", 0)
	require.NoError(t, err)

	ok, err := s.Delete(ctx, j.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = s.Get(ctx, j.ID)
	require.True(t, errors.Is(err, queuectl.ErrNotFound))
}
