package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dkowalski/queuectl"
	"github.com/dkowalski/queuectl/job"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"
)

// Store implements queuectl.Store on top of a bun.DB.
//
// Acquire performs the Pending/Failed -> Processing transition with a
// single UPDATE ... WHERE id IN (subquery) ... RETURNING statement, so
// selection and the state transition happen as one atomic step (see
// package doc).
type Store struct {
	db *bun.DB
}

// New wraps an already-configured *bun.DB. Schema initialization
// (InitDB) must have been run before use.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// DSN builds a modernc.org/sqlite data source name for path with WAL
// mode and a busy timeout enabled, for correct behavior under
// concurrent workers.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
}

// Open opens a SQLite-backed Store at path, running InitDB before
// returning. The connection pool is capped at one connection: SQLite
// serializes writers internally, and a single shared *sql.DB handle per
// process matches "each worker opens its own connection".
// when one Store is constructed per worker process.
func Open(ctx context.Context, path string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", queuectl.ErrStore, path, err)
	}
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	if err := InitDB(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: init schema: %v", queuectl.ErrStore, err)
	}
	return New(db), nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint")
}

// Enqueue implements queuectl.Store.
func (s *Store) Enqueue(ctx context.Context, j *job.Job) (bool, error) {
	model := toModel(j)
	_, err := s.db.NewInsert().Model(model).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: enqueue %s: %v", queuectl.ErrStore, j.ID, err)
	}
	return true, nil
}

// Get implements queuectl.Store.
func (s *Store) Get(ctx context.Context, id string) (*job.Job, error) {
	var m jobModel
	err := s.db.NewSelect().Model(&m).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get %s: %v", queuectl.ErrStore, id, err)
	}
	return m.toJob(), nil
}

// Acquire implements queuectl.Store's acquire algorithm:
// select at most one eligible job ordered by created_at ascending,
// tied broken by id ascending, and atomically transition it to
// Processing under workerID's lease.
func (s *Store) Acquire(ctx context.Context, workerID string) (*job.Job, error) {
	now := time.Now().UTC()
	threshold := now.Add(-queuectl.LeaseTTL)

	subQuery := s.db.NewSelect().
		Model((*jobModel)(nil)).
		Column("id").
		WhereGroup("AND", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("state = ? AND (locked_by IS NULL OR locked_at < ?)", job.Pending, threshold).
				WhereOr("state = ? AND next_retry_at <= ? AND (locked_by IS NULL OR locked_at < ?)",
					job.Failed, now, threshold)
		}).
		Order("created_at ASC", "id ASC").
		Limit(1)

	var models []*jobModel
	err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("state = ?", job.Processing).
		Set("locked_by = ?", workerID).
		Set("locked_at = ?", now).
		Set("updated_at = ?", now).
		Where("id IN (?)", subQuery).
		Returning("*").
		Scan(ctx, &models)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire for %s: %v", queuectl.ErrStore, workerID, err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	return models[0].toJob(), nil
}

// Update implements queuectl.Store. It replaces the full row for
// j.ID, unconditionally clearing the lease and stamping UpdatedAt.
func (s *Store) Update(ctx context.Context, j *job.Job) (bool, error) {
	now := time.Now().UTC()
	j.UpdatedAt = now
	j.LockedBy = nil
	j.LockedAt = nil

	if err := j.CheckInvariants(); err != nil {
		return false, fmt.Errorf("%w: update %s: %v", queuectl.ErrStore, j.ID, err)
	}

	model := toModel(j)
	res, err := s.db.NewUpdate().Model(model).WherePK().Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: update %s: %v", queuectl.ErrStore, j.ID, err)
	}
	return isAffected(res), nil
}

// List implements queuectl.Store.
func (s *Store) List(ctx context.Context, status job.Status, limit int) ([]*job.Job, error) {
	var models []*jobModel
	q := s.db.NewSelect().Model(&models).OrderExpr("created_at DESC")
	if status != job.Unknown {
		q = q.Where("state = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: list: %v", queuectl.ErrStore, err)
	}
	jobs := make([]*job.Job, len(models))
	for i, m := range models {
		jobs[i] = m.toJob()
	}
	return jobs, nil
}

type stateCount struct {
	State job.Status `bun:"state"`
	Count int64      `bun:"count"`
}

// Stats implements queuectl.Store as a single-transaction, consistent
// snapshot.
func (s *Store) Stats(ctx context.Context) (map[job.Status]int64, error) {
	out := map[job.Status]int64{}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var rows []stateCount
		if err := tx.NewSelect().
			Model((*jobModel)(nil)).
			ColumnExpr("state, count(*) AS count").
			Group("state").
			Scan(ctx, &rows); err != nil {
			return err
		}
		for _, r := range rows {
			out[r.State] = r.Count
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: stats: %v", queuectl.ErrStore, err)
	}
	return out, nil
}

// Delete implements queuectl.Store.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.NewDelete().Model((*jobModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: delete %s: %v", queuectl.ErrStore, id, err)
	}
	return isAffected(res), nil
}

// ReapLeases implements queuectl.Store.
func (s *Store) ReapLeases(ctx context.Context, expiredBefore time.Time) (int64, error) {
	res, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("state = ?", job.Pending).
		Set("locked_by = NULL").
		Set("locked_at = NULL").
		Set("updated_at = ?", time.Now().UTC()).
		Where("state = ?", job.Processing).
		Where("locked_at < ?", expiredBefore).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: reap leases: %v", queuectl.ErrStore, err)
	}
	return getAffected(res), nil
}

// ReleaseWorker implements queuectl.Store.
func (s *Store) ReleaseWorker(ctx context.Context, workerID string) (int64, error) {
	res, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("state = ?", job.Pending).
		Set("locked_by = NULL").
		Set("locked_at = NULL").
		Set("updated_at = ?", time.Now().UTC()).
		Where("state = ?", job.Processing).
		Where("locked_by = ?", workerID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: release worker %s: %v", queuectl.ErrStore, workerID, err)
	}
	return getAffected(res), nil
}

var _ queuectl.Store = (*Store)(nil)
