// Package store provides a bun-based SQL implementation of
// queuectl.Store.
//
// # Overview
//
// The backend provides durable persistence, atomic state transitions,
// and lease (visibility timeout) semantics on top of any bun-supported
// dialect; it is exercised here against SQLite via modernc.org/sqlite.
//
// # Concurrency Model
//
// Acquire is implemented as a single UPDATE ... WHERE id IN (subquery)
// statement with RETURNING, so selection and the Pending/Failed ->
// Processing transition happen atomically — no separate SELECT-then-
// UPDATE race window exists between two concurrent callers.
//
// SQLite users should enable WAL mode and a busy_timeout and keep the
// connection pool at a single connection, since SQLite itself
// serializes writers.
//
// # Schema
//
// InitDB creates the jobs table and the (state, next_retry_at) and
// (state, locked_at) indexes that Acquire's WHERE clause depends on.
// InitDB is idempotent and runs inside a single transaction.
package store
