// Package queuectl implements the durable queue state machine and
// worker dispatch protocol for a persistent, multi-worker background
// job queue with at-most-once execution per successful attempt,
// bounded retries with exponential backoff, and a dead-letter sink.
//
// # Overview
//
// A Job (package job) is an opaque shell command plus delivery
// bookkeeping: state, attempt count, retry schedule, and lease
// ownership. The Store interface defined in this package is the single
// durable, concurrency-safe keeper of Job records; its Acquire
// operation is the one place mutual exclusion between workers is
// enforced.
//
// # State Machine
//
// Jobs follow this lifecycle:
//
//	Pending    -> Processing
//	Processing -> Completed
//	Processing -> Failed      (retry scheduled; see RetryPolicy)
//	Failed     -> Processing  (once NextRetryAt has passed)
//	Processing -> Dead        (attempts exhausted)
//
// Completed and Dead are terminal; a Dead job is only revived by an
// explicit requeue (see package admission).
//
// # Lease Model
//
// Acquire grants the calling worker a lease: LockedBy/LockedAt are
// stamped and the job moves to Processing. The lease expires
// LeaseTTL after LockedAt; after expiry, any worker's next Acquire (or
// a periodic ReapLeases sweep, package reaper) may steal it. A worker
// that crashes mid-job leaves its lease to expire naturally — the
// system explicitly accepts the resulting duplicate execution as the
// cost of poll-only, process-isolated workers.
//
// # Retry Policy
//
// On failure, Attempts increments and, while Attempts < MaxRetries,
// the job returns to Failed with NextRetryAt set to now plus
// BackoffBase^Attempts seconds (package-level NextAfter). Once
// Attempts reaches MaxRetries, the job is declared Dead instead.
//
// # Components
//
// Store       — durable, atomic keeper of Job records (this package).
// RetryPolicy — pure attempts -> next-retry-instant function.
// runner      — executes a job's command, reporting success/diagnostic.
// worker      — one serial consumer: acquire, run, apply outcome, loop.
// pool        — spawns N worker processes, forwards shutdown signals.
// admission   — thin façade: submit, get, list, stats, delete, requeue.
// reaper      — periodic sweep reclaiming expired leases.
// config      — key-value configuration document loader.
// store (nested module) — bun/SQLite implementation of Store.
//
// # Non-goals
//
// Distribution across machines, exactly-once semantics, priority
// queueing, job dependencies, streaming of command output,
// authentication, and rate limiting are explicitly out of scope.
package queuectl
