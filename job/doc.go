// Package job defines the durable representation of a queued shell
// command within queuectl.
//
// A Job carries its identity and command alongside delivery and
// scheduling metadata: Status, Attempts, MaxRetries, the lease fields
// (LockedBy/LockedAt), and the retry fields (NextRetryAt,
// ErrorMessage). These fields are maintained exclusively by the store
// and the worker loop that applies outcomes back to it.
//
// Job values returned by the store are snapshots, not live handles.
// Transitions are performed by calling back into the store
// (Store.Acquire, Store.Update), never by mutating a Job in place and
// expecting persistence to follow.
package job
