package queuectl

import (
	"math"
	"time"
)

// RetryPolicy computes the instant at which a Failed job becomes
// eligible again. It is a pure function of the post-increment attempt
// count: no jitter, no cap, no access to the store or the clock beyond
// the now passed in.
//
// The policy never itself decides that a job is dead; the worker loop
// decides that by comparing Attempts to MaxRetries and only consults
// RetryPolicy when attempts remain.
type RetryPolicy struct {
	// BackoffBase is the base of the exponential delay. Must be >= 2.
	BackoffBase int
}

// NextAfter returns now + BackoffBase^attempts seconds, where attempts
// is the attempt count after the failed run that triggered the
// reschedule.
func (p RetryPolicy) NextAfter(attempts uint32, now time.Time) time.Time {
	delay := math.Pow(float64(p.BackoffBase), float64(attempts))
	return now.Add(time.Duration(delay) * time.Second)
}

// NextAfter is the package-level equivalent of RetryPolicy.NextAfter
// for callers that only need a one-off computation without
// constructing a RetryPolicy value.
func NextAfter(attempts uint32, backoffBase int, now time.Time) time.Time {
	return RetryPolicy{BackoffBase: backoffBase}.NextAfter(attempts, now)
}
