package queuectl_test

import (
	"testing"
	"time"

	"github.com/dkowalski/queuectl"
	"github.com/stretchr/testify/assert"
)

func TestRetryPolicyNextAfterIsExponential(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := queuectl.RetryPolicy{BackoffBase: 2}

	assert.Equal(t, now.Add(2*time.Second), p.NextAfter(1, now))
	assert.Equal(t, now.Add(4*time.Second), p.NextAfter(2, now))
	assert.Equal(t, now.Add(8*time.Second), p.NextAfter(3, now))
}

func TestPackageLevelNextAfterMatchesPolicy(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	got := queuectl.NextAfter(3, 2, now)
	want := queuectl.RetryPolicy{BackoffBase: 2}.NextAfter(3, now)
	assert.Equal(t, want, got)
}
