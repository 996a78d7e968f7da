package usecases

import (
	"time"
)

// LockoutPolicy decides when repeated login failures lock an account. Pure
// function of the failure counter and the clock; the counter itself lives on
// the account row.
type LockoutPolicy struct {
	Threshold int
	Duration  time.Duration
}

// NewLockoutPolicy creates a policy, falling back to 5 attempts / 15 minutes
// when unset.
func NewLockoutPolicy(threshold int, duration time.Duration) LockoutPolicy {
	if threshold <= 0 {
		threshold = 5
	}
	if duration <= 0 {
		duration = 15 * time.Minute
	}
	return LockoutPolicy{Threshold: threshold, Duration: duration}
}

// NextFailure returns the counter value to persist after one more failure
// and, when the threshold is reached, the lockout deadline. On lockout the
// counter resets to zero so the next window starts clean.
func (p LockoutPolicy) NextFailure(currentCount int, now time.Time) (newCount int, lockedUntil *time.Time) {
	newCount = currentCount + 1
	if newCount >= p.Threshold {
		until := now.Add(p.Duration)
		return 0, &until
	}
	return newCount, nil
}
