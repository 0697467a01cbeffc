package auth

import (
	"context"
	"fmt"
	"time"
)

// Lockout parameters: 5 consecutive failures lock the client IP out for
// baseLockout × 2^lockoutCount. lockoutCount grows with every lockout and
// never resets on success; only the failure counter does.
const (
	MaxLoginFailures = 5
	BaseLockout      = 60 * time.Second
)

// AttemptStore tracks failed-login state per client IP. Implementations must
// be safe for concurrent use; the redis implementation makes the state safe
// across server instances too.
type AttemptStore interface {
	// LockedFor returns how long the IP remains locked out, or 0 if open.
	// An expired lockout transitions back to open and zeroes the failure counter.
	LockedFor(ctx context.Context, ip string) (time.Duration, error)
	// RegisterFailure records a failed attempt. Reaching MaxLoginFailures
	// triggers a lockout and increments the lockout counter.
	RegisterFailure(ctx context.Context, ip string) error
	// RegisterSuccess zeroes the failure counter only. The lockout counter
	// persists, so the next lockout doubles again.
	RegisterSuccess(ctx context.Context, ip string) error
}

// TooManyAttemptsError reports a locked-out client with the remaining wait.
type TooManyAttemptsError struct {
	RetryAfter time.Duration
}

func (e *TooManyAttemptsError) Error() string {
	return fmt.Sprintf("too many failed login attempts; retry in %d seconds", int(e.RetryAfter.Seconds()))
}
