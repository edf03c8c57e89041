package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrLimitExceeded is the sentinel wrapped by every RejectedError.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// Verdict is the outcome of an admission check.
type Verdict int

const (
	// VerdictAllowed admits the request inside its quota.
	VerdictAllowed Verdict = iota
	// VerdictRejected refuses the request until the window resets.
	VerdictRejected
	// VerdictExempt admits a request that could not be attributed to any key.
	VerdictExempt
)

func (v Verdict) String() string {
	switch v {
	case VerdictAllowed:
		return "allowed"
	case VerdictRejected:
		return "rejected"
	case VerdictExempt:
		return "exempt"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Result carries the admission decision and the metadata a client needs to back off.
type Result struct {
	Verdict    Verdict
	Limit      int64
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Allowed reports whether the request may proceed.
func (r Result) Allowed() bool {
	return r.Verdict != VerdictRejected
}

// Rejection returns the rejection details. It is only meaningful for rejected results.
func (r Result) Rejection() Rejection {
	return Rejection{
		Limit:      r.Limit,
		RetryAfter: r.RetryAfter,
		ResetAt:    r.ResetAt,
	}
}

// Err returns a *RejectedError for rejected results and nil otherwise.
// Use it where a hosting layer needs an error to abort its pipeline.
func (r Result) Err() error {
	if r.Verdict != VerdictRejected {
		return nil
	}

	return &RejectedError{Rejection: r.Rejection()}
}

// Rejection describes a refused attempt.
type Rejection struct {
	Limit      int64
	RetryAfter time.Duration
	ResetAt    time.Time
}

// RejectedError is the error form of a rejection.
type RejectedError struct {
	Rejection Rejection
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("rate limit of %d exceeded, retry after %s", e.Rejection.Limit, e.Rejection.RetryAfter)
}

func (e *RejectedError) Unwrap() error {
	return ErrLimitExceeded
}

// RejectionFromError extracts the rejection carried by err, if any.
func RejectionFromError(err error) (Rejection, bool) {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.Rejection, true
	}

	return Rejection{}, false
}

type resultKey struct{}

// ContextWithResult attaches an admission result to ctx for downstream handlers.
func ContextWithResult(ctx context.Context, result Result) context.Context {
	return context.WithValue(ctx, resultKey{}, result)
}

// ResultFromContext returns the admission result attached by the throttle middleware.
func ResultFromContext(ctx context.Context) (Result, bool) {
	r, ok := ctx.Value(resultKey{}).(Result)

	return r, ok
}
