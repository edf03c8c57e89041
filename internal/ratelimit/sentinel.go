package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// maxInsertAttempts bounds how often Admit retries after losing a TryAdd race
// against another process sharing the same backend.
const maxInsertAttempts = 3

// ErrContention is returned when a counter could not be created because
// concurrent writers kept winning the insert race.
var ErrContention = errors.New("counter insert contention")

// Admitter decides whether a request identified by key fits within quota.
type Admitter interface {
	Admit(ctx context.Context, key string, quota *Quota) (Result, error)
}

// Option configures a Sentinel.
type Option func(*Sentinel)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Sentinel) {
		s.now = now
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Sentinel) {
		s.logger = logger
	}
}

// Sentinel enforces fixed-window quotas over a Store.
//
// Every read-modify-write of a counter happens while holding a mutex scoped to
// that counter's key, so attempts for one key are totally ordered while
// attempts for different keys proceed in parallel.
type Sentinel struct {
	store  Store
	locks  *keyLocks
	now    func() time.Time
	logger *zap.Logger
}

// NewSentinel creates a Sentinel backed by store.
func NewSentinel(store Store, opts ...Option) *Sentinel {
	s := &Sentinel{
		store:  store,
		locks:  newKeyLocks(),
		now:    time.Now,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Admit records an attempt for key and decides whether it fits within quota.
//
// An empty key cannot be attributed to a caller and is exempt from throttling.
// Store failures are returned as errors; the caller decides whether to fail open or closed.
func (s *Sentinel) Admit(ctx context.Context, key string, quota *Quota) (Result, error) {
	if key == "" {
		return Result{Verdict: VerdictExempt}, nil
	}

	if quota == nil {
		return Result{}, fmt.Errorf("%w: nil quota for key %q", ErrInvalidQuota, key)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	unlock := s.locks.lock(key)
	defer unlock()

	now := s.now()

	counter, err := s.hit(ctx, key, quota, now)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Verdict:    VerdictAllowed,
		Limit:      quota.Limit(),
		Remaining:  counter.Remaining(),
		ResetAt:    counter.Expires,
		RetryAfter: counter.Expires.Sub(now),
	}

	if counter.Exhausted(now) {
		result.Verdict = VerdictRejected
	}

	s.logger.Debug("admission decided",
		zap.String("key", key),
		zap.Stringer("verdict", result.Verdict),
		zap.Int64("total", counter.Total),
		zap.Int64("limit", quota.Limit()),
		zap.Time("reset_at", counter.Expires),
	)

	return result, nil
}

// Peek returns the current counter for key without recording an attempt.
// A missing or stale counter is reported as an empty window.
func (s *Sentinel) Peek(ctx context.Context, key string, quota *Quota) (Counter, error) {
	counter, found, err := s.store.Get(ctx, key)
	if err != nil {
		return Counter{}, fmt.Errorf("get counter: %w", err)
	}

	counter.Quota = quota

	if !found || !counter.Active(s.now()) {
		return Counter{Quota: quota}, nil
	}

	return counter, nil
}

// hit applies one attempt to the counter for key and persists it.
// Stale counters are replaced by a fresh window rather than incremented.
func (s *Sentinel) hit(ctx context.Context, key string, quota *Quota, now time.Time) (Counter, error) {
	for range maxInsertAttempts {
		counter, found, err := s.store.Get(ctx, key)
		if err != nil {
			return Counter{}, fmt.Errorf("get counter: %w", err)
		}

		switch {
		case !found:
			counter = NewCounter(quota, now)

			added, err := s.store.TryAdd(ctx, key, counter)
			if err != nil {
				return Counter{}, fmt.Errorf("add counter: %w", err)
			}

			if !added {
				continue
			}

			return counter, nil
		case !counter.Active(now):
			counter = NewCounter(quota, now)
		default:
			counter.Total++
			counter.LastSeen = now
			counter.Quota = quota
		}

		if err := s.store.Put(ctx, key, counter); err != nil {
			return Counter{}, fmt.Errorf("put counter: %w", err)
		}

		return counter, nil
	}

	return Counter{}, fmt.Errorf("%w: key %q", ErrContention, key)
}
