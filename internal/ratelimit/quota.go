package ratelimit

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInvalidQuota is returned when a quota is constructed with a non-positive limit or window.
var ErrInvalidQuota = errors.New("invalid quota")

// Unit is the multiplier applied to a quota duration to produce its window.
type Unit time.Duration

const (
	UnitSecond = Unit(time.Second)
	UnitMinute = Unit(time.Minute)
	UnitHour   = Unit(time.Hour)
)

// ParseUnit converts a configuration value such as "seconds" or "m" to a Unit.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "sec", "second", "seconds":
		return UnitSecond, nil
	case "m", "min", "minute", "minutes":
		return UnitMinute, nil
	case "h", "hour", "hours":
		return UnitHour, nil
	default:
		return 0, fmt.Errorf("%w: unknown window unit %q", ErrInvalidQuota, s)
	}
}

func (u Unit) String() string {
	switch u {
	case UnitSecond:
		return "second"
	case UnitMinute:
		return "minute"
	case UnitHour:
		return "hour"
	default:
		return time.Duration(u).String()
	}
}

// Quota is the number of requests admitted per fixed window.
// A Quota is immutable and may be shared by every key governed by the same policy.
type Quota struct {
	limit  int64
	window time.Duration
}

// NewQuota creates a quota admitting count requests every duration*unit.
func NewQuota(count, duration int64, unit Unit) (*Quota, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: rate limit must be at least 1, got %d", ErrInvalidQuota, count)
	}

	if duration <= 0 || unit <= 0 {
		return nil, fmt.Errorf("%w: window must be positive, got %d %s", ErrInvalidQuota, duration, unit)
	}

	if duration > math.MaxInt64/int64(unit) {
		return nil, fmt.Errorf("%w: window of %d %s overflows", ErrInvalidQuota, duration, unit)
	}

	window := time.Duration(duration) * time.Duration(unit)

	return &Quota{limit: count, window: window}, nil
}

// MustQuota is like NewQuota but panics on invalid input.
// It is intended for statically declared endpoint policies.
func MustQuota(count, duration int64, unit Unit) *Quota {
	q, err := NewQuota(count, duration, unit)
	if err != nil {
		panic(err)
	}

	return q
}

// Limit returns the maximum number of requests admitted per window.
func (q *Quota) Limit() int64 {
	return q.limit
}

// Window returns the length of the fixed window.
func (q *Quota) Window() time.Duration {
	return q.window
}

func (q *Quota) String() string {
	return fmt.Sprintf("%d/%s", q.limit, q.window)
}
