package ratelimit

import "time"

// Resolution is the precision of counter instants. Every backend, including
// PostgreSQL timestamps, round-trips it exactly.
const Resolution = time.Microsecond

// Counter is the per-key state of a fixed window.
//
// Expires is set once when the window opens and is never moved by later hits.
// Backends that cannot persist the quota reference may leave Quota nil; the
// Sentinel re-attaches it on every read.
type Counter struct {
	Total    int64
	Expires  time.Time
	LastSeen time.Time
	Quota    *Quota
}

// NewCounter opens a window for quota at now with a single recorded hit.
func NewCounter(quota *Quota, now time.Time) Counter {
	now = now.Truncate(Resolution)

	return Counter{
		Total:    1,
		Expires:  now.Add(quota.Window()),
		LastSeen: now,
		Quota:    quota,
	}
}

// Active reports whether the window is still open at now.
func (c Counter) Active(now time.Time) bool {
	return c.Expires.After(now)
}

// Remaining returns how many more requests the window admits, never negative.
func (c Counter) Remaining() int64 {
	if c.Quota == nil {
		return 0
	}

	return max(c.Quota.Limit()-c.Total, 0)
}

// Exhausted reports whether the counter is over its limit inside an open window.
func (c Counter) Exhausted(now time.Time) bool {
	return c.Quota != nil && c.Total > c.Quota.Limit() && c.Active(now)
}
