package ratelimit

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"
)

// TimeFormat selects how reset and retry-after instants are written to headers.
type TimeFormat string

const (
	// TimeFormatSeconds writes the number of seconds from now, rounded up.
	TimeFormatSeconds TimeFormat = "seconds"
	// TimeFormatTimestamp writes an absolute unix timestamp in seconds.
	TimeFormatTimestamp TimeFormat = "timestamp"
)

// ParseTimeFormat validates a configured time format.
func ParseTimeFormat(s string) (TimeFormat, error) {
	switch f := TimeFormat(s); f {
	case TimeFormatSeconds, TimeFormatTimestamp:
		return f, nil
	default:
		return "", fmt.Errorf("unknown time format %q: must be %q or %q", s, TimeFormatSeconds, TimeFormatTimestamp)
	}
}

// HeaderNames holds the response header names used for quota metadata.
type HeaderNames struct {
	Limit      string
	Remaining  string
	Reset      string
	RetryAfter string
}

// DefaultHeaderNames returns the conventional X-RateLimit-* header names.
func DefaultHeaderNames() HeaderNames {
	return HeaderNames{
		Limit:      "X-RateLimit-Limit",
		Remaining:  "X-RateLimit-Remaining",
		Reset:      "X-RateLimit-Reset",
		RetryAfter: "Retry-After",
	}
}

// Metadata returns the limit, remaining and reset headers for result.
// Exempt results carry no metadata.
func (h HeaderNames) Metadata(result Result, format TimeFormat, now time.Time) http.Header {
	header := http.Header{}
	if result.Verdict == VerdictExempt {
		return header
	}

	header.Set(h.Limit, strconv.FormatInt(result.Limit, 10))
	header.Set(h.Remaining, strconv.FormatInt(result.Remaining, 10))
	header.Set(h.Reset, formatInstant(result.ResetAt, format, now))

	return header
}

// Response is the transport-level artifact produced for a rejected request.
type Response struct {
	Status  int
	Headers http.Header
	Message string
}

// Responder turns a rejection into a response. Implementations must not mutate
// shared state so they can run outside any critical section.
type Responder interface {
	Respond(rejection Rejection, now time.Time) Response
}

// HeaderResponder is the default Responder. It answers 429 Too Many Requests
// with a Retry-After header expressed in the configured TimeFormat.
type HeaderResponder struct {
	Names   HeaderNames
	Format  TimeFormat
	Message string
}

// NewHeaderResponder creates a responder using names and format.
func NewHeaderResponder(names HeaderNames, format TimeFormat) *HeaderResponder {
	return &HeaderResponder{
		Names:   names,
		Format:  format,
		Message: "rate limit exceeded",
	}
}

func (r *HeaderResponder) Respond(rejection Rejection, now time.Time) Response {
	header := http.Header{}
	header.Set(r.Names.Limit, strconv.FormatInt(rejection.Limit, 10))
	header.Set(r.Names.Remaining, "0")
	header.Set(r.Names.Reset, formatInstant(rejection.ResetAt, r.Format, now))
	header.Set(r.Names.RetryAfter, formatDelay(rejection.RetryAfter, rejection.ResetAt, r.Format))

	msg := r.Message
	if msg == "" {
		msg = "rate limit exceeded"
	}

	return Response{
		Status:  http.StatusTooManyRequests,
		Headers: header,
		Message: fmt.Sprintf("%s: limit %d, retry in %ds", msg, rejection.Limit, ceilSeconds(rejection.RetryAfter)),
	}
}

func formatInstant(at time.Time, format TimeFormat, now time.Time) string {
	if format == TimeFormatTimestamp {
		return strconv.FormatInt(at.Unix(), 10)
	}

	return strconv.FormatInt(ceilSeconds(at.Sub(now)), 10)
}

func formatDelay(delay time.Duration, at time.Time, format TimeFormat) string {
	if format == TimeFormatTimestamp {
		return strconv.FormatInt(at.Unix(), 10)
	}

	return strconv.FormatInt(ceilSeconds(delay), 10)
}

// ceilSeconds rounds d up to whole seconds, never below zero.
func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}

	return int64(math.Ceil(d.Seconds()))
}
