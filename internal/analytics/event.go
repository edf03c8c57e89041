package analytics

import "time"

// RejectedEvent represents an event emitted when a request is throttled.
type RejectedEvent struct {
	ID         string    `json:"id"`
	Key        string    `json:"key"`
	Policy     string    `json:"policy"`
	Route      string    `json:"route"`
	Method     string    `json:"method"`
	ClientIP   string    `json:"clientIp,omitempty"`
	Limit      int64     `json:"limit"`
	RetryAfter string    `json:"retryAfter"`
	ResetAt    time.Time `json:"resetAt"`
	RejectedAt time.Time `json:"rejectedAt"`
}
