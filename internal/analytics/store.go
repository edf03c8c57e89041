package analytics

import "context"

// Store defines the interface for persisting analytics events.
type Store interface {
	SaveRejected(ctx context.Context, event *RejectedEvent) error
}
