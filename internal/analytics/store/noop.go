package store

import (
	"context"

	"github.com/serroba/sentinel/internal/analytics"
	"go.uber.org/zap"
)

// Noop is a no-op implementation of analytics.Store that logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveRejected(_ context.Context, event *analytics.RejectedEvent) error {
	n.logger.Info("rejection event received",
		zap.String("id", event.ID),
		zap.String("key", event.Key),
		zap.String("policy", event.Policy),
		zap.String("route", event.Route),
		zap.Int64("limit", event.Limit),
		zap.String("retryAfter", event.RetryAfter),
		zap.Time("rejectedAt", event.RejectedAt),
	)

	return nil
}

// Compile-time check.
var _ analytics.Store = (*Noop)(nil)
