package analytics

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/sentinel/internal/messaging"
	"go.uber.org/zap"
)

// NewConsumer creates a consumer that persists rejection events to store.
func NewConsumer(subscriber message.Subscriber, store Store, logger *zap.Logger) *messaging.Consumer[RejectedEvent] {
	return messaging.NewConsumer(subscriber, TopicRejected, store.SaveRejected, logger)
}
