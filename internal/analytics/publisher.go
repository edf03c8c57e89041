package analytics

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/sentinel/internal/messaging"
)

// TopicRejected is the topic rejection events are published to.
const TopicRejected = "ratelimit.rejected"

// NewRejectedPublisher creates a typed publish function for rejection events.
func NewRejectedPublisher(publisher message.Publisher) messaging.Publish[RejectedEvent] {
	return messaging.NewPublishFunc[RejectedEvent](publisher, TopicRejected)
}
