package analytics_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/sentinel/internal/analytics"
	"github.com/serroba/sentinel/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	messages   []*message.Message
	topic      string
	publishErr error
}

func (m *mockPublisher) Publish(topic string, msgs ...*message.Message) error {
	if m.publishErr != nil {
		return m.publishErr
	}

	m.topic = topic
	m.messages = append(m.messages, msgs...)

	return nil
}

func (m *mockPublisher) Close() error {
	return nil
}

func TestNewRejectedPublisher(t *testing.T) {
	t.Run("publishes event to the rejection topic", func(t *testing.T) {
		mock := &mockPublisher{}
		publish := analytics.NewRejectedPublisher(mock)

		event := &analytics.RejectedEvent{
			ID:         "evt-1",
			Key:        "alice",
			Policy:     "default",
			Route:      "/ping",
			Limit:      3,
			RetryAfter: "57s",
			RejectedAt: time.Now(),
		}

		err := publish(context.Background(), event)

		require.NoError(t, err)
		assert.Equal(t, analytics.TopicRejected, mock.topic)
		require.Len(t, mock.messages, 1)
		assert.Equal(t, analytics.TopicRejected, mock.messages[0].Metadata.Get(messaging.MetadataTopic))

		var decoded analytics.RejectedEvent
		require.NoError(t, json.Unmarshal(mock.messages[0].Payload, &decoded))
		assert.Equal(t, "alice", decoded.Key)
		assert.Equal(t, int64(3), decoded.Limit)
	})

	t.Run("returns error when publish fails", func(t *testing.T) {
		mock := &mockPublisher{publishErr: errors.New("publish error")}
		publish := analytics.NewRejectedPublisher(mock)

		err := publish(context.Background(), &analytics.RejectedEvent{Key: "alice"})

		assert.Error(t, err)
	})
}
