package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/sentinel/internal/analytics"
	"github.com/serroba/sentinel/internal/analytics/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewNoop(t *testing.T) {
	logger := zap.NewNop()
	noop := store.NewNoop(logger)

	assert.NotNil(t, noop)
}

func TestNoop_SaveRejected(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	noop := store.NewNoop(zap.New(core))

	event := &analytics.RejectedEvent{
		ID:         "evt-1",
		Key:        "alice",
		Policy:     "default",
		Route:      "/ping",
		Limit:      3,
		RetryAfter: "57s",
		RejectedAt: time.Now(),
	}

	err := noop.SaveRejected(context.Background(), event)

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "alice", logs.All()[0].ContextMap()["key"])
}
