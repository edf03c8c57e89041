package handlers

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/sentinel/internal/ratelimit"
	"go.uber.org/zap"
)

// Peeker reads a counter without recording an attempt.
type Peeker interface {
	Peek(ctx context.Context, key string, quota *ratelimit.Quota) (ratelimit.Counter, error)
}

// LimitsHandler exposes the counters kept by the sentinel.
type LimitsHandler struct {
	peeker   Peeker
	policies *ratelimit.Policies
	logger   *zap.Logger
}

// NewLimitsHandler creates a new limits handler.
func NewLimitsHandler(peeker Peeker, policies *ratelimit.Policies, logger *zap.Logger) *LimitsHandler {
	return &LimitsHandler{
		peeker:   peeker,
		policies: policies,
		logger:   logger,
	}
}

// Get reports the current window of a caller key under a policy.
func (h *LimitsHandler) Get(ctx context.Context, req *LimitsRequest) (*LimitsResponse, error) {
	quota, ok := h.policies.Get(req.Policy)
	if !ok {
		return nil, huma.Error404NotFound(fmt.Sprintf("unknown policy %q", req.Policy))
	}

	counter, err := h.peeker.Peek(ctx, req.Policy+":"+req.Key, quota)
	if err != nil {
		h.logger.Error("failed to read counter",
			zap.String("policy", req.Policy),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to read counter")
	}

	resp := &LimitsResponse{}
	resp.Body.Key = req.Key
	resp.Body.Policy = req.Policy
	resp.Body.Quota = quota.String()
	resp.Body.Total = counter.Total
	resp.Body.Limit = quota.Limit()
	resp.Body.Remaining = counter.Remaining()
	resp.Body.ResetAt = counter.Expires

	return resp, nil
}
