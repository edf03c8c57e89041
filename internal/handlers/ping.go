package handlers

import (
	"context"

	"github.com/serroba/sentinel/internal/ratelimit"
)

// Ping answers the protected demo endpoint, echoing the caller's remaining budget.
func Ping(ctx context.Context, _ *struct{}) (*PingResponse, error) {
	resp := &PingResponse{}
	resp.Body.Message = "pong"

	if result, ok := ratelimit.ResultFromContext(ctx); ok {
		resp.Body.Remaining = result.Remaining
	}

	return resp, nil
}
