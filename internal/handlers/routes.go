package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/sentinel/internal/ratelimit"
)

// RegisterRoutes registers the sentinel routes with per-endpoint rate limit configuration.
func RegisterRoutes(api huma.API, limits *LimitsHandler) {
	// GET /ping - Protected demo endpoint
	// Throttled under the default policy
	huma.Register(api, huma.Operation{
		OperationID: "ping",
		Method:      http.MethodGet,
		Path:        "/ping",
		Summary:     "Ping",
		Description: "Answers pong while the caller is within its quota.",
		Tags:        []string{"Demo"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Policy: ratelimit.DefaultPolicy},
		},
	}, Ping)

	// GET /limits/{key} - Inspect a caller's window
	// Not throttled so callers can always check their budget
	huma.Register(api, huma.Operation{
		OperationID: "get-limits",
		Method:      http.MethodGet,
		Path:        "/limits/{key}",
		Summary:     "Inspect limits",
		Description: "Reports the counter of a caller key under a policy without counting an attempt.",
		Tags:        []string{"Limits"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
		},
	}, limits.Get)
}
