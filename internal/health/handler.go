package health

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/sentinel/internal/ratelimit"
)

const checkTimeout = 2 * time.Second

// Checker defines the interface for checking service health.
// *pgxpool.Pool satisfies it directly.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker adapts a redis client to the Checker interface.
type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

type namedChecker struct {
	name    string
	checker Checker
}

// Handler reports the health of the counter store and the event broker.
type Handler struct {
	checks []namedChecker
}

// NewHandler creates a health handler with no dependencies registered.
func NewHandler() *Handler {
	return &Handler{}
}

// Add registers a dependency under name.
func (h *Handler) Add(name string, checker Checker) *Handler {
	h.checks = append(h.checks, namedChecker{name: name, checker: checker})

	return h
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
}

// Check performs a health check of the application and its dependencies.
// A failing dependency degrades the status without failing the request.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = "ok"
	resp.Body.Checks = make(map[string]string, len(h.checks))

	for _, c := range h.checks {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := c.checker.Ping(checkCtx)

		cancel()

		if err != nil {
			resp.Body.Checks[c.name] = "unhealthy"
			resp.Body.Status = "degraded"

			continue
		}

		resp.Body.Checks[c.name] = "healthy"
	}

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      "GET",
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
		},
	}, h.Check)
}
