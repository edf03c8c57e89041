package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/serroba/sentinel/internal/analytics"
	"github.com/serroba/sentinel/internal/messaging"
	"github.com/serroba/sentinel/internal/ratelimit"
	"go.uber.org/zap"
)

// Recorder observes throttling decisions.
type Recorder interface {
	Decision(route, policy, verdict string)
	StoreError(route, policy string)
}

type nopRecorder struct{}

func (nopRecorder) Decision(_, _, _ string) {}
func (nopRecorder) StoreError(_, _ string)  {}

// ThrottleConfig wires the collaborators of the Throttle middleware.
type ThrottleConfig struct {
	Admitter  ratelimit.Admitter
	Policies  *ratelimit.Policies
	Resolver  KeyResolver
	Responder ratelimit.Responder
	Headers   ratelimit.HeaderNames
	Format    ratelimit.TimeFormat
	Recorder  Recorder
	Publish   messaging.Publish[analytics.RejectedEvent]

	// FailOpen admits requests when the counter store is unavailable.
	FailOpen bool

	Now    func() time.Time
	Logger *zap.Logger
}

func (c *ThrottleConfig) withDefaults() {
	if c.Resolver == nil {
		c.Resolver = ClientKeyResolver{}
	}

	if c.Headers == (ratelimit.HeaderNames{}) {
		c.Headers = ratelimit.DefaultHeaderNames()
	}

	if c.Format == "" {
		c.Format = ratelimit.TimeFormatSeconds
	}

	if c.Responder == nil {
		c.Responder = ratelimit.NewHeaderResponder(c.Headers, c.Format)
	}

	if c.Recorder == nil {
		c.Recorder = nopRecorder{}
	}

	if c.Publish == nil {
		c.Publish = messaging.Discard[analytics.RejectedEvent]()
	}

	if c.Now == nil {
		c.Now = time.Now
	}

	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// Throttle returns a Huma middleware that admits each request against the quota
// of its endpoint policy.
//
// Per-endpoint configuration can be provided via operation metadata using
// ratelimit.MetadataKey. Endpoints may name a policy, carry an inline quota or
// disable throttling entirely.
func Throttle(api huma.API, cfg ThrottleConfig) func(ctx huma.Context, next func(huma.Context)) {
	cfg.withDefaults()

	return func(ctx huma.Context, next func(huma.Context)) {
		route := operationPath(ctx)
		endpoint := ratelimit.GetEndpointConfig(ctx)

		if endpoint != nil && endpoint.Disabled {
			cfg.Logger.Debug("rate limiting disabled for endpoint",
				zap.String("path", route), zap.String("method", ctx.Method()))
			next(ctx)

			return
		}

		quota, policy, err := cfg.Policies.Resolve(endpoint)
		if err != nil {
			cfg.Logger.Error("rate limit policy resolution failed", zap.String("path", route), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		key := scopedKey(policy, route, cfg.Resolver.Key(ctx))

		result, err := cfg.Admitter.Admit(ctx.Context(), key, quota)
		if err != nil {
			handleAdmitError(api, ctx, cfg, route, policy, err, next)

			return
		}

		cfg.Recorder.Decision(route, policy, result.Verdict.String())

		now := cfg.Now()
		for name, values := range cfg.Headers.Metadata(result, cfg.Format, now) {
			ctx.SetHeader(name, values[0])
		}

		if !result.Allowed() {
			reject(api, ctx, cfg, route, policy, key, result, now)

			return
		}

		next(huma.WithContext(ctx, ratelimit.ContextWithResult(ctx.Context(), result)))
	}
}

func handleAdmitError(
	api huma.API,
	ctx huma.Context,
	cfg ThrottleConfig,
	route, policy string,
	err error,
	next func(huma.Context),
) {
	if cerr := ctx.Context().Err(); cerr != nil && errors.Is(err, cerr) {
		cfg.Logger.Debug("request canceled before admission", zap.String("path", route))

		return
	}

	cfg.Recorder.StoreError(route, policy)
	cfg.Logger.Error("rate limit check failed",
		zap.String("path", route),
		zap.String("policy", policy),
		zap.Bool("fail_open", cfg.FailOpen),
		zap.Error(err),
	)

	if cfg.FailOpen {
		next(ctx)

		return
	}

	_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)
}

func reject(
	api huma.API,
	ctx huma.Context,
	cfg ThrottleConfig,
	route, policy, key string,
	result ratelimit.Result,
	now time.Time,
) {
	rejection := result.Rejection()
	resp := cfg.Responder.Respond(rejection, now)

	for name, values := range resp.Headers {
		ctx.SetHeader(name, values[0])
	}

	clientIP := ClientIP(ctx)

	cfg.Logger.Warn("rate limit exceeded",
		zap.String("path", route),
		zap.String("method", ctx.Method()),
		zap.String("policy", policy),
		zap.Int64("limit", rejection.Limit),
		zap.Duration("retry_after", rejection.RetryAfter),
		zap.String("client_ip", clientIP),
	)

	event := &analytics.RejectedEvent{
		ID:         uuid.NewString(),
		Key:        key,
		Policy:     policy,
		Route:      route,
		Method:     ctx.Method(),
		ClientIP:   clientIP,
		Limit:      rejection.Limit,
		RetryAfter: rejection.RetryAfter.String(),
		ResetAt:    rejection.ResetAt,
		RejectedAt: now,
	}

	if err := cfg.Publish(ctx.Context(), event); err != nil {
		cfg.Logger.Error("failed to publish rejection event",
			zap.String("id", event.ID),
			zap.Error(err),
		)
	}

	_ = huma.WriteErr(api, ctx, resp.Status, resp.Message, result.Err())
}

// scopedKey namespaces a caller key by policy so that each policy keeps its own window.
// Inline quotas are further scoped by route template.
func scopedKey(policy, route, key string) string {
	if key == "" {
		return ""
	}

	if policy == "inline" {
		return policy + ":" + route + ":" + key
	}

	return policy + ":" + key
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}
