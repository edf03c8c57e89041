package container

import (
	"fmt"

	"github.com/samber/do"
	"github.com/serroba/sentinel/internal/config"
	"github.com/serroba/sentinel/internal/metrics"
	"github.com/serroba/sentinel/internal/middleware"
	"github.com/serroba/sentinel/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimitPackage provides the sentinel, its policies and the rejection responder.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*ratelimit.Policies, error) {
		opts := do.MustInvoke[*Options](i)

		unit, err := ratelimit.ParseUnit(opts.RateUnit)
		if err != nil {
			return nil, err
		}

		def, err := ratelimit.NewQuota(int64(opts.RateLimit), int64(opts.RateWindow), unit)
		if err != nil {
			return nil, err
		}

		return config.LoadPolicies(opts.PolicyFile, def)
	})

	do.Provide(injector, func(i *do.Injector) (*ratelimit.Sentinel, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		counters := do.MustInvoke[ratelimit.Store](i)

		return ratelimit.NewSentinel(counters, ratelimit.WithLogger(logger)), nil
	})

	do.Provide(injector, func(i *do.Injector) (middleware.ThrottleConfig, error) {
		opts := do.MustInvoke[*Options](i)

		format, err := ratelimit.ParseTimeFormat(opts.TimeFormat)
		if err != nil {
			return middleware.ThrottleConfig{}, err
		}

		resolver, ok := middleware.NewKeyResolver(opts.KeyBy)
		if !ok {
			return middleware.ThrottleConfig{}, fmt.Errorf("unknown key resolver %q", opts.KeyBy)
		}

		names := ratelimit.HeaderNames{
			Limit:      opts.HeaderLimit,
			Remaining:  opts.HeaderRemaining,
			Reset:      opts.HeaderReset,
			RetryAfter: opts.HeaderRetryAfter,
		}

		return middleware.ThrottleConfig{
			Admitter:  do.MustInvoke[*ratelimit.Sentinel](i),
			Policies:  do.MustInvoke[*ratelimit.Policies](i),
			Resolver:  resolver,
			Responder: ratelimit.NewHeaderResponder(names, format),
			Headers:   names,
			Format:    format,
			Recorder:  do.MustInvoke[*metrics.Metrics](i),
			Publish:   do.MustInvoke[RejectedPublisher](i),
			FailOpen:  opts.FailOpen,
			Logger:    do.MustInvoke[*zap.Logger](i),
		}, nil
	})
}

// MetricsPackage provides the Prometheus admission metrics.
func MetricsPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*metrics.Metrics, error) {
		return metrics.New(), nil
	})
}
