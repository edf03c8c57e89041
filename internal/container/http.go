package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/sentinel/internal/handlers"
	"github.com/serroba/sentinel/internal/health"
	"github.com/serroba/sentinel/internal/metrics"
	"github.com/serroba/sentinel/internal/middleware"
	"github.com/serroba/sentinel/internal/ratelimit"
	"go.uber.org/zap"
)

// HTTPPackage provides the router and the Huma API with every route registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*chi.Mux, error) {
		router := chi.NewMux()
		router.Handle("/metrics", do.MustInvoke[*metrics.Metrics](i).Handler())

		return router, nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)

		throttle, err := do.Invoke[middleware.ThrottleConfig](i)
		if err != nil {
			return nil, err
		}

		api := humachi.New(router, huma.DefaultConfig("Throttling Sentinel", "1.0.0"))
		api.UseMiddleware(middleware.Throttle(api, throttle))

		health.RegisterRoutes(api, healthHandler(i))
		handlers.RegisterRoutes(api, handlers.NewLimitsHandler(
			do.MustInvoke[*ratelimit.Sentinel](i),
			do.MustInvoke[*ratelimit.Policies](i),
			logger,
		))

		return api, nil
	})
}

func healthHandler(i *do.Injector) *health.Handler {
	opts := do.MustInvoke[*Options](i)
	h := health.NewHandler()

	if opts.Store == StoreRedis || opts.Events {
		h.Add("redis", health.NewRedisChecker(do.MustInvoke[*RedisClient](i).Client))
	}

	if opts.Store == StorePostgres {
		h.Add("postgres", do.MustInvoke[*PostgresPool](i).Pool)
	}

	return h
}
