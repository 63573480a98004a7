package ratelimit

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterOptions struct {
	Proxy          http.Handler
	ClientThrottle ClientThrottleOptions
	Concurrency    ConcurrencyOptions

	// Metrics é servido em GET /metrics quando não é nil.
	Metrics http.Handler
	// Health é chamado em GET /healthz; nil responde sempre 200.
	Health func(ctx context.Context) error
}

// NewRouter monta as rotas do gateway.
func NewRouter(opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if opts.Health != nil {
			if err := opts.Health(req.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable, err.Error())
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.With(
		ClientThrottle(opts.ClientThrottle),
		ConcurrencyMiddleware(opts.Concurrency),
	).Method(http.MethodGet, "/proxy", opts.Proxy)

	return r
}
