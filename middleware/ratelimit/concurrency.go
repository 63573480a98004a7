package ratelimit

import (
	"log/slog"
	"net/http"
	"time"

	"ratelimit-proxy/middleware/ratelimit/application"
	"ratelimit-proxy/middleware/ratelimit/infra"
)

type ConcurrencyOptions struct {
	// Max <= 0 desliga o limite.
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
	Logger         *slog.Logger
}

// ConcurrencyMiddleware limita quantos /proxy ficam em voo ao mesmo tempo.
// Quem não consegue vaga recebe RejectStatus (503 por padrão) com Retry-After: 1.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	status := opts.RejectStatus
	if status == 0 {
		status = http.StatusServiceUnavailable
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	pool := infra.NewChanPool(opts.Max)
	slots := application.ForwardSlots{Pool: pool, AcquireTimeout: opts.AcquireTimeout}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, err := slots.Acquire(r.Context())
			if err != nil {
				log.Warn("forward slot unavailable",
					"request_id", RequestIDFromContext(r.Context()),
					"in_use", pool.InUse(),
					"capacity", pool.Capacity(),
				)
				w.Header().Set("Retry-After", "1")
				writeError(w, status, err.Error())
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
