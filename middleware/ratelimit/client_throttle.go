package ratelimit

import (
	"net"
	"net/http"
	"strings"

	"ratelimit-proxy/middleware/ratelimit/domain"
)

type KeyFunc func(r *http.Request) domain.ClientKey

// ClientThrottleOptions configura o limite por cliente do gateway.
// É independente da admissão por host de destino.
type ClientThrottleOptions struct {
	Limiter             domain.ClientLimiter
	KeyFn               KeyFunc
	KeyHeader           string
	TrustXForwardedFor  bool
	AddRateLimitHeaders bool
}

type rateInfo interface {
	RPS() float64
	Burst() int
}

func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) domain.ClientKey {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return domain.ClientKey(v)
			}
		}

		if trustXFF {
			// pega o primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return domain.ClientKey(ip)
				}
			}
		}

		// fallback: RemoteAddr
		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return domain.ClientKey(host)
		}
		if r.RemoteAddr != "" {
			return domain.ClientKey(r.RemoteAddr)
		}
		return "unknown"
	}
}

// ClientThrottle devolve 429 (com Retry-After) quando o cliente passa do seu bucket.
// Sem Limiter, é um no-op.
func ClientThrottle(opts ClientThrottleOptions) func(next http.Handler) http.Handler {
	if opts.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			if opts.AddRateLimitHeaders {
				w.Header().Set("X-RateLimit-Key", string(key))
				if ri, ok := opts.Limiter.(rateInfo); ok {
					w.Header().Set("X-RateLimit-RPS", formatFloat(ri.RPS()))
					w.Header().Set("X-RateLimit-Burst", formatInt(ri.Burst()))
				}
			}

			allowed, retryAfter := opts.Limiter.Allow(key)
			if !allowed {
				writeTooManyRequests(w, max(retryAfterSeconds(retryAfter), 1))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
