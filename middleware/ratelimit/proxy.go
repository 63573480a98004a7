package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ratelimit-proxy/middleware/ratelimit/application"
	"ratelimit-proxy/middleware/ratelimit/domain"
)

// Admitter é o contrato da decisão de admissão (implementado por application.Admission).
type Admitter interface {
	CheckAdmission(ctx context.Context, host domain.Host) (domain.Decision, error)
}

type ProxyOptions struct {
	Admission Admitter
	Forwarder Forwarder
	Stats     domain.StatsStore
	Logger    *slog.Logger

	// FailOpen deixa passar quando o CounterStore está indisponível.
	// Padrão: fail closed (503).
	FailOpen bool

	URLParam      string // padrão "url"
	RedirectParam string // padrão "r"
}

// ProxyHandler atende GET /proxy?url=<alvo>&r=<redirects>.
func ProxyHandler(opts ProxyOptions) http.Handler {
	if opts.URLParam == "" {
		opts.URLParam = "url"
	}
	if opts.RedirectParam == "" {
		opts.RedirectParam = "r"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Forwarder == nil {
		opts.Forwarder = NewHTTPForwarder()
	}
	passThrough := true
	if pt, ok := opts.Forwarder.(interface{ PassThrough() bool }); ok {
		passThrough = pt.PassThrough()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := opts.Logger.With("request_id", RequestIDFromContext(r.Context()))
		q := r.URL.Query()

		target, err := parseTarget(q.Get(opts.URLParam))
		if err != nil {
			writeValidationError(w, opts.URLParam, err.Error())
			return
		}

		var rawRedirects any
		if vals, ok := q[opts.RedirectParam]; ok && len(vals) > 0 {
			rawRedirects = vals[0]
		}
		redirects, err := application.ParseRedirects(rawRedirects)
		if err != nil {
			writeValidationError(w, opts.RedirectParam, err.Error())
			return
		}

		host := domain.Host(target.Host)
		if opts.Admission != nil {
			dec, err := opts.Admission.CheckAdmission(r.Context(), host)
			switch {
			case err != nil && opts.FailOpen && domain.IsStoreUnavailable(err):
				record(r.Context(), opts.Stats, host, domain.OutcomeFailed, 0)
				log.Warn("admission check failed, failing open", "host", host, "error", err)
			case err != nil:
				record(r.Context(), opts.Stats, host, domain.OutcomeFailed, 0)
				log.Error("admission check failed", "host", host, "error", err)
				if domain.IsStoreUnavailable(err) {
					writeError(w, http.StatusServiceUnavailable, "rate limiter unavailable")
					return
				}
				writeError(w, http.StatusInternalServerError, "admission check failed")
				return
			case !dec.Allowed:
				record(r.Context(), opts.Stats, host, domain.OutcomeDenied, dec.DelaySeconds)
				log.Warn("rate limit exceeded", "host", host, "count", dec.Count, "delay", dec.DelaySeconds)
				writeTooManyRequests(w, dec.DelaySeconds)
				return
			default:
				record(r.Context(), opts.Stats, host, domain.OutcomeAllowed, 0)
			}
		}

		resp, err := opts.Forwarder.Forward(r.Context(), ForwardRequest{
			Method:    r.Method,
			Target:    target,
			Redirects: redirects,
			Header:    r.Header,
		})
		if err != nil {
			writeForwardError(w, log, target, err)
			return
		}
		defer resp.Body.Close()

		relayResponse(w, resp, passThrough, log)
	})
}

func parseTarget(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New(`"url" is required`)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.New(`"url" must be a valid URL`)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New(`"url" must use http or https`)
	}
	if u.Host == "" {
		return nil, errors.New(`"url" must include a host`)
	}
	return u, nil
}

func writeForwardError(w http.ResponseWriter, log *slog.Logger, target *url.URL, err error) {
	failed := target.String()
	status := http.StatusBadGateway

	var ue *UpstreamError
	if errors.As(err, &ue) {
		failed = ue.URL
		if ue.Timeout() {
			status = http.StatusGatewayTimeout
		}
	}

	log.Warn("upstream request failed", "url", failed, "status", status, "error", err)
	writeUpstreamError(w, status, err.Error(), failed)
}

func relayResponse(w http.ResponseWriter, resp *http.Response, passThrough bool, log *slog.Logger) {
	if passThrough {
		copyHeader(w.Header(), resp.Header)
	} else {
		for _, h := range []string{"Content-Type", "Location"} {
			if v := resp.Header.Get(h); v != "" {
				w.Header().Set(h, v)
			}
		}
	}
	w.WriteHeader(resp.StatusCode)

	// o status já foi enviado: aqui só dá para registrar a falha.
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Warn("relaying upstream body failed", "error", err)
	}
}

func record(ctx context.Context, stats domain.StatsStore, host domain.Host, outcome domain.Outcome, delay int) {
	if stats == nil {
		return
	}
	_ = stats.Record(ctx, domain.StatsEvent{
		Host:         host,
		Outcome:      outcome,
		DelaySeconds: delay,
		At:           time.Now(),
	})
}
