package infra

import (
	"context"

	"ratelimit-proxy/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStats exporta as decisões de admissão como métricas.
// Não rotula por host para não explodir a cardinalidade.
type PrometheusStats struct {
	admissions *prometheus.CounterVec
	delays     prometheus.Histogram
}

var _ domain.StatsStore = (*PrometheusStats)(nil)

func NewPrometheusStats(reg prometheus.Registerer) (*PrometheusStats, error) {
	s := &PrometheusStats{
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ratelimit_proxy",
			Name:      "admissions_total",
			Help:      "Admission checks by outcome (allowed, denied, failed).",
		}, []string{"outcome"}),
		delays: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ratelimit_proxy",
			Name:      "deny_delay_seconds",
			Help:      "Retry delay handed out on denied admissions.",
			Buckets:   []float64{1, 2, 5, 10, 30, 60, 300, 900, 3600, 43200},
		}),
	}

	for _, c := range []prometheus.Collector{s.admissions, s.delays} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	// inicializa as séries para aparecerem zeradas no /metrics
	for _, o := range []domain.Outcome{domain.OutcomeAllowed, domain.OutcomeDenied, domain.OutcomeFailed} {
		s.admissions.WithLabelValues(string(o))
	}
	return s, nil
}

func (s *PrometheusStats) Record(_ context.Context, ev domain.StatsEvent) error {
	if ev.Outcome == "" {
		return nil
	}
	s.admissions.WithLabelValues(string(ev.Outcome)).Inc()
	if ev.Outcome == domain.OutcomeDenied {
		s.delays.Observe(float64(ev.DelaySeconds))
	}
	return nil
}
