package infra

import (
	"context"
	"maps"
	"sync"

	"ratelimit-proxy/middleware/ratelimit/domain"
)

type Counters struct {
	Allowed int64
	Denied  int64
	Failed  int64
}

func (c *Counters) add(o domain.Outcome) {
	switch o {
	case domain.OutcomeAllowed:
		c.Allowed++
	case domain.OutcomeDenied:
		c.Denied++
	case domain.OutcomeFailed:
		c.Failed++
	}
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu     sync.Mutex
	total  Counters
	byHost map[domain.Host]Counters

	trackHosts bool
}

var _ domain.StatsStore = (*MemoryStatsStore)(nil)

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackHosts(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackHosts = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{byHost: make(map[domain.Host]Counters)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Outcome)
	if s.trackHosts && ev.Host != "" {
		c := s.byHost[ev.Host]
		c.add(ev.Outcome)
		s.byHost[ev.Host] = c
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByHost() map[domain.Host]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.byHost)
}
