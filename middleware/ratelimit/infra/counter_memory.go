package infra

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ratelimit-proxy/middleware/ratelimit/domain"
)

// MemoryCounterStore implementa domain.CounterStore em memória.
//
// Serve para um único processo (dev, testes). As chaves seguem o mesmo formato
// do RedisCounterStore e expiram no fim da janela.
type MemoryCounterStore struct {
	mu           sync.Mutex
	counters     map[string]*memoryCounter
	now          func() time.Time
	cleanupEvery time.Duration
}

type memoryCounter struct {
	count     int64
	expiresAt time.Time
}

var _ domain.CounterStore = (*MemoryCounterStore)(nil)

type MemoryCounterOption func(*MemoryCounterStore)

func WithMemoryClock(now func() time.Time) MemoryCounterOption {
	return func(s *MemoryCounterStore) { s.now = now }
}

func WithCounterCleanupEvery(d time.Duration) MemoryCounterOption {
	return func(s *MemoryCounterStore) { s.cleanupEvery = d }
}

func NewMemoryCounterStore(opts ...MemoryCounterOption) *MemoryCounterStore {
	s := &MemoryCounterStore{
		counters:     make(map[string]*memoryCounter),
		now:          time.Now,
		cleanupEvery: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryCounterStore) Increment(_ context.Context, namespace, key string, windowSeconds int) (int64, error) {
	if windowSeconds <= 0 {
		return 0, fmt.Errorf("window seconds must be > 0, got %d", windowSeconds)
	}

	now := s.now()
	idx := WindowIndex(now, windowSeconds)
	k := WindowKey(namespace, key, idx)

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[k]
	if !ok || !now.Before(c.expiresAt) {
		c = &memoryCounter{expiresAt: windowEnd(idx, windowSeconds)}
		s.counters[k] = c
	}
	c.count++
	return c.count, nil
}

// Len devolve quantos contadores estão guardados (inclusive expirados ainda não limpos).
func (s *MemoryCounterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}

// Cleanup remove contadores de janelas que já terminaram.
func (s *MemoryCounterStore) Cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, c := range s.counters {
		if !now.Before(c.expiresAt) {
			delete(s.counters, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa janelas expiradas periodicamente.
// Pare cancelando o contexto.
func (s *MemoryCounterStore) StartJanitor(ctx DoneContext) {
	startJanitor(ctx, s.cleanupEvery, s.Cleanup)
}
