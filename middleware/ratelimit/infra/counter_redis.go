package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ratelimit-proxy/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// RedisCounterStore implementa domain.CounterStore em Redis.
//
// Cada chamada faz INCR + EXPIRE dentro de um MULTI/EXEC, então processos
// diferentes atrás do mesmo Redis enxergam uma sequência estritamente crescente
// para a mesma chave.
type RedisCounterStore struct {
	rdb redis.UniversalClient
	now func() time.Time
}

var _ domain.CounterStore = (*RedisCounterStore)(nil)

type RedisCounterOption func(*RedisCounterStore)

// WithRedisClock troca o relógio usado para calcular a janela (útil em testes).
func WithRedisClock(now func() time.Time) RedisCounterOption {
	return func(s *RedisCounterStore) { s.now = now }
}

func NewRedisCounterStore(rdb redis.UniversalClient, opts ...RedisCounterOption) *RedisCounterStore {
	s := &RedisCounterStore{rdb: rdb, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisCounterStore) Increment(ctx context.Context, namespace, key string, windowSeconds int) (int64, error) {
	if windowSeconds <= 0 {
		return 0, fmt.Errorf("window seconds must be > 0, got %d", windowSeconds)
	}
	if s == nil || s.rdb == nil {
		return 0, &domain.StoreError{Namespace: namespace, Key: key, Err: errors.New("redis client not configured")}
	}

	k := WindowKey(namespace, key, WindowIndex(s.now(), windowSeconds))

	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, time.Duration(windowSeconds)*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, &domain.StoreError{Namespace: namespace, Key: key, Err: err}
	}
	return incr.Val(), nil
}

// Ping verifica a conectividade com o Redis (usado no boot e no /healthz).
func (s *RedisCounterStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
