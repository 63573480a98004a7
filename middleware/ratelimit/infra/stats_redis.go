package infra

import (
	"context"
	"strconv"
	"strings"
	"time"

	"ratelimit-proxy/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

const delayField = "delay_seconds"

// RedisStatsStore grava os resultados de admissão em hashes do Redis, um campo
// por Outcome (allowed, denied, failed) mais delay_seconds (soma dos atrasos
// devolvidos em 429).
//
// Chaves, com o prefixo padrão "ratelimit:stats":
//
//	ratelimit:stats:total                  cumulativo, sem TTL
//	ratelimit:stats:minute:200601021504    série por minuto (UTC), com TTL
//	ratelimit:stats:host:<host>            por host de destino, com TTL (opcional)
type RedisStatsStore struct {
	rdb        redis.UniversalClient
	prefix     string
	ttl        time.Duration
	perMinute  bool
	trackHosts bool
}

var _ domain.StatsStore = (*RedisStatsStore)(nil)

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		if p := strings.Trim(prefix, ": "); p != "" {
			s.prefix = p
		}
	}
}

// WithStatsTTL vale para as chaves por minuto e por host. 0 não expira.
func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

// WithStatsBucket aceita "minute" (padrão) ou "none".
func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.perMinute = strings.ToLower(strings.TrimSpace(bucket)) != "none"
	}
}

// WithStatsTrackHosts liga a chave por host. Cuidado com a cardinalidade.
func WithStatsTrackHosts(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackHosts = track }
}

func NewRedisStatsStore(rdb redis.UniversalClient, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:       rdb,
		prefix:    "ratelimit:stats",
		ttl:       24 * time.Hour,
		perMinute: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type statsKey struct {
	name string
	ttl  time.Duration
}

func (s *RedisStatsStore) keysFor(ev domain.StatsEvent) []statsKey {
	keys := []statsKey{{name: s.prefix + ":total"}}

	if s.perMinute {
		at := ev.At
		if at.IsZero() {
			at = time.Now()
		}
		keys = append(keys, statsKey{
			name: s.prefix + ":minute:" + at.UTC().Format("200601021504"),
			ttl:  s.ttl,
		})
	}

	if h := strings.TrimSpace(string(ev.Host)); s.trackHosts && h != "" {
		keys = append(keys, statsKey{name: s.prefix + ":host:" + h, ttl: s.ttl})
	}
	return keys
}

// Record é uma única ida ao Redis (pipeline), sem MULTI: estatística não
// precisa ser atômica entre chaves.
func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil || ev.Outcome == "" {
		return nil
	}

	pipe := s.rdb.Pipeline()
	for _, k := range s.keysFor(ev) {
		pipe.HIncrBy(ctx, k.name, string(ev.Outcome), 1)
		if ev.Outcome == domain.OutcomeDenied && ev.DelaySeconds > 0 {
			pipe.HIncrBy(ctx, k.name, delayField, int64(ev.DelaySeconds))
		}
		if k.ttl > 0 {
			pipe.Expire(ctx, k.name, k.ttl)
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Totals lê os contadores cumulativos.
func (s *RedisStatsStore) Totals(ctx context.Context) (Counters, int64, error) {
	fields, err := s.rdb.HGetAll(ctx, s.prefix+":total").Result()
	if err != nil {
		return Counters{}, 0, err
	}

	num := func(f string) int64 {
		n, _ := strconv.ParseInt(fields[f], 10, 64)
		return n
	}
	c := Counters{
		Allowed: num(string(domain.OutcomeAllowed)),
		Denied:  num(string(domain.OutcomeDenied)),
		Failed:  num(string(domain.OutcomeFailed)),
	}
	return c, num(delayField), nil
}
