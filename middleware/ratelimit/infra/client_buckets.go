package infra

import (
	"sync"
	"time"

	"ratelimit-proxy/middleware/ratelimit/domain"

	"golang.org/x/time/rate"
)

// ClientBuckets é um token bucket (x/time/rate) por cliente, com cache por
// chave e limpeza periódica de clientes inativos.
type ClientBuckets struct {
	mu           sync.Mutex
	entries      map[domain.ClientKey]*clientEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type clientEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

var _ domain.ClientLimiter = (*ClientBuckets)(nil)

type ClientBucketsOption func(*ClientBuckets)

func WithIdleTTL(d time.Duration) ClientBucketsOption {
	return func(b *ClientBuckets) { b.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) ClientBucketsOption {
	return func(b *ClientBuckets) { b.cleanupEvery = d }
}

func WithBucketsClock(now func() time.Time) ClientBucketsOption {
	return func(b *ClientBuckets) { b.now = now }
}

func NewClientBuckets(rps float64, burst int, opts ...ClientBucketsOption) *ClientBuckets {
	b := &ClientBuckets{
		entries:      make(map[domain.ClientKey]*clientEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *ClientBuckets) RPS() float64 { return float64(b.rps) }
func (b *ClientBuckets) Burst() int   { return b.burst }

// Allow consome um token do cliente. Sem token, devolve quanto falta para o
// próximo e não consome nada.
func (b *ClientBuckets) Allow(key domain.ClientKey) (bool, time.Duration) {
	now := b.now()
	lim := b.limiter(key, now)

	r := lim.ReserveN(now, 1)
	if !r.OK() {
		// burst 0: nunca vai haver token.
		return false, 0
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

func (b *ClientBuckets) limiter(key domain.ClientKey, now time.Time) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ent, ok := b.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(b.rps, b.burst)
	b.entries[key] = &clientEntry{lim: lim, lastSeen: now}
	return lim
}

func (b *ClientBuckets) Cleanup() {
	cutoff := b.now().Add(-b.idleTTL)

	b.mu.Lock()
	defer b.mu.Unlock()

	for k, ent := range b.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(b.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que remove clientes inativos periodicamente.
// Pare cancelando o contexto.
func (b *ClientBuckets) StartJanitor(ctx DoneContext) {
	startJanitor(ctx, b.cleanupEvery, b.Cleanup)
}
