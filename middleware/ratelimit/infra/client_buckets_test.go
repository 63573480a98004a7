package infra

import (
	"testing"
	"time"

	"ratelimit-proxy/middleware/ratelimit/domain"
)

func TestClientBuckets_LowBurstRejectsSecondImmediateCall(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	b := NewClientBuckets(0.5, 1, WithBucketsClock(func() time.Time { return now }))

	if ok, _ := b.Allow("10.0.0.1"); !ok {
		t.Fatalf("expected first call to be allowed")
	}
	ok, retryAfter := b.Allow("10.0.0.1")
	if ok {
		t.Fatalf("expected second immediate call to be rejected (burst=1)")
	}
	if retryAfter != 2*time.Second {
		t.Fatalf("expected retry after 2s at 0.5 rps, got %s", retryAfter)
	}

	// a rejeição não consome token: depois de 2s volta a passar.
	now = now.Add(2 * time.Second)
	if ok, _ := b.Allow("10.0.0.1"); !ok {
		t.Fatalf("expected call to be allowed after refill")
	}
}

func TestClientBuckets_KeysAreIndependent(t *testing.T) {
	b := NewClientBuckets(0.02, 1)

	if ok, _ := b.Allow("k1"); !ok {
		t.Fatalf("expected k1 to be allowed")
	}
	if ok, _ := b.Allow("k2"); !ok {
		t.Fatalf("expected k2 to be allowed")
	}
}

func TestClientBuckets_CleanupRemovesIdleEntries(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	b := NewClientBuckets(0.02, 1,
		WithIdleTTL(time.Minute),
		WithCleanupEvery(0),
		WithBucketsClock(func() time.Time { return now }),
	)

	before := b.limiter(domain.ClientKey("k"), now)
	now = now.Add(2 * time.Minute)
	b.Cleanup()

	after := b.limiter(domain.ClientKey("k"), now)
	if before == after {
		t.Fatalf("expected limiter to be recreated after cleanup")
	}
}
