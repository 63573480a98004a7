package infra

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCounterStore_CountsPerWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := NewMemoryCounterStore(WithMemoryClock(func() time.Time { return now }))
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := s.Increment(ctx, "ns", "example.com", 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("expected count %d, got %d", want, got)
		}
	}

	now = now.Add(10 * time.Second)
	got, err := s.Increment(ctx, "ns", "example.com", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected counter to restart in the next window, got %d", got)
	}
}

func TestMemoryCounterStore_KeysByNamespaceAndHost(t *testing.T) {
	s := NewMemoryCounterStore()
	ctx := context.Background()

	_, _ = s.Increment(ctx, "ns1", "a", 60)
	if got, _ := s.Increment(ctx, "ns2", "a", 60); got != 1 {
		t.Fatalf("expected namespaces to be independent, got %d", got)
	}
	if got, _ := s.Increment(ctx, "ns1", "b", 60); got != 1 {
		t.Fatalf("expected hosts to be independent, got %d", got)
	}
}

func TestMemoryCounterStore_RejectsNonPositiveWindow(t *testing.T) {
	if _, err := NewMemoryCounterStore().Increment(context.Background(), "ns", "a", 0); err == nil {
		t.Fatalf("expected error for zero window")
	}
}

func TestMemoryCounterStore_CleanupRemovesExpiredWindows(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := NewMemoryCounterStore(WithMemoryClock(func() time.Time { return now }), WithCounterCleanupEvery(0))

	_, _ = s.Increment(context.Background(), "ns", "a", 1)
	_, _ = s.Increment(context.Background(), "ns", "b", 60)

	now = now.Add(2 * time.Second)
	s.Cleanup()

	if got := s.Len(); got != 1 {
		t.Fatalf("expected only the 60s window to survive, got %d counters", got)
	}
}

func TestWindowKey(t *testing.T) {
	if got := WindowKey("ns:", "example.com:8080", 42); got != "ns:example.com:8080:42" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := WindowIndex(time.Unix(125, 0), 60); got != 2 {
		t.Fatalf("expected window index 2, got %d", got)
	}
}
