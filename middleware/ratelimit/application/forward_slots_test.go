package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

type blockingPool struct{}

func (p *blockingPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case <-ctx.Done():
		return nil, false
	case <-time.After(5 * time.Second):
		// não deve chegar aqui nos testes
		return nil, false
	}
}

type immediatePool struct {
	acquired int
	released int
}

func (p *immediatePool) Acquire(ctx context.Context) (func(), bool) {
	p.acquired++
	return func() { p.released++ }, true
}

func TestForwardSlots_AcquireWithoutPool(t *testing.T) {
	release, err := ForwardSlots{}.Acquire(context.Background())
	if err != nil {
		t.Fatalf("expected slot, got %v", err)
	}
	release()
}

func TestForwardSlots_TimesOut(t *testing.T) {
	slots := ForwardSlots{Pool: &blockingPool{}, AcquireTimeout: 10 * time.Millisecond}

	_, err := slots.Acquire(context.Background())
	if !errors.Is(err, ErrNoForwardSlot) {
		t.Fatalf("expected ErrNoForwardSlot, got %v", err)
	}
}

func TestForwardSlots_CallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ForwardSlots{Pool: &blockingPool{}}.Acquire(ctx)
	if !errors.Is(err, ErrNoForwardSlot) {
		t.Fatalf("expected ErrNoForwardSlot, got %v", err)
	}
}

func TestForwardSlots_DelegatesToPool(t *testing.T) {
	pool := &immediatePool{}
	release, err := ForwardSlots{Pool: pool}.Acquire(context.Background())
	if err != nil {
		t.Fatalf("expected slot, got %v", err)
	}
	release()

	if pool.acquired != 1 || pool.released != 1 {
		t.Fatalf("expected one acquire and one release, got %d/%d", pool.acquired, pool.released)
	}
}
