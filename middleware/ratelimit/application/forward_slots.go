package application

import (
	"context"
	"errors"
	"time"

	"ratelimit-proxy/middleware/ratelimit/domain"
)

// ErrNoForwardSlot indica que não houve vaga para um novo forward dentro do prazo.
var ErrNoForwardSlot = errors.New("no forward slot available")

// ForwardSlots limita quantos forwards para upstreams rodam ao mesmo tempo,
// sem saber nada sobre HTTP.
type ForwardSlots struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire tenta reservar uma vaga.
// - Sem Pool, sempre consegue (limite desligado).
// - Se AcquireTimeout <= 0, espera até o ctx cancelar.
// - Se AcquireTimeout > 0, desiste depois do timeout com ErrNoForwardSlot.
func (s ForwardSlots) Acquire(ctx context.Context) (func(), error) {
	if s.Pool == nil {
		return func() {}, nil
	}

	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}

	release, ok := s.Pool.Acquire(ctx)
	if !ok {
		return nil, ErrNoForwardSlot
	}
	return release, nil
}
