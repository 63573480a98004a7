package infra

import (
	"context"

	"ratelimit-proxy/middleware/ratelimit/domain"
)

// ChanPool é um semáforo baseado em channel.
type ChanPool struct {
	sem chan struct{}
}

var _ domain.SlotPool = (*ChanPool)(nil)

// NewChanPool cria um pool com capacidade `max`.
func NewChanPool(max int) *ChanPool {
	return &ChanPool{sem: make(chan struct{}, max)}
}

func (p *ChanPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, false
	}
	// ctx pode ter encerrado junto com a vaga livre; nesse caso devolve a vaga.
	if ctx.Err() != nil {
		<-p.sem
		return nil, false
	}
	return func() { <-p.sem }, true
}

func (p *ChanPool) InUse() int    { return len(p.sem) }
func (p *ChanPool) Capacity() int { return cap(p.sem) }
