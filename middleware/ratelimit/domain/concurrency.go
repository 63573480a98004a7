package domain

import "context"

// SlotPool limita quantos forwards para upstreams ficam em voo.
//
// Acquire espera por uma vaga enquanto o ctx estiver vivo. Com ok=true, o
// chamador devolve a vaga chamando release uma única vez; com ok=false não há
// nada a devolver.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}
