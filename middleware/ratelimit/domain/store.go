package domain

import "context"

// CounterStore é o contador atômico compartilhado (externo ao processo).
//
// Increment incrementa o contador de (namespace, key, janela atual) e devolve
// o novo valor em uma única operação atômica. A janela é derivada do relógio
// do store: unix / windowSeconds. O contador precisa expirar em no máximo
// windowSeconds depois do primeiro incremento da janela.
//
// Falhas de conectividade/timeout devem ser devolvidas como *StoreError.
type CounterStore interface {
	Increment(ctx context.Context, namespace, key string, windowSeconds int) (int64, error)
}
