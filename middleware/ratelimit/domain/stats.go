package domain

import (
	"context"
	"time"
)

// Outcome é o resultado de uma admissão, do ponto de vista das estatísticas.
type Outcome string

const (
	OutcomeAllowed Outcome = "allowed"
	OutcomeDenied  Outcome = "denied"
	OutcomeFailed  Outcome = "failed"
)

// StatsEvent representa um evento de decisão de admissão.
//
// Observação: cuidado com cardinalidade (ex.: salvar Host sem controle pode
// explodir o número de séries/chaves em uma base como Redis/Prometheus).
type StatsEvent struct {
	Host    Host
	Outcome Outcome

	// DelaySeconds só faz sentido quando Outcome == OutcomeDenied.
	DelaySeconds int

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de admissão.
//
// Implementações podem armazenar em Redis, Prometheus, memória, etc.
// O handler trata erro como best-effort (não derruba request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
