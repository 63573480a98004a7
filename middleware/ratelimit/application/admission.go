package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ratelimit-proxy/middleware/ratelimit/domain"
)

// MaxDelaySeconds limita o atraso sugerido em 12 horas.
const MaxDelaySeconds = 43200

// Admission decide se uma nova requisição para um host pode seguir agora.
//
// Não guarda estado entre chamadas: toda decisão consulta o CounterStore, então
// a mesma instância pode ser usada por várias goroutines (e vários processos
// atrás do mesmo store continuam corretos).
type Admission struct {
	store   domain.CounterStore
	policy  domain.Policy
	timeout time.Duration
}

type AdmissionOption func(*Admission)

// WithStoreTimeout limita quanto tempo CheckAdmission espera pelo store.
// Se d <= 0, espera até o ctx do chamador encerrar.
func WithStoreTimeout(d time.Duration) AdmissionOption {
	return func(a *Admission) { a.timeout = d }
}

func NewAdmission(policy domain.Policy, store domain.CounterStore, opts ...AdmissionOption) (*Admission, error) {
	if !policy.Valid() {
		return nil, fmt.Errorf("%w: policy must be built with domain.NewPolicy", domain.ErrInvalidPolicyConfig)
	}
	if store == nil {
		return nil, errors.New("counter store is required")
	}
	a := &Admission{store: store, policy: policy}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Admission) Policy() domain.Policy { return a.policy }

// CheckAdmission incrementa o contador de (namespace, host, janela atual) e
// decide. Um incremento que chegou ao store não é desfeito, mesmo se o ctx
// for cancelado depois: o contador mede carga tentada.
//
// Falhas do store voltam como erro que casa com domain.ErrStoreUnavailable;
// cabe ao chamador escolher fail-open ou fail-closed.
func (a *Admission) CheckAdmission(ctx context.Context, host domain.Host) (domain.Decision, error) {
	if host == "" {
		return domain.Decision{}, domain.ErrEmptyHost
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	count, err := a.increment(ctx, string(host))
	if err != nil {
		return domain.Decision{}, err
	}

	tokens := a.policy.TokensPerWindow()
	if count <= int64(tokens) {
		return domain.Allow(count), nil
	}
	return domain.Deny(count, Backoff(count, tokens, a.policy.WindowSeconds())), nil
}

type incrementResult struct {
	count int64
	err   error
}

// increment não confia que o store respeite o ctx: se ele não responder antes
// do deadline, a chamada resolve como store indisponível.
func (a *Admission) increment(ctx context.Context, key string) (int64, error) {
	ns := a.policy.Namespace()

	done := make(chan incrementResult, 1)
	go func() {
		c, err := a.store.Increment(ctx, ns, key, a.policy.WindowSeconds())
		done <- incrementResult{count: c, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return 0, asStoreError(ns, key, res.err)
		}
		return res.count, nil
	case <-ctx.Done():
		return 0, &domain.StoreError{Namespace: ns, Key: key, Err: ctx.Err()}
	}
}

func asStoreError(ns, key string, err error) error {
	if domain.IsStoreUnavailable(err) {
		return err
	}
	return &domain.StoreError{Namespace: ns, Key: key, Err: err}
}

// Backoff converte o excedente (count - tokensPerWindow) em segundos de espera:
// cada token excedente representa uma janela inteira de fila.
// O resultado é limitado a MaxDelaySeconds; sem excedente, devolve 0.
func Backoff(count int64, tokensPerWindow, windowSeconds int) int {
	backedUp := count - int64(tokensPerWindow)
	if backedUp <= 0 || windowSeconds <= 0 {
		return 0
	}
	if backedUp > MaxDelaySeconds/int64(windowSeconds) {
		return MaxDelaySeconds
	}
	return int(min(backedUp*int64(windowSeconds), MaxDelaySeconds))
}
