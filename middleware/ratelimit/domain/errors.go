package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPolicyConfig é fatal na construção (janela ou tokens <= 0).
	ErrInvalidPolicyConfig = errors.New("invalid rate limit policy config")

	// ErrStoreUnavailable é transitório: o contador compartilhado não respondeu.
	// Nunca é convertido em Allow nem em Deny pelo core.
	ErrStoreUnavailable = errors.New("counter store unavailable")

	// ErrInvalidRedirectParameter indica um valor de redirects rejeitado na borda.
	ErrInvalidRedirectParameter = errors.New("invalid redirect parameter")

	ErrEmptyHost = errors.New("host is required")
)

// StoreError encapsula a falha do backend do CounterStore.
//
// errors.Is(err, ErrStoreUnavailable) é verdadeiro para qualquer *StoreError.
type StoreError struct {
	Namespace string
	Key       string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("counter store increment %s:%s: %v", e.Namespace, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// IsStoreUnavailable é um atalho para errors.Is(err, ErrStoreUnavailable).
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
