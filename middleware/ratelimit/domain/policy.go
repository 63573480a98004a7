package domain

import "fmt"

// DefaultNamespace é o prefixo usado nas chaves do contador compartilhado.
const DefaultNamespace = "hapi-rate-limit-proxy"

// Policy é a política de rate limit (imutável depois de construída).
//
// Uma janela de WindowSeconds segundos admite no máximo TokensPerWindow
// requisições para o mesmo host.
type Policy struct {
	namespace       string
	windowSeconds   int
	tokensPerWindow int
}

// NewPolicy valida e cria uma Policy. Namespace vazio usa DefaultNamespace.
func NewPolicy(namespace string, windowSeconds, tokensPerWindow int) (Policy, error) {
	if windowSeconds <= 0 {
		return Policy{}, fmt.Errorf("%w: window seconds must be > 0, got %d", ErrInvalidPolicyConfig, windowSeconds)
	}
	if tokensPerWindow <= 0 {
		return Policy{}, fmt.Errorf("%w: tokens per window must be > 0, got %d", ErrInvalidPolicyConfig, tokensPerWindow)
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return Policy{
		namespace:       namespace,
		windowSeconds:   windowSeconds,
		tokensPerWindow: tokensPerWindow,
	}, nil
}

func (p Policy) Namespace() string    { return p.namespace }
func (p Policy) WindowSeconds() int   { return p.windowSeconds }
func (p Policy) TokensPerWindow() int { return p.tokensPerWindow }

// Valid indica se a Policy foi criada por NewPolicy (o zero value não é válido).
func (p Policy) Valid() bool {
	return p.windowSeconds > 0 && p.tokensPerWindow > 0
}
