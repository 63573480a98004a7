package domain

import "time"

// Host identifica o destino (authority da URL alvo, ex: "example.com:8080").
type Host string

// Decision é o resultado de uma verificação de admissão.
//
// Quando Allowed=false, DelaySeconds é o tempo sugerido antes de tentar de novo.
// O atraso é apenas informativo: ninguém bloqueia esperando por ele.
type Decision struct {
	Allowed      bool
	DelaySeconds int

	// Count é o valor do contador devolvido pelo store nesta chamada.
	Count int64
}

func Allow(count int64) Decision {
	return Decision{Allowed: true, Count: count}
}

func Deny(count int64, delaySeconds int) Decision {
	return Decision{Allowed: false, DelaySeconds: delaySeconds, Count: count}
}

// RetryAfter devolve o atraso como time.Duration (0 quando permitido).
func (d Decision) RetryAfter() time.Duration {
	if d.Allowed {
		return 0
	}
	return time.Duration(d.DelaySeconds) * time.Second
}
