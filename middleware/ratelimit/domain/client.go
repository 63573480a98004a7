package domain

import "time"

// ClientKey identifica quem está chamando o gateway (IP, API key, etc.).
type ClientKey string

// ClientLimiter protege o próprio gateway de um cliente que dispara demais,
// independente do host de destino.
//
// A implementação pode ser token-bucket, leaky-bucket, etc.
type ClientLimiter interface {
	Allow(key ClientKey) (allowed bool, retryAfter time.Duration)
}
