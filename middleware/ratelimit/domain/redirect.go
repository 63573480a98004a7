package domain

import "strconv"

// DefaultMaxRedirects é o limite usado quando o parâmetro de redirects não veio.
const DefaultMaxRedirects = 10

// RedirectPolicy diz ao Forwarder quantos redirects seguir.
//
// O zero value equivale a FollowNone.
type RedirectPolicy struct {
	max int
}

func FollowUpTo(n int) RedirectPolicy {
	if n < 1 {
		return FollowNone()
	}
	return RedirectPolicy{max: n}
}

func FollowNone() RedirectPolicy { return RedirectPolicy{} }

func DefaultRedirectPolicy() RedirectPolicy { return FollowUpTo(DefaultMaxRedirects) }

// Follows indica se algum redirect deve ser seguido.
func (p RedirectPolicy) Follows() bool { return p.max > 0 }

// Max é o número máximo de redirects (0 para FollowNone).
func (p RedirectPolicy) Max() int { return p.max }

func (p RedirectPolicy) String() string {
	if !p.Follows() {
		return "none"
	}
	return "up-to-" + strconv.Itoa(p.max)
}
