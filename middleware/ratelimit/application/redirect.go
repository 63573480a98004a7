package application

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ratelimit-proxy/middleware/ratelimit/domain"
)

// ParseRedirects normaliza o parâmetro de redirects (vindo de query string,
// JSON ou configuração) em uma RedirectPolicy.
//
//   - ausente (nil)                 -> FollowUpTo(10)
//   - "false", "off" (qualquer caixa) -> FollowNone
//   - false / true                  -> FollowNone / FollowUpTo(10)
//   - inteiro >= 1                  -> FollowUpTo(n)
//
// Qualquer outra coisa, incluindo 0, é domain.ErrInvalidRedirectParameter.
// 0 é ambíguo entre "não seguir" e "inválido", por isso é rejeitado.
func ParseRedirects(raw any) (domain.RedirectPolicy, error) {
	switch v := raw.(type) {
	case nil:
		return domain.DefaultRedirectPolicy(), nil
	case *string:
		if v == nil {
			return domain.DefaultRedirectPolicy(), nil
		}
		return parseRedirectString(*v)
	case string:
		return parseRedirectString(v)
	case bool:
		return redirectsFromBool(v), nil
	case int:
		return redirectsFromInt(int64(v))
	case int32:
		return redirectsFromInt(int64(v))
	case int64:
		return redirectsFromInt(v)
	case uint:
		return redirectsFromUint(uint64(v))
	case uint64:
		return redirectsFromUint(v)
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return domain.RedirectPolicy{}, invalidRedirects(strconv.FormatFloat(v, 'f', -1, 64))
		}
		if v > math.MaxInt32 {
			v = math.MaxInt32
		}
		return redirectsFromInt(int64(v))
	default:
		return domain.RedirectPolicy{}, fmt.Errorf("%w: unsupported type %T", domain.ErrInvalidRedirectParameter, raw)
	}
}

func parseRedirectString(s string) (domain.RedirectPolicy, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "false", "off":
		return domain.FollowNone(), nil
	case "true":
		return domain.DefaultRedirectPolicy(), nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return domain.RedirectPolicy{}, invalidRedirects(s)
	}
	return redirectsFromInt(n)
}

func redirectsFromBool(b bool) domain.RedirectPolicy {
	if b {
		return domain.DefaultRedirectPolicy()
	}
	return domain.FollowNone()
}

func redirectsFromInt(n int64) (domain.RedirectPolicy, error) {
	if n == 0 {
		return domain.RedirectPolicy{}, fmt.Errorf("%w: 0 is not allowed, use false or off to disable redirects", domain.ErrInvalidRedirectParameter)
	}
	if n < 1 {
		return domain.RedirectPolicy{}, invalidRedirects(strconv.FormatInt(n, 10))
	}
	if n > math.MaxInt32 {
		n = math.MaxInt32
	}
	return domain.FollowUpTo(int(n)), nil
}

func redirectsFromUint(n uint64) (domain.RedirectPolicy, error) {
	if n > math.MaxInt32 {
		n = math.MaxInt32
	}
	return redirectsFromInt(int64(n))
}

func invalidRedirects(v string) error {
	return fmt.Errorf("%w: %q must be a positive integer, true, false or off", domain.ErrInvalidRedirectParameter, v)
}
