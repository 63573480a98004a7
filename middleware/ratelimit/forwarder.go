package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ratelimit-proxy/middleware/ratelimit/domain"
)

// ForwardRequest é o que o handler entrega ao Forwarder depois de um Allow.
type ForwardRequest struct {
	Method    string
	Target    *url.URL
	Redirects domain.RedirectPolicy
	Header    http.Header
}

// Forwarder faz a requisição de saída. O chamador fecha resp.Body.
type Forwarder interface {
	Forward(ctx context.Context, req ForwardRequest) (*http.Response, error)
}

// UpstreamError é uma falha ao falar com o upstream, com a URL que falhou
// (pode ser a de um redirect, não a original).
type UpstreamError struct {
	URL string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Timeout indica se a falha foi por tempo esgotado.
func (e *UpstreamError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// ErrTooManyRedirects é devolvido (dentro de UpstreamError) quando o limite de redirects estoura.
var ErrTooManyRedirects = errors.New("maximum redirections reached")

// HTTPForwarder implementa Forwarder com net/http.
type HTTPForwarder struct {
	client      *http.Client
	passThrough bool
}

var _ Forwarder = (*HTTPForwarder)(nil)

type ForwarderOption func(*HTTPForwarder)

// WithForwardTimeout limita a requisição inteira, inclusive redirects e leitura do corpo.
func WithForwardTimeout(d time.Duration) ForwarderOption {
	return func(f *HTTPForwarder) { f.client.Timeout = d }
}

// WithPassThrough repassa headers da requisição e da resposta (menos hop-by-hop).
func WithPassThrough(on bool) ForwarderOption {
	return func(f *HTTPForwarder) { f.passThrough = on }
}

func WithTransport(rt http.RoundTripper) ForwarderOption {
	return func(f *HTTPForwarder) { f.client.Transport = rt }
}

func NewHTTPForwarder(opts ...ForwarderOption) *HTTPForwarder {
	f := &HTTPForwarder{
		client:      &http.Client{Timeout: 20 * time.Second},
		passThrough: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *HTTPForwarder) PassThrough() bool { return f.passThrough }

func (f *HTTPForwarder) Forward(ctx context.Context, fr ForwardRequest) (*http.Response, error) {
	if fr.Target == nil {
		return nil, errors.New("forward target is required")
	}
	method := fr.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, fr.Target.String(), nil)
	if err != nil {
		return nil, &UpstreamError{URL: fr.Target.String(), Err: err}
	}
	if f.passThrough {
		copyHeader(req.Header, fr.Header)
	}

	// cópia rasa: cada request tem sua própria política de redirects,
	// o Transport (pool de conexões) continua compartilhado.
	c := *f.client
	c.CheckRedirect = checkRedirect(fr.Redirects)

	resp, err := c.Do(req)
	if err != nil {
		return nil, &UpstreamError{URL: failingURL(err, fr.Target), Err: unwrapURLError(err)}
	}
	return resp, nil
}

func checkRedirect(p domain.RedirectPolicy) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if !p.Follows() {
			return http.ErrUseLastResponse
		}
		if len(via) > p.Max() {
			return fmt.Errorf("%w (%d)", ErrTooManyRedirects, p.Max())
		}
		return nil
	}
}

func failingURL(err error, target *url.URL) string {
	var ue *url.Error
	if errors.As(err, &ue) && ue.URL != "" {
		// em erro de redirect, ue.URL é o Location cru (pode ser relativo).
		if u, perr := target.Parse(ue.URL); perr == nil {
			return u.String()
		}
		return ue.URL
	}
	return target.String()
}

func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}
	return err
}

// hop-by-hop (RFC 7230, seção 6.1) não atravessam o proxy.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

func copyHeader(dst, src http.Header) {
	skip := make(map[string]struct{}, len(hopHeaders))
	for _, h := range hopHeaders {
		skip[h] = struct{}{}
	}
	for _, v := range src.Values("Connection") {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				skip[http.CanonicalHeaderKey(name)] = struct{}{}
			}
		}
	}

	for k, vv := range src {
		if _, ok := skip[http.CanonicalHeaderKey(k)]; ok {
			continue
		}
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}
