package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"ratelimit-proxy/middleware/ratelimit/domain"
)

func TestCheckRedirect(t *testing.T) {
	via := func(n int) []*http.Request { return make([]*http.Request, n) }

	if err := checkRedirect(domain.FollowNone())(nil, via(1)); !errors.Is(err, http.ErrUseLastResponse) {
		t.Fatalf("expected ErrUseLastResponse for FollowNone, got %v", err)
	}
	if err := checkRedirect(domain.FollowUpTo(2))(nil, via(2)); err != nil {
		t.Fatalf("expected second redirect to be followed, got %v", err)
	}
	if err := checkRedirect(domain.FollowUpTo(2))(nil, via(3)); !errors.Is(err, ErrTooManyRedirects) {
		t.Fatalf("expected ErrTooManyRedirects, got %v", err)
	}
}

func TestCopyHeader_DropsHopByHop(t *testing.T) {
	src := http.Header{}
	src.Set("X-Custom", "1")
	src.Set("Connection", "keep-alive, X-Private")
	src.Set("X-Private", "secret")
	src.Set("Keep-Alive", "timeout=5")
	src.Set("Transfer-Encoding", "chunked")

	dst := http.Header{}
	copyHeader(dst, src)

	if dst.Get("X-Custom") != "1" {
		t.Fatalf("expected end-to-end header to be copied")
	}
	for _, h := range []string{"Connection", "X-Private", "Keep-Alive", "Transfer-Encoding"} {
		if dst.Get(h) != "" {
			t.Fatalf("expected %s to be dropped", h)
		}
	}
}

func TestHTTPForwarder_WithoutPassThroughDropsRequestHeaders(t *testing.T) {
	var seen string
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Custom")
	}))
	defer up.Close()

	target, _ := url.Parse(up.URL)
	f := NewHTTPForwarder(WithPassThrough(false))
	resp, err := f.Forward(context.Background(), ForwardRequest{
		Target:    target,
		Redirects: domain.DefaultRedirectPolicy(),
		Header:    http.Header{"X-Custom": {"1"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if seen != "" {
		t.Fatalf("expected header not to be forwarded, got %q", seen)
	}
}

func TestHTTPForwarder_TimeoutIsReported(t *testing.T) {
	block := make(chan struct{})
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer up.Close()
	defer close(block)

	target, _ := url.Parse(up.URL)
	f := NewHTTPForwarder(WithForwardTimeout(20 * time.Millisecond))
	_, err := f.Forward(context.Background(), ForwardRequest{Target: target})

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if !ue.Timeout() {
		t.Fatalf("expected timeout, got %v", ue.Err)
	}
	if ue.URL != up.URL {
		t.Fatalf("expected failing url %q, got %q", up.URL, ue.URL)
	}
}
