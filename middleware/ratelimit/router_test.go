package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouter_Healthz(t *testing.T) {
	healthy := NewRouter(RouterOptions{Proxy: http.NotFoundHandler()})
	w := httptest.NewRecorder()
	healthy.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://gateway/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	unhealthy := NewRouter(RouterOptions{
		Proxy:  http.NotFoundHandler(),
		Health: func(context.Context) error { return errors.New("redis down") },
	})
	w = httptest.NewRecorder()
	unhealthy.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://gateway/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis down")
}

func TestRouter_MetricsOnlyWhenConfigured(t *testing.T) {
	without := NewRouter(RouterOptions{Proxy: http.NotFoundHandler()})
	w := httptest.NewRecorder()
	without.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://gateway/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	with := NewRouter(RouterOptions{Proxy: http.NotFoundHandler(), Metrics: metrics})
	w = httptest.NewRecorder()
	with.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://gateway/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "# metrics", w.Body.String())
}

func TestRouter_ProxyIsGetOnly(t *testing.T) {
	r := NewRouter(RouterOptions{Proxy: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "http://gateway/proxy", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://gateway/proxy", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestRequestID_ReusesIncomingHeader(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "http://gateway/proxy", nil)
	r.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
