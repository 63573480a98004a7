package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMux_RedirectPointsToProfile(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://upstream/redirect", nil)
	w := httptest.NewRecorder()
	newMux().ServeHTTP(w, r)

	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/profile" {
		t.Fatalf("expected Location=/profile, got %q", got)
	}
}

func TestMux_Profile(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://upstream/profile", nil)
	w := httptest.NewRecorder()
	newMux().ServeHTTP(w, r)

	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("expected 200 ok, got %d %q", w.Code, w.Body.String())
	}
}
