package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIPRateLimiterAllow(t *testing.T) {
	l := NewIPRateLimiter(2, 0)
	if !l.Allow("k") || !l.Allow("k") {
		t.Fatalf("first two requests should pass")
	}
	if l.Allow("k") {
		t.Fatalf("third request should be blocked")
	}
}

func TestIPRateLimiterWindowReset(t *testing.T) {
	l := NewIPRateLimiter(1, 10*time.Millisecond)
	if !l.Allow("k") {
		t.Fatalf("first request should pass")
	}
	if l.Allow("k") {
		t.Fatalf("second request within window should be blocked")
	}
	time.Sleep(15 * time.Millisecond)
	if !l.Allow("k") {
		t.Fatalf("request after window reset should pass")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	l := NewIPRateLimiter(1, time.Minute)
	mw := RateLimitMiddleware(l)
	next := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/forms", nil)
	w := httptest.NewRecorder()
	next.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	next.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", w.Code)
	}
}
