package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeLimiterStore struct {
	counts map[string]int64
}

func (f *fakeLimiterStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.counts == nil {
		f.counts = make(map[string]int64)
	}
	f.counts[key]++
	return f.counts[key], nil
}

func limitedHandler(store rateLimiterStore, sessionLimit, ipLimit int) http.Handler {
	policy := NewSubmitRateLimitPolicy("submit", time.Minute, sessionLimit, ipLimit)
	inner := Session(nil)(SubmitRateLimit(policy, store, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
	))
	return inner
}

func TestSubmitRateLimitPerSession(t *testing.T) {
	t.Parallel()
	handler := limitedHandler(&fakeLimiterStore{}, 2, 0)

	do := func(session string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(SessionHeader, session)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := do("session-aaaa1111"); code != http.StatusNoContent {
			t.Fatalf("request %d: expected pass, got %d", i, code)
		}
	}
	if code := do("session-aaaa1111"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", code)
	}

	// an unrelated session is not throttled
	if code := do("session-bbbb2222"); code != http.StatusNoContent {
		t.Fatalf("other session must pass, got %d", code)
	}
}

func TestSubmitRateLimitPerIP(t *testing.T) {
	t.Parallel()
	handler := limitedHandler(&fakeLimiterStore{}, 0, 1)

	do := func(session string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(SessionHeader, session)
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do("session-aaaa1111"); code != http.StatusNoContent {
		t.Fatalf("first request must pass, got %d", code)
	}
	// different session, same IP
	if code := do("session-bbbb2222"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for same IP, got %d", code)
	}
}

func TestSubmitRateLimitDisabledPolicy(t *testing.T) {
	t.Parallel()
	handler := limitedHandler(&fakeLimiterStore{}, 0, 0)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("disabled policy must pass everything, got %d", rec.Code)
		}
	}
}
