package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionMintsIDWhenHeaderMissing(t *testing.T) {
	t.Parallel()

	var captured string
	handler := Session(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = SessionFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if captured == "" {
		t.Fatal("expected a minted session id on the context")
	}
	if got := rec.Header().Get(SessionHeader); got != captured {
		t.Fatalf("response header %q does not echo context id %q", got, captured)
	}
	if !sessionIDRe.MatchString(captured) {
		t.Fatalf("minted id %q does not satisfy the session charset", captured)
	}
}

func TestSessionKeepsValidHeader(t *testing.T) {
	t.Parallel()

	var captured string
	handler := Session(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = SessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "existing-session_01")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if captured != "existing-session_01" {
		t.Fatalf("existing session id replaced with %q", captured)
	}
}

func TestSessionRejectsMalformedHeader(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"short", "has space", "path/../escape", "x"} {
		var captured string
		handler := Session(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = SessionFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(SessionHeader, bad)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if captured == bad {
			t.Fatalf("malformed session id %q was accepted", bad)
		}
		if captured == "" {
			t.Fatal("expected a replacement session id")
		}
	}
}
