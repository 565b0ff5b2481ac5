package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/dvalenzuela/retrade-backend/pkg/logger"
)

// SessionHeader carries the anonymous cart session between frontend and API.
const SessionHeader = "X-Session-Id"

// Session ids are opaque tokens minted here; the charset also keeps them safe
// as redis key fragments and file names.
var sessionIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

type sessionCtxKey struct{}

// Session reads the session id header, minting a fresh id when the header is
// absent or malformed. The effective id is echoed back so the frontend can
// store it.
func Session(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(SessionHeader))
			if !sessionIDRe.MatchString(sessionID) {
				sessionID = NewSessionID()
			}

			w.Header().Set(SessionHeader, sessionID)

			ctx := context.WithValue(r.Context(), sessionCtxKey{}, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewSessionID mints an opaque session identifier.
func NewSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// SessionFromContext returns the session id placed by the Session middleware.
func SessionFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionCtxKey{}).(string); ok {
		return id
	}
	return ""
}
