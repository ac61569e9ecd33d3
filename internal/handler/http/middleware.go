package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/EcommerceGo/clientstate/internal/session"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/httputil"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/middleware"
)

// SessionSource resolves a session id to its stores. *session.Registry
// satisfies it.
type SessionSource interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

type contextKey string

const sessionKey contextKey = "session"

// SessionFromHeader resolves the X-Session-ID header to a session and stores
// it in the request context. Requests without a usable id are rejected.
func SessionFromHeader(sessions SessionSource, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := sessions.Get(r.Context(), r.Header.Get(middleware.HeaderSessionID))
			if err != nil {
				httputil.WriteError(w, r, err, logger)
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionFromContext returns the session stored by SessionFromHeader.
func sessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey).(*session.Session)
	return s
}

// ContentTypeJSON rejects request bodies that are not JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
