package server

import (
	"context"
	"net/http"

	"github.com/me/pricedesk/internal/ui"
	"github.com/me/pricedesk/pkg/model"
)

const ctxKeySession ctxKey = "session"

// SessionFromContext extracts the browser session from request context.
func SessionFromContext(ctx context.Context) *model.Session {
	if sess, ok := ctx.Value(ctxKeySession).(*model.Session); ok {
		return sess
	}
	return nil
}

// apiAuthMiddleware admits JSON requests carrying a live browser session
// cookie. Unlike the UI it answers 401 instead of redirecting.
func apiAuthMiddleware(sessions *ui.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := RequestIDFromContext(r.Context())

			sess, err := sessions.GetSessionFromRequest(r)
			if err != nil {
				respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
					Code:    model.ErrInternal,
					Message: "session lookup failed",
				})
				return
			}
			if sess == nil || !sess.HasToken() {
				respondError(w, reqID, http.StatusUnauthorized, &model.APIError{
					Code:    model.ErrUnauthorized,
					Message: "authentication required",
				})
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeySession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
