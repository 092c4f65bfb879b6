package auth

import (
	"net/http"
	"parkbook/internal/access"
	apperrors "parkbook/pkg/errors"
	httputil "parkbook/pkg/http"
	"parkbook/pkg/logger"
	"parkbook/pkg/middleware"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// Authenticate attaches the bearer token's identity to the request context.
// Requests without a token pass through anonymous; a bad token is rejected.
func Authenticate(tm *TokenManager, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				_ = httputil.WriteError(w, apperrors.Unauthorized("Authorization header must use the Bearer scheme"))
				return
			}

			id, err := tm.Parse(strings.TrimSpace(token))
			if err != nil {
				log.Warn("Rejected bearer token",
					"request_id", middleware.RequestID(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				_ = httputil.WriteError(w, apperrors.Unauthorized("Invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(access.WithIdentity(r.Context(), id)))
		})
	}
}

// Required rejects anonymous callers before the route handler runs.
func Required(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if _, ok := access.FromContext(r.Context()); !ok {
			_ = httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
			return
		}
		next(w, r, ps)
	}
}
