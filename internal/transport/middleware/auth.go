package middleware

import (
	"net/http"

	"github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/pkg/logger"
)

// UserContext tags the request logger with the signed-in user, if any.
// It must run after the session middleware.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := internal.SessionUserFromContext(r.Context())
		if u == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "user_id", u.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
