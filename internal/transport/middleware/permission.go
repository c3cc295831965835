package middleware

import (
	"net/http"

	"github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/internal/transport"
	"github.com/frahmantamala/salary-simulator/pkg/logger"
)

// RequireAdmin lets only users listed in security.admin_emails through.
func RequireAdmin(h *transport.BaseHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := internal.SessionUserFromContext(r.Context())
			if u == nil {
				h.RenderError(w, r, internal.ErrAuthenticationRequired)
				return
			}

			if !u.IsAdmin {
				logger.From(r.Context()).Warn("access denied: settings require an admin", "user_id", u.ID)
				h.RenderError(w, r, internal.ErrSettingsForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
