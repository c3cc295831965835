package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/internal/transport"
)

// RecoveryMiddleware turns a panic into a 500 page (or JSON body) and logs the stack.
func RecoveryMiddleware(logger *slog.Logger, h *transport.BaseHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("panic recovered",
						"error", rec,
						"method", r.Method,
						"url", r.URL.String(),
						"stack", string(debug.Stack()))

					h.RenderError(w, r, internal.NewInternalError("panic recovered", nil))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
