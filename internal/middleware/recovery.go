package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"

	"starc/internal/httputil"
)

// Recovery turns a handler panic into a 500 problem response.
// The response carries a panic_id that matches the logged stack trace.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				panicID := uuid.NewString()
				logger.Error("panic recovered",
					"panic_id", panicID,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", httputil.GetUserID(r),
					"error", rec,
					"stack", string(debug.Stack()),
				)

				httputil.RespondErrorWithExtras(w, http.StatusInternalServerError, "internal server error",
					map[string]any{"panic_id": panicID})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
