package muxhandlers

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gorilla/mux"
)

// RecoveryConfig configures the Recovery middleware.
type RecoveryConfig struct {
	// Logger receives one error record per recovered panic when the request
	// has no scoped logger from RequestIDMiddleware. When both are missing,
	// nothing is logged.
	Logger *slog.Logger

	// Stack adds the goroutine stack to the log record.
	Stack bool
}

// RecoveryMiddleware returns a middleware that recovers from panics in
// mounted route handlers and responds with 500 Internal Server Error.
func RecoveryMiddleware(cfg RecoveryConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rv := recover()
				if rv == nil {
					return
				}
				if rv == http.ErrAbortHandler {
					panic(rv)
				}

				logger := LoggerFromContext(r.Context(), nil)
				if logger == nil && cfg.Logger != nil {
					logger = cfg.Logger.With("method", r.Method, "path", r.URL.Path)
				}
				if logger != nil {
					attrs := []any{"panic", rv}
					if cfg.Stack {
						attrs = append(attrs, "stack", string(debug.Stack()))
					}
					logger.Error("handler panic recovered", attrs...)
				}

				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
