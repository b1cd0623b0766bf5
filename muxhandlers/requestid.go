package muxhandlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	defaultRequestIDHeader = "X-Request-ID"
	maxIncomingIDLength    = 128
)

type requestKey struct{}

// requestScope is stored in the request context by RequestIDMiddleware.
type requestScope struct {
	id     string
	logger *slog.Logger
}

func scopeFrom(ctx context.Context) (requestScope, bool) {
	s, ok := ctx.Value(requestKey{}).(requestScope)
	return s, ok
}

// RequestIDFromContext returns the request ID stored by RequestIDMiddleware,
// or an empty string.
func RequestIDFromContext(ctx context.Context) string {
	s, _ := scopeFrom(ctx)
	return s.id
}

// LoggerFromContext returns the request-scoped logger stored by
// RequestIDMiddleware. Its records carry request_id, method and path.
// Without one, fallback is returned.
func LoggerFromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if s, ok := scopeFrom(ctx); ok && s.logger != nil {
		return s.logger
	}
	return fallback
}

// RequestIDConfig configures the Request ID middleware.
type RequestIDConfig struct {
	// HeaderName is the header carrying the ID (default: "X-Request-ID").
	HeaderName string

	// NewID returns a fresh ID (default: NewRequestID).
	NewID func() string

	// TrustIncoming reuses a client-sent ID when it is printable ASCII of
	// at most 128 bytes.
	TrustIncoming bool

	// Logger is the base of the request-scoped logger (default:
	// slog.Default()).
	Logger *slog.Logger
}

// RequestIDMiddleware returns a middleware that tags every request routed
// by the root router with an ID. The ID is echoed in the response header
// and stored in the request context together with a logger bound to it.
func RequestIDMiddleware(cfg RequestIDConfig) mux.MiddlewareFunc {
	headerName := cfg.HeaderName
	if headerName == "" {
		headerName = defaultRequestIDHeader
	}

	newID := cfg.NewID
	if newID == nil {
		newID = NewRequestID
	}

	base := cfg.Logger
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if cfg.TrustIncoming {
				id = r.Header.Get(headerName)
				if !validIncomingID(id) {
					id = ""
				}
			}
			if id == "" {
				id = newID()
			}

			scope := requestScope{
				id:     id,
				logger: base.With("method", r.Method, "path", r.URL.Path),
			}
			if id != "" {
				w.Header().Set(headerName, id)
				scope.logger = scope.logger.With("request_id", id)
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestKey{}, scope)))
		})
	}
}

// NewRequestID returns a time-ordered UUID v7 string.
func NewRequestID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func validIncomingID(id string) bool {
	if id == "" || len(id) > maxIncomingIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
