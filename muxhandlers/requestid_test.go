package muxhandlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vitalvas/autoroute/router"
)

var uuidV7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func fixedID(id string) func() string {
	return func() string { return id }
}

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		config        RequestIDConfig
		headerName    string
		incoming      string
		wantHeader    string
		wantGenerated bool
	}{
		{
			name:          "generates UUID v7 by default",
			wantGenerated: true,
		},
		{
			name:          "ignores incoming by default",
			incoming:      "client-id",
			wantGenerated: true,
		},
		{
			name:       "trusts valid incoming when configured",
			config:     RequestIDConfig{TrustIncoming: true},
			incoming:   "client-id",
			wantHeader: "client-id",
		},
		{
			name:          "replaces incoming with spaces",
			config:        RequestIDConfig{TrustIncoming: true},
			incoming:      "client id",
			wantGenerated: true,
		},
		{
			name:          "replaces oversized incoming",
			config:        RequestIDConfig{TrustIncoming: true},
			incoming:      strings.Repeat("a", maxIncomingIDLength+1),
			wantGenerated: true,
		},
		{
			name:       "custom header and generator",
			config:     RequestIDConfig{HeaderName: "X-Trace-ID", NewID: fixedID("trace-123")},
			headerName: "X-Trace-ID",
			wantHeader: "trace-123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headerName := tt.headerName
			if headerName == "" {
				headerName = defaultRequestIDHeader
			}

			var ctxID string
			r := router.New()
			r.Use(RequestIDMiddleware(tt.config))
			r.Get("/test", router.HandleFunc(func(_ http.ResponseWriter, req *http.Request) {
				ctxID = RequestIDFromContext(req.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.incoming != "" {
				req.Header.Set(headerName, tt.incoming)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(headerName)
			if tt.wantGenerated {
				assert.Regexp(t, uuidV7Regex, got)
			} else {
				assert.Equal(t, tt.wantHeader, got)
			}
			assert.Equal(t, got, ctxID)
		})
	}
}

func TestRequestScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	users := router.New()
	users.Get("/:id", router.HandleFunc(func(_ http.ResponseWriter, req *http.Request) {
		LoggerFromContext(req.Context(), nil).Info("loaded user")
	}))

	root := router.New()
	root.Use(RequestIDMiddleware(RequestIDConfig{NewID: fixedID("req-7"), Logger: base}))
	root.Mount("/users", users)

	root.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/3", nil))

	out := buf.String()
	assert.Contains(t, out, "loaded user")
	assert.Contains(t, out, "request_id=req-7")
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "path=/users/3")
}

func TestLoggerFromContextFallback(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Same(t, fallback, LoggerFromContext(req.Context(), fallback))
	assert.Nil(t, LoggerFromContext(req.Context(), nil))
	assert.Empty(t, RequestIDFromContext(req.Context()))
}

func TestRequestIDEmptyGenerator(t *testing.T) {
	var buf bytes.Buffer
	var ctxID string

	r := router.New()
	r.Use(RequestIDMiddleware(RequestIDConfig{NewID: fixedID(""), Logger: slog.New(slog.NewTextHandler(&buf, nil))}))
	r.Get("/test", router.HandleFunc(func(_ http.ResponseWriter, req *http.Request) {
		ctxID = RequestIDFromContext(req.Context())
		LoggerFromContext(req.Context(), nil).Info("hit")
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Empty(t, w.Header().Get(defaultRequestIDHeader))
	assert.Empty(t, ctxID)
	assert.NotContains(t, buf.String(), "request_id")
}

func TestNewRequestID(t *testing.T) {
	assert.Regexp(t, uuidV7Regex, NewRequestID())
	assert.NotEqual(t, NewRequestID(), NewRequestID())
}
