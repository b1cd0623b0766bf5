// Package muxhandlers provides middleware for the root router served by
// autoroute.
//
// # Request ID Middleware
//
// RequestIDMiddleware tags each request with an X-Request-ID and stores the
// ID and a request-scoped slog.Logger in the request context. Mounted route
// modules log through it:
//
//	ar.Use(muxhandlers.RequestIDMiddleware(muxhandlers.RequestIDConfig{
//	    Logger: logger,
//	}))
//
//	muxhandlers.LoggerFromContext(r.Context(), logger).Info("created item")
//
// # Recovery Middleware
//
// RecoveryMiddleware turns panics in route handlers into 500 responses and
// logs them through the request-scoped logger, falling back to Logger:
//
//	ar.Use(muxhandlers.RecoveryMiddleware(muxhandlers.RecoveryConfig{
//	    Logger: slog.Default(),
//	}))
package muxhandlers
