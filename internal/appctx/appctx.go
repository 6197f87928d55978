// Package appctx provides context-based utilities for cross-cutting
// concerns: the request logger and the authenticated session and user.
package appctx

import (
	"context"
	"log/slog"

	"github.com/vaadly/vaadly/internal/identity"
)

type (
	loggerKey  struct{}
	sessionKey struct{}
	userKey    struct{}
)

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// LoggerFromContext returns the logger from the context (if present).
func LoggerFromContext(ctx context.Context) (*slog.Logger, bool) {
	l, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	return l, ok && l != nil
}

// GetLogger returns the logger from the context, or slog.Default() if missing.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := LoggerFromContext(ctx); ok {
		return l
	}
	return slog.Default()
}

// WithSession attaches the authenticated session to the context.
func WithSession(ctx context.Context, s *identity.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the authenticated session, or nil.
func SessionFrom(ctx context.Context) *identity.Session {
	s, _ := ctx.Value(sessionKey{}).(*identity.Session)
	return s
}

// WithUser attaches the authenticated user to the context.
func WithUser(ctx context.Context, u *identity.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the authenticated user, or nil.
func UserFrom(ctx context.Context) *identity.User {
	u, _ := ctx.Value(userKey{}).(*identity.User)
	return u
}
