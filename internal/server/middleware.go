package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/vaadly/vaadly/internal/api"
	"github.com/vaadly/vaadly/internal/appctx"
)

// loggingMiddleware logs request information using slog and attaches a
// request-scoped logger to the context.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		reqLogger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		r = r.WithContext(appctx.WithLogger(r.Context(), reqLogger))

		defer func() {
			reqLogger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"client_ip", s.trustedProxies.GetClientIPString(r),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// authMiddleware enforces session authentication.
// Public endpoints (health, login) bypass auth via the route table.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAuthRequired(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token := api.ExtractToken(r)
		if token == "" {
			api.WriteUnauthorized(w, "authentication required")
			return
		}

		session, err := s.deps.SessionRepo.Get(r.Context(), token)
		if err != nil {
			api.WriteUnauthorized(w, "session not found or expired")
			return
		}

		// The session snapshots username and role at login, so the role
		// gates below need no user lookup here.
		ctx := appctx.WithSession(r.Context(), session)
		ctx = appctx.WithUser(ctx, session.User())

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireEditor gates write endpoints to editor and admin roles.
func (s *Server) requireEditor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := appctx.UserFrom(r.Context())
		if user == nil {
			api.WriteUnauthorized(w, "authentication required")
			return
		}
		if !user.CanEdit() {
			api.WriteForbidden(w, "editor role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin gates admin-only endpoints.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := appctx.UserFrom(r.Context())
		if user == nil {
			api.WriteUnauthorized(w, "authentication required")
			return
		}
		if !user.IsAdmin() {
			api.WriteForbidden(w, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimitConfig holds configuration for a rate-limited endpoint.
type RateLimitConfig struct {
	RequestsPerMinute int64
	Burst             int64
}

// rateLimitMiddleware applies per-client-IP rate limiting to specific
// paths, counting in the shared cache so limits hold across restarts when
// the cache driver is external.
func (s *Server) rateLimitMiddleware(config map[string]RateLimitConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cfg, ok := config[r.URL.Path]
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := s.trustedProxies.GetClientIPString(r)
			key := "ratelimit:" + r.URL.Path + ":" + clientIP

			count, err := s.deps.Cache.Incr(r.Context(), key, 1, time.Minute)
			if err != nil {
				// A broken cache must not take the endpoint down.
				s.logger.Warn("rate limit counter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if count > cfg.RequestsPerMinute+cfg.Burst {
				s.logger.Warn("rate limit exceeded",
					"path", r.URL.Path,
					"client_ip", clientIP,
				)
				w.Header().Set("Retry-After", "60")
				api.WriteTooManyRequests(w, "too many requests, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
