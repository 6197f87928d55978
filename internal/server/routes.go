package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vaadly/vaadly/internal/api"
)

// RouteGroup defines an endpoint group with its auth requirements.
type RouteGroup struct {
	Name         string
	PathPrefix   string
	RequiresAuth bool
}

// routeGroups defines all endpoint groups and their auth requirements.
// This table is the single source of truth for routing decisions.
var routeGroups = []RouteGroup{
	{Name: "api", PathPrefix: "/api", RequiresAuth: true},
}

// GetRouteGroups returns the route group definitions for testing.
func GetRouteGroups() []RouteGroup {
	return routeGroups
}

// publicExceptions are specific paths that don't require auth within
// otherwise protected groups.
var publicExceptions = []string{
	"/api/healthz",
	"/api/auth/login",
}

// IsAuthRequired checks if a given path requires authentication.
// This is used by the auth middleware to make gating decisions.
func IsAuthRequired(path string) bool {
	for _, exc := range publicExceptions {
		if pathMatchesPrefix(path, exc) {
			return false
		}
	}

	for _, rg := range routeGroups {
		if pathMatchesPrefix(path, rg.PathPrefix) {
			return rg.RequiresAuth
		}
	}

	// Default: require auth for unknown paths
	return true
}

// pathMatchesPrefix checks if path equals or is a subpath of prefix.
func pathMatchesPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	if len(path) > len(prefix) && path[:len(prefix)] == prefix {
		if path[len(prefix)] == '/' {
			return true
		}
	}
	return false
}

// setupRoutes creates the chi router with all route groups mounted.
func (s *Server) setupRoutes() chi.Router {
	r := chi.NewRouter()

	// Global middleware stack (order matters for correct logging).
	// RequestID must come first so GetReqID works in loggingMiddleware.
	r.Use(middleware.RequestID)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	// Rate limiting for high-risk endpoints
	r.Use(s.rateLimitMiddleware(map[string]RateLimitConfig{
		"/api/auth/login":    {RequestsPerMinute: 5, Burst: 2},
		"/api/push/dispatch": {RequestsPerMinute: 10, Burst: 2},
	}))

	// Auth middleware for all routes (checks IsAuthRequired)
	r.Use(s.authMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", api.HealthHandler)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.authHandler.Login)
			r.Post("/logout", s.authHandler.Logout)
			r.Get("/me", s.authHandler.GetCurrentUser)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.eventsHandler.List)
			r.Get("/{id}", s.eventsHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(s.requireEditor)
				r.Post("/", s.eventsHandler.Create)
				r.Put("/{id}", s.eventsHandler.Update)
				r.Delete("/{id}", s.eventsHandler.Delete)
			})

			// Prom quotes live under their planning event.
			r.Route("/{eventID}/quotes", func(r chi.Router) {
				r.Get("/", s.quotesHandler.List)
				r.Get("/{id}", s.quotesHandler.Get)
				r.Group(func(r chi.Router) {
					r.Use(s.requireEditor)
					r.Post("/", s.quotesHandler.Create)
					r.Put("/{id}", s.quotesHandler.Update)
					r.Delete("/{id}", s.quotesHandler.Delete)
				})
			})
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.tasksHandler.List)
			r.Get("/{id}", s.tasksHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(s.requireEditor)
				r.Post("/", s.tasksHandler.Create)
				r.Put("/{id}", s.tasksHandler.Update)
				r.Delete("/{id}", s.tasksHandler.Delete)
			})
		})

		r.Route("/issues", func(r chi.Router) {
			r.Get("/", s.issuesHandler.List)
			r.Get("/{id}", s.issuesHandler.Get)
			// Any member can report an issue; editing and deleting is gated.
			r.Post("/", s.issuesHandler.Create)
			r.Group(func(r chi.Router) {
				r.Use(s.requireEditor)
				r.Put("/{id}", s.issuesHandler.Update)
				r.Delete("/{id}", s.issuesHandler.Delete)
			})
		})

		r.Route("/protocols", func(r chi.Router) {
			r.Get("/", s.protocolsHandler.List)
			r.Get("/{id}", s.protocolsHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(s.requireEditor)
				r.Post("/", s.protocolsHandler.Create)
				r.Put("/{id}", s.protocolsHandler.Update)
				r.Delete("/{id}", s.protocolsHandler.Delete)
			})
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", s.expensesHandler.List)
			r.Get("/summary", s.expensesHandler.Summary)
			r.Get("/{id}", s.expensesHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(s.requireEditor)
				r.Post("/", s.expensesHandler.Create)
				r.Put("/{id}", s.expensesHandler.Update)
				r.Delete("/{id}", s.expensesHandler.Delete)
			})
		})

		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", s.vendorsHandler.List)
			r.Get("/{id}", s.vendorsHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(s.requireEditor)
				r.Post("/", s.vendorsHandler.Create)
				r.Put("/{id}", s.vendorsHandler.Update)
				r.Delete("/{id}", s.vendorsHandler.Delete)
			})
		})

		r.Route("/committees", func(r chi.Router) {
			r.Get("/", s.committeesHandler.List)
			r.Get("/{id}", s.committeesHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(s.requireEditor)
				r.Post("/", s.committeesHandler.Create)
				r.Put("/{id}", s.committeesHandler.Update)
				r.Delete("/{id}", s.committeesHandler.Delete)
			})
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", s.contactsHandler.List)
			r.Get("/{id}", s.contactsHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(s.requireEditor)
				r.Post("/", s.contactsHandler.Create)
				r.Put("/{id}", s.contactsHandler.Update)
				r.Delete("/{id}", s.contactsHandler.Delete)
			})
		})

		r.Route("/push", func(r chi.Router) {
			// Any signed-in member may manage their own device.
			r.Post("/subscribe", s.pushHandler.Subscribe)
			r.Post("/unsubscribe", s.pushHandler.Unsubscribe)
			r.Group(func(r chi.Router) {
				r.Use(s.requireEditor)
				r.Post("/dispatch", s.pushHandler.Dispatch)
				r.Get("/history", s.pushHandler.History)
			})
		})

		r.Route("/sync", func(r chi.Router) {
			r.Post("/queue", s.syncHandler.Enqueue)
			r.Get("/queue", s.syncHandler.ListPending)
			r.Delete("/queue/{id}", s.syncHandler.Remove)
			r.Post("/replay", s.syncHandler.Replay)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Post("/clear", s.syncHandler.Clear)
			})
		})
	})

	return r
}
