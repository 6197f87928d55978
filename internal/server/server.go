// Package server provides HTTP server wiring and lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vaadly/vaadly/internal/api"
	"github.com/vaadly/vaadly/internal/cache"
	"github.com/vaadly/vaadly/internal/config"
	"github.com/vaadly/vaadly/internal/identity"
	"github.com/vaadly/vaadly/internal/offline"
	"github.com/vaadly/vaadly/internal/push"
	"github.com/vaadly/vaadly/internal/store"
)

var (
	ErrMissingDep     = errors.New("missing required dependency")
	ErrInvalidTLSMode = errors.New("invalid tls mode")
)

// DataStore is the full persistence surface the server needs.
type DataStore interface {
	store.EventStore
	store.TaskStore
	store.IssueStore
	store.ProtocolStore
	store.ExpenseStore
	store.VendorStore
	store.CommitteeStore
	store.ContactStore
	store.PushStore
	store.QuoteStore
}

// Deps holds all server dependencies.
type Deps struct {
	// Required: identity and auth
	PartyRepo   identity.PartyRepo
	SessionRepo identity.SessionRepo
	UserAuth    *identity.UserAuth

	// Required: persistence and cache
	Store DataStore
	Cache cache.Cache

	// Required: offline queue/cache store
	Offline *offline.Store

	// Optional: push dispatcher (a default one is built when nil)
	Dispatcher *push.Dispatcher

	// Optional: replayer for queued mutations (nil if no replay base URL)
	Replayer *offline.Replayer
}

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg            *config.Config
	httpServer     *http.Server
	logger         *slog.Logger
	deps           *Deps
	trustedProxies *TrustedProxies

	authHandler       *api.AuthHandler
	eventsHandler     *api.EventsHandler
	tasksHandler      *api.TasksHandler
	issuesHandler     *api.IssuesHandler
	protocolsHandler  *api.ProtocolsHandler
	expensesHandler   *api.ExpensesHandler
	vendorsHandler    *api.VendorsHandler
	committeesHandler *api.CommitteesHandler
	contactsHandler   *api.ContactsHandler
	quotesHandler     *api.QuotesHandler
	pushHandler       *api.PushHandler
	syncHandler       *api.SyncHandler
}

// New creates a new Server with the given configuration.
// Returns an error if required dependencies are missing.
func New(cfg *config.Config, logger *slog.Logger, deps *Deps) (*Server, error) {
	if err := validateDeps(deps); err != nil {
		return nil, err
	}

	sessionTTL := time.Duration(cfg.Server.SessionTTLHours) * time.Hour

	if deps.Dispatcher == nil {
		timeout := time.Duration(cfg.Push.TimeoutMS) * time.Millisecond
		deps.Dispatcher = push.NewDispatcher(deps.Store, timeout, logger)
	}

	s := &Server{
		cfg:            cfg,
		logger:         logger,
		deps:           deps,
		trustedProxies: NewTrustedProxies(cfg.Server.TrustedProxies),

		authHandler:       api.NewAuthHandler(deps.PartyRepo, deps.SessionRepo, deps.UserAuth, sessionTTL),
		eventsHandler:     api.NewEventsHandler(deps.Store, logger),
		tasksHandler:      api.NewTasksHandler(deps.Store, logger),
		issuesHandler:     api.NewIssuesHandler(deps.Store, logger),
		protocolsHandler:  api.NewProtocolsHandler(deps.Store, logger),
		expensesHandler:   api.NewExpensesHandler(deps.Store, logger),
		vendorsHandler:    api.NewVendorsHandler(deps.Store, logger),
		committeesHandler: api.NewCommitteesHandler(deps.Store, logger),
		contactsHandler:   api.NewContactsHandler(deps.Store, logger),
		quotesHandler:     api.NewQuotesHandler(deps.Store, logger),
		pushHandler:       api.NewPushHandler(deps.Store, deps.Dispatcher, cfg.Push.Enabled, logger),
		syncHandler:       api.NewSyncHandler(deps.Offline, deps.Replayer, logger),
	}

	router := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the configured router, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server. It blocks until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		"addr", s.cfg.ListenAddr,
		"external_origin", s.cfg.ExternalOrigin,
		"tls_mode", s.cfg.TLS.Mode,
	)

	switch s.cfg.TLS.Mode {
	case "off":
		return s.httpServer.ListenAndServe()

	case "static":
		return s.httpServer.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)

	default:
		return fmt.Errorf("%w: %s", ErrInvalidTLSMode, s.cfg.TLS.Mode)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}

// validateDeps checks that all required dependencies are provided.
func validateDeps(deps *Deps) error {
	if deps == nil {
		return errors.New("deps is nil")
	}
	if deps.PartyRepo == nil {
		return fmt.Errorf("%w: PartyRepo", ErrMissingDep)
	}
	if deps.SessionRepo == nil {
		return fmt.Errorf("%w: SessionRepo", ErrMissingDep)
	}
	if deps.UserAuth == nil {
		return fmt.Errorf("%w: UserAuth", ErrMissingDep)
	}
	if deps.Store == nil {
		return fmt.Errorf("%w: Store", ErrMissingDep)
	}
	if deps.Cache == nil {
		return fmt.Errorf("%w: Cache", ErrMissingDep)
	}
	if deps.Offline == nil {
		return fmt.Errorf("%w: Offline", ErrMissingDep)
	}

	// Dispatcher and Replayer are allowed to be nil
	return nil
}
