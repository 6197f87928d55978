// Package main is the entrypoint for the vaadly server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vaadly/vaadly/internal/cache"
	"github.com/vaadly/vaadly/internal/config"
	"github.com/vaadly/vaadly/internal/identity"
	"github.com/vaadly/vaadly/internal/offline"
	"github.com/vaadly/vaadly/internal/server"
	"github.com/vaadly/vaadly/internal/store"

	// Register cache and store drivers
	_ "github.com/vaadly/vaadly/internal/cache/loader"
	_ "github.com/vaadly/vaadly/internal/store/loader"
)

func main() {
	configPath := flag.String("config", "", "Path to TOML config file (optional)")
	modeFlag := flag.String("mode", "", "Operating mode: dev or prod (overrides config)")
	listenAddr := flag.String("listen", "", "Listen address (overrides config)")
	externalOrigin := flag.String("external-origin", "", "External origin (overrides config)")
	storeDriver := flag.String("store-driver", "", "Store driver: sqlite (overrides config)")
	dataDir := flag.String("data-dir", "", "Data directory (overrides config)")
	cacheDriver := flag.String("cache-driver", "", "Cache driver: memory or valkey (overrides config)")
	offlinePath := flag.String("offline-path", "", "Offline store path (overrides config)")
	tlsMode := flag.String("tls-mode", "", "TLS mode: off or static (overrides config)")
	adminUsername := flag.String("admin-username", "", "Bootstrap admin username (overrides config)")
	adminPassword := flag.String("admin-password", "", "Bootstrap admin password (overrides config)")
	loggingLevel := flag.String("logging-level", "", "Log level: debug, info, warn, error (overrides config)")
	flag.Parse()

	// Bootstrap logger for config loading errors (uses default level)
	bootstrapLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Load config with precedence: mode preset -> TOML file -> CLI flags
	cfg, err := config.Load(config.LoaderOptions{
		ConfigPath: *configPath,
		ModeFlag:   *modeFlag,
		FlagOverrides: config.FlagOverrides{
			ListenAddr:     listenAddr,
			ExternalOrigin: externalOrigin,
			StoreDriver:    storeDriver,
			DataDir:        dataDir,
			CacheDriver:    cacheDriver,
			OfflinePath:    offlinePath,
			TLSMode:        tlsMode,
			AdminUsername:  adminUsername,
			AdminPassword:  adminPassword,
			LoggingLevel:   loggingLevel,
		},
		Logger: bootstrapLogger,
	})
	if err != nil {
		bootstrapLogger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Log effective config with secrets redacted
	logger.Info("effective configuration", "config", cfg.Redacted())

	// Persistence driver
	driver, err := store.New(&store.DriverConfig{
		Driver:  cfg.Store.Driver,
		DataDir: cfg.Store.DataDir,
	})
	if err != nil {
		logger.Error("failed to create store driver", "error", err)
		os.Exit(1)
	}
	if err := driver.Init(context.Background()); err != nil {
		logger.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer driver.Close()

	dataStore, ok := driver.(server.DataStore)
	if !ok {
		logger.Error("store driver does not implement the data store surface", "driver", driver.Name())
		os.Exit(1)
	}

	// Cache (defaults to in-memory if not configured)
	// Passes driver-specific config from [cache.drivers.<driver>] section
	cacheName := cfg.Cache.Driver
	if cacheName == "" {
		cacheName = "memory"
	}
	cacheInstance, err := cache.NewFromConfig(cacheName, cfg.Cache.Drivers)
	if err != nil {
		logger.Error("failed to create cache", "error", err)
		os.Exit(1)
	}
	defer cacheInstance.Close()

	// Offline queue/cache store
	offlineStore, err := offline.Open(context.Background(), cfg.Offline.Path, logger)
	if err != nil {
		logger.Error("failed to open offline store", "error", err)
		os.Exit(1)
	}
	defer offlineStore.Close()

	var replayer *offline.Replayer
	if cfg.Offline.ReplayBaseURL != "" {
		replayer = offline.NewReplayer(offlineStore, cfg.Offline.ReplayBaseURL, cfg.Offline.ReplayMaxRetries, logger)
	}

	// Identity components
	partyRepo := identity.NewMemoryPartyRepo()
	sessionRepo := identity.NewMemorySessionRepo()
	userAuth := identity.NewUserAuth(12) // bcrypt cost

	// Bootstrap admin user
	bootstrap := identity.NewBootstrap(partyRepo, userAuth, logger)
	bootstrapUsername := cfg.Server.BootstrapAdmin.Username
	if bootstrapUsername == "" {
		bootstrapUsername = "admin"
	}
	explicitPasswordSet := cfg.Server.BootstrapAdmin.Password != ""
	if err := bootstrap.EnsureAdmin(
		context.Background(),
		bootstrapUsername,
		cfg.Server.BootstrapAdmin.Password,
		explicitPasswordSet,
	); err != nil {
		logger.Error("failed to bootstrap admin", "error", err)
		os.Exit(1)
	}

	deps := &server.Deps{
		PartyRepo:   partyRepo,
		SessionRepo: sessionRepo,
		UserAuth:    userAuth,
		Store:       dataStore,
		Cache:       cacheInstance,
		Offline:     offlineStore,
		Replayer:    replayer,
	}

	srv, err := server.New(cfg, logger, deps)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Periodic maintenance: expired cache sweep and session cleanup
	go maintenanceLoop(ctx, cfg, offlineStore, sessionRepo, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("server started, press Ctrl+C to stop")

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// maintenanceLoop periodically sweeps expired offline cache entries and
// removes expired sessions until ctx is cancelled.
func maintenanceLoop(ctx context.Context, cfg *config.Config, offlineStore *offline.Store, sessions identity.SessionRepo, logger *slog.Logger) {
	interval := time.Duration(cfg.Offline.SweepIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed, err := offlineStore.SweepExpiredCache(ctx); err != nil {
				logger.Warn("cache sweep failed", "error", err)
			} else if removed > 0 {
				logger.Debug("swept expired cache entries", "removed", removed)
			}

			if removed, err := sessions.DeleteExpired(ctx); err != nil {
				logger.Warn("session cleanup failed", "error", err)
			} else if removed > 0 {
				logger.Debug("removed expired sessions", "removed", removed)
			}
		}
	}
}
