package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Mode represents the server operating mode.
type Mode string

const (
	ModeDev  Mode = "dev"
	ModeProd Mode = "prod"
)

// ParseMode parses a mode string, returning an error for invalid values.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prod", "":
		return ModeProd, nil
	case "dev":
		return ModeDev, nil
	default:
		return "", fmt.Errorf("invalid mode %q: must be one of dev, prod", s)
	}
}

// LoaderOptions controls how configuration is loaded.
type LoaderOptions struct {
	// ConfigPath is the path to a TOML config file (optional).
	// If provided but file is missing or invalid, loading fails.
	ConfigPath string

	// ModeFlag is the --mode flag value (overrides config file mode).
	ModeFlag string

	// FlagOverrides are CLI flag values that override config file values.
	FlagOverrides FlagOverrides

	// Logger is used for warning messages (e.g., undecoded keys).
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// FlagOverrides holds CLI flag values that override config file values.
type FlagOverrides struct {
	ListenAddr     *string
	ExternalOrigin *string
	StoreDriver    *string
	DataDir        *string
	CacheDriver    *string
	OfflinePath    *string
	TLSMode        *string
	AdminUsername  *string
	AdminPassword  *string
	LoggingLevel   *string
}

// fileConfig mirrors Config but with pointer sections to detect presence.
type fileConfig struct {
	Mode string `toml:"mode"`

	ListenAddr     string `toml:"listen_addr"`
	ExternalOrigin string `toml:"external_origin"`

	Server  *serverConfig  `toml:"server"`
	TLS     *TLSConfig     `toml:"tls"`
	Store   *StoreConfig   `toml:"store"`
	Cache   *cacheConfig   `toml:"cache"`
	Offline *OfflineConfig `toml:"offline"`
	Push    *PushConfig    `toml:"push"`
	Logging *LoggingConfig `toml:"logging"`
}

type serverConfig struct {
	TrustedProxies  []string        `toml:"trusted_proxies"`
	BootstrapAdmin  *bootstrapAdmin `toml:"bootstrap_admin"`
	SessionTTLHours int             `toml:"session_ttl_hours"`
}

type bootstrapAdmin struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

type cacheConfig struct {
	Driver  string         `toml:"driver"`
	Drivers map[string]any `toml:"drivers"`
}

// Load loads configuration with the following precedence:
//  1. Determine effective mode: --mode flag > mode in config file > default (prod)
//  2. Start from mode preset defaults
//  3. Overlay TOML config file values
//  4. Overlay CLI flags
//  5. Validate enum fields
//
// If ConfigPath is provided but the file is missing, unreadable, or invalid TOML,
// Load returns an error (fail fast). Unknown/undecoded TOML keys produce a warning
// but do not fail the load.
func Load(opts LoaderOptions) (*Config, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var fc fileConfig

	if opts.ConfigPath != "" {
		data, err := os.ReadFile(opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigPath, err)
		}
		md, err := toml.Decode(string(data), &fc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", opts.ConfigPath, err)
		}

		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			logger.Warn("config file contains undecoded keys", "path", opts.ConfigPath, "keys", keys)
		}
	}

	modeStr := "prod"
	if fc.Mode != "" {
		modeStr = fc.Mode
	}
	if opts.ModeFlag != "" {
		modeStr = opts.ModeFlag
	}

	mode, err := ParseMode(modeStr)
	if err != nil {
		return nil, err
	}

	cfg := presetForMode(mode)

	if opts.ConfigPath != "" {
		overlayFileConfig(cfg, &fc)
	}

	overlayFlags(cfg, opts.FlagOverrides)

	if err := validateEnums(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// presetForMode returns the base config for a given mode.
func presetForMode(mode Mode) *Config {
	if mode == ModeDev {
		return DevConfig()
	}
	return ProdConfig()
}

// ProdConfig returns production-safe defaults.
func ProdConfig() *Config {
	return &Config{
		Mode:           string(ModeProd),
		ListenAddr:     ":8700",
		ExternalOrigin: "https://localhost:8700",
		Server: ServerConfig{
			TrustedProxies:  []string{"127.0.0.0/8", "::1/128"},
			SessionTTLHours: 24,
		},
		TLS: TLSConfig{
			Mode: "static",
		},
		Store: StoreConfig{
			Driver:  "sqlite",
			DataDir: ".vaadly/data",
		},
		Cache: CacheConfig{
			Driver: "memory",
		},
		Offline: OfflineConfig{
			Path:                 ".vaadly/offline.db",
			SweepIntervalSeconds: 300,
			ReplayMaxRetries:     5,
		},
		Push: PushConfig{
			Enabled:   true,
			TimeoutMS: 5000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DevConfig returns development mode defaults.
func DevConfig() *Config {
	cfg := ProdConfig()
	cfg.Mode = string(ModeDev)
	cfg.ExternalOrigin = "http://localhost:8700"
	cfg.TLS.Mode = "off"
	cfg.Logging.Level = "debug"
	return cfg
}

// overlayFileConfig applies TOML file values onto cfg.
func overlayFileConfig(cfg *Config, fc *fileConfig) {
	if fc.ListenAddr != "" {
		cfg.ListenAddr = fc.ListenAddr
	}
	if fc.ExternalOrigin != "" {
		cfg.ExternalOrigin = fc.ExternalOrigin
	}

	if fc.Server != nil {
		if len(fc.Server.TrustedProxies) > 0 {
			cfg.Server.TrustedProxies = fc.Server.TrustedProxies
		}
		if fc.Server.SessionTTLHours > 0 {
			cfg.Server.SessionTTLHours = fc.Server.SessionTTLHours
		}
		if fc.Server.BootstrapAdmin != nil {
			cfg.Server.BootstrapAdmin.Username = fc.Server.BootstrapAdmin.Username
			cfg.Server.BootstrapAdmin.Password = fc.Server.BootstrapAdmin.Password
		}
	}

	if fc.TLS != nil {
		if fc.TLS.Mode != "" {
			cfg.TLS.Mode = fc.TLS.Mode
		}
		if fc.TLS.CertFile != "" {
			cfg.TLS.CertFile = fc.TLS.CertFile
		}
		if fc.TLS.KeyFile != "" {
			cfg.TLS.KeyFile = fc.TLS.KeyFile
		}
	}

	if fc.Store != nil {
		if fc.Store.Driver != "" {
			cfg.Store.Driver = fc.Store.Driver
		}
		if fc.Store.DataDir != "" {
			cfg.Store.DataDir = fc.Store.DataDir
		}
	}

	if fc.Cache != nil {
		if fc.Cache.Driver != "" {
			cfg.Cache.Driver = fc.Cache.Driver
		}
		if len(fc.Cache.Drivers) > 0 {
			cfg.Cache.Drivers = fc.Cache.Drivers
		}
	}

	if fc.Offline != nil {
		if fc.Offline.Path != "" {
			cfg.Offline.Path = fc.Offline.Path
		}
		if fc.Offline.SweepIntervalSeconds != 0 {
			cfg.Offline.SweepIntervalSeconds = fc.Offline.SweepIntervalSeconds
		}
		if fc.Offline.ReplayBaseURL != "" {
			cfg.Offline.ReplayBaseURL = fc.Offline.ReplayBaseURL
		}
		if fc.Offline.ReplayMaxRetries != 0 {
			cfg.Offline.ReplayMaxRetries = fc.Offline.ReplayMaxRetries
		}
	}

	if fc.Push != nil {
		cfg.Push.Enabled = fc.Push.Enabled
		if fc.Push.TimeoutMS != 0 {
			cfg.Push.TimeoutMS = fc.Push.TimeoutMS
		}
	}

	if fc.Logging != nil {
		if fc.Logging.Level != "" {
			cfg.Logging.Level = fc.Logging.Level
		}
	}
}

// overlayFlags applies CLI flag values onto cfg.
func overlayFlags(cfg *Config, f FlagOverrides) {
	if f.ListenAddr != nil && *f.ListenAddr != "" {
		cfg.ListenAddr = *f.ListenAddr
	}
	if f.ExternalOrigin != nil && *f.ExternalOrigin != "" {
		cfg.ExternalOrigin = *f.ExternalOrigin
	}
	if f.StoreDriver != nil && *f.StoreDriver != "" {
		cfg.Store.Driver = *f.StoreDriver
	}
	if f.DataDir != nil && *f.DataDir != "" {
		cfg.Store.DataDir = *f.DataDir
	}
	if f.CacheDriver != nil && *f.CacheDriver != "" {
		cfg.Cache.Driver = *f.CacheDriver
	}
	if f.OfflinePath != nil && *f.OfflinePath != "" {
		cfg.Offline.Path = *f.OfflinePath
	}
	if f.TLSMode != nil && *f.TLSMode != "" {
		cfg.TLS.Mode = *f.TLSMode
	}
	if f.AdminUsername != nil && *f.AdminUsername != "" {
		cfg.Server.BootstrapAdmin.Username = *f.AdminUsername
	}
	if f.AdminPassword != nil && *f.AdminPassword != "" {
		cfg.Server.BootstrapAdmin.Password = *f.AdminPassword
	}
	if f.LoggingLevel != nil && *f.LoggingLevel != "" {
		cfg.Logging.Level = *f.LoggingLevel
	}
}

// validateEnums validates enum-like config fields and returns an error for invalid values.
func validateEnums(cfg *Config) error {
	switch cfg.TLS.Mode {
	case "off", "static":
		// valid
	default:
		return fmt.Errorf("invalid tls.mode %q: must be one of off, static", cfg.TLS.Mode)
	}

	if cfg.TLS.Mode == "static" {
		if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
			return fmt.Errorf("tls.cert_file and tls.key_file are required when tls.mode is static")
		}
	}

	switch cfg.Store.Driver {
	case "sqlite":
		// valid
	default:
		return fmt.Errorf("invalid store.driver %q: only 'sqlite' is supported in this release", cfg.Store.Driver)
	}

	switch cfg.Cache.Driver {
	case "", "memory", "valkey":
		// valid (empty defaults to memory)
	default:
		return fmt.Errorf("invalid cache.driver %q: must be one of memory, valkey", cfg.Cache.Driver)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid logging.level %q: must be one of debug, info, warn, error", cfg.Logging.Level)
	}

	return nil
}
