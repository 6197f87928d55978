// Package config provides configuration loading and validation.
package config

// Config holds the server configuration.
type Config struct {
	// Mode is the effective operating mode: dev or prod.
	Mode string `json:"mode"`

	// ListenAddr is the address to listen on.
	// Example: ":8700"
	ListenAddr string `json:"listen_addr"`

	// ExternalOrigin is the public origin (scheme + host + port) for this instance.
	// Used for absolute URLs in push notification payloads.
	ExternalOrigin string `json:"external_origin"`

	Server  ServerConfig  `json:"server"`
	TLS     TLSConfig     `json:"tls"`
	Store   StoreConfig   `json:"store"`
	Cache   CacheConfig   `json:"cache"`
	Offline OfflineConfig `json:"offline"`
	Push    PushConfig    `json:"push"`
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig holds server-specific settings.
type ServerConfig struct {
	// TrustedProxies is the list of CIDR ranges allowed to set X-Forwarded-* headers.
	TrustedProxies []string `json:"trusted_proxies"`

	// BootstrapAdmin is the initial admin user created at startup.
	BootstrapAdmin BootstrapAdminConfig `json:"bootstrap_admin"`

	// SessionTTLHours is the session lifetime in hours.
	SessionTTLHours int `json:"session_ttl_hours"`
}

// BootstrapAdminConfig holds the bootstrap admin credentials.
type BootstrapAdminConfig struct {
	Username string `json:"username"`
	Password string `json:"-"` // never serialized
}

// TLSConfig holds TLS-related settings.
type TLSConfig struct {
	// Mode is one of: off, static
	Mode string `json:"mode"`

	// CertFile and KeyFile for static mode
	CertFile string `json:"cert_file"`
	KeyFile  string `json:"key_file"`
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	// Driver is the store driver name (sqlite).
	Driver string `json:"driver"`

	// DataDir is the directory for data files.
	DataDir string `json:"data_dir"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	// Driver is the cache driver name: memory or valkey.
	Driver string `json:"driver"`

	// Drivers carries driver-specific settings keyed by driver name.
	Drivers map[string]any `json:"drivers"`
}

// OfflineConfig holds offline sync/cache store settings.
type OfflineConfig struct {
	// Path is the sqlite file backing the offline store.
	Path string `json:"path"`

	// SweepIntervalSeconds controls the periodic expired-cache sweep.
	// Zero disables the sweep; expired reads still self-heal.
	SweepIntervalSeconds int `json:"sweep_interval_seconds"`

	// ReplayBaseURL is the remote API origin queued mutations are replayed against.
	// Empty disables the replayer.
	ReplayBaseURL string `json:"replay_base_url"`

	// ReplayMaxRetries is the retry-count ceiling before a queued mutation is dropped.
	ReplayMaxRetries int `json:"replay_max_retries"`
}

// PushConfig holds push notification dispatch settings.
type PushConfig struct {
	// Enabled toggles the dispatch endpoint.
	Enabled bool `json:"enabled"`

	// TimeoutMS is the per-subscription delivery timeout in milliseconds.
	TimeoutMS int `json:"timeout_ms"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of: debug, info, warn, error.
	Level string `json:"level"`
}

// Redacted returns a copy of the config safe for logging.
func (c *Config) Redacted() Config {
	out := *c
	if out.Server.BootstrapAdmin.Password != "" {
		out.Server.BootstrapAdmin.Password = "[REDACTED]"
	}
	return out
}
