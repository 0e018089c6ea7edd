package config

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Booking    BookingConfig    `yaml:"booking"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Log        LogConfig        `yaml:"log"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	Enabled    bool   `yaml:"enabled"`
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration. CacheTTLSeconds
// defaults to 30 when omitted and 0 disables the room cache.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds *int          `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	// Serializable runs conflict-check-then-write sequences at SERIALIZABLE
	// isolation. Defaults to true when omitted.
	Serializable *bool `yaml:"serializable"`
	// EnableExclusionConstraint installs the postgres range exclusion constraint on bookings.
	EnableExclusionConstraint bool `yaml:"enable_exclusion_constraint"`
	LogSQL                    bool `yaml:"log_sql"`
}

// UseSerializable reports whether transactions run at SERIALIZABLE isolation.
func (c DatabaseConfig) UseSerializable() bool {
	return c.Serializable == nil || *c.Serializable
}

// ConcurrencyGuarded reports whether concurrent admissions of overlapping
// bookings are serialized by either isolation or the exclusion constraint.
// sqlite serializes writers on its own.
func (c DatabaseConfig) ConcurrencyGuarded() bool {
	return c.Driver != "postgres" || c.UseSerializable() || c.EnableExclusionConstraint
}

// BookingConfig holds booking lifecycle policy.
type BookingConfig struct {
	// TerminalPolicy is "ignore" or "reject"; see booking.TerminalPolicy.
	TerminalPolicy string `yaml:"terminal_policy"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Serializable == nil {
		serializable := true
		cfg.Database.Serializable = &serializable
	}
	if !cfg.Database.ConcurrencyGuarded() {
		log.Warn("database.serializable and database.enable_exclusion_constraint are both off; concurrent bookings for the same room may overlap")
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds == nil {
		ttl := 30
		cfg.Server.CacheTTLSeconds = &ttl
	}
	if ttl := *cfg.Server.CacheTTLSeconds; ttl > 0 {
		cfg.Server.CacheTTL = time.Duration(ttl) * time.Second
	}

	if cfg.Booking.TerminalPolicy == "" {
		cfg.Booking.TerminalPolicy = "ignore"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Warn("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		cfg.WorkerPool.QueueSize = cfg.WorkerPool.Size * 16
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
