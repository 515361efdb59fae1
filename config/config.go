package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Push       PushConfig       `yaml:"push"`
	Alerts     AlertsConfig     `yaml:"alerts"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
}

// AuthConfig holds the secret used to verify bearer tokens.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// AlertsConfig controls the periodic capacity alert monitor.
type AlertsConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
	CooldownMinutes int           `yaml:"cooldown_minutes"`
	Cooldown        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"`
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

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// applyEnvOverrides lets secrets live outside the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	if cfg.Alerts.IntervalSeconds <= 0 {
		cfg.Alerts.IntervalSeconds = 300
	}
	cfg.Alerts.Interval = time.Duration(cfg.Alerts.IntervalSeconds) * time.Second
	if cfg.Alerts.CooldownMinutes <= 0 {
		cfg.Alerts.CooldownMinutes = 60
	}
	cfg.Alerts.Cooldown = time.Duration(cfg.Alerts.CooldownMinutes) * time.Minute

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
}
