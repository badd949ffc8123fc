// Package config loads and validates the portfolio backend configuration using Viper.
//
// Configuration is layered: built-in defaults < YAML config file < environment
// variables. Environment variables use the PF_ prefix (e.g., PF_DATABASE_PATH
// overrides database.path in the YAML). This layering allows the same binary to
// run with a config.yaml in local development and with pure environment variables
// in containerized deployments — no recompilation or different binaries needed.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Session   SessionConfig   `mapstructure:"session"`
	Security  SecurityConfig  `mapstructure:"security"`
	Content   ContentConfig   `mapstructure:"content"`
	Email     EmailConfig     `mapstructure:"email"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	BaseURL      string        `mapstructure:"base_url"`
	PublicURL    string        `mapstructure:"public_url"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// Environment is "development" or "production". In production the session
	// cookie gains the Secure flag and a missing session secret is fatal.
	Environment string `mapstructure:"environment"`
}

// IsProduction reports whether the server runs in production mode.
func (s *ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// GetAddress returns the server address in host:port format
func (s *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GetPublicURL returns the public-facing URL used in redirects and outbound
// email links. When server.public_url is set it is returned as-is; otherwise
// it falls back to server.base_url. The distinction matters behind a reverse
// proxy where the internal listen address differs from the published one.
func (s *ServerConfig) GetPublicURL() string {
	if s.PublicURL != "" {
		return s.PublicURL
	}
	return s.BaseURL
}

// DatabaseConfig selects between the local file-backed SQLite engine and a
// remote libSQL (Turso) replica. The remote backend is used when both
// turso_url and turso_auth_token are set; otherwise the local file at path
// is opened. The choice is made once at startup and fixed for the process.
type DatabaseConfig struct {
	Path               string `mapstructure:"path"`
	TursoURL           string `mapstructure:"turso_url"`
	TursoAuthToken     string `mapstructure:"turso_auth_token"`
	MaxConnections     int    `mapstructure:"max_connections"`
	MinIdleConnections int    `mapstructure:"min_idle_connections"`
}

// IsRemote reports whether the remote libSQL backend is selected.
func (d *DatabaseConfig) IsRemote() bool {
	return d.TursoURL != "" && d.TursoAuthToken != ""
}

// SessionConfig holds session token signing configuration
type SessionConfig struct {
	// Secret signs the session JWT (HS256). Required in production.
	Secret string `mapstructure:"secret"`
	// Issuer is embedded in the token's iss claim.
	Issuer string `mapstructure:"issuer"`
	// TTL is the session lifetime from issuance.
	TTL time.Duration `mapstructure:"ttl"`
	// CookieName is the session cookie name.
	CookieName string `mapstructure:"cookie_name"`
}

// SecurityConfig groups the two rate limiters' tunables
type SecurityConfig struct {
	LoginRateLimit   LoginRateLimitConfig   `mapstructure:"login_rate_limit"`
	ContactRateLimit ContactRateLimitConfig `mapstructure:"contact_rate_limit"`
}

// LoginRateLimitConfig tunes the per-IP fixed-window login limiter
type LoginRateLimitConfig struct {
	MaxAttempts   int           `mapstructure:"max_attempts"`
	Window        time.Duration `mapstructure:"window"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// ContactRateLimitConfig tunes the per-email persisted contact limiter
type ContactRateLimitConfig struct {
	MaxSubmissions int           `mapstructure:"max_submissions"`
	Window         time.Duration `mapstructure:"window"`
}

// ContentConfig points at the markdown content served by the site
type ContentConfig struct {
	// PostsDir is the directory of blog post markdown files; its file names
	// (minus extension) define the set of slugs the view tracker accepts.
	PostsDir string `mapstructure:"posts_dir"`
}

// EmailConfig holds outbound mail configuration for the contact form
type EmailConfig struct {
	// Provider is "smtp" or "log". The log provider writes the message to the
	// application log instead of sending, for development.
	Provider string `mapstructure:"provider"`
	// Recipient is the address contact-form submissions are delivered to.
	Recipient string     `mapstructure:"recipient"`
	SMTP      SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig holds outbound mail server configuration
type SMTPConfig struct {
	// Host is the SMTP server hostname (e.g. smtp.sendgrid.net)
	Host string `mapstructure:"host"`
	// Port is the SMTP server port (587 for STARTTLS, 25 for plain)
	Port int `mapstructure:"port"`
	// Username for SMTP authentication
	Username string `mapstructure:"username"`
	// Password for SMTP authentication
	Password string `mapstructure:"password"`
	// From is the sender address shown on dispatched mail
	From string `mapstructure:"from"`
}

// LoggingConfig holds structured logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds metrics configuration
type TelemetryConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig configures the Prometheus side-channel listener
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// bindEnvVars explicitly binds environment variables to config keys.
// This is necessary because AutomaticEnv() doesn't work well with nested structs during Unmarshal.
// viper.BindEnv only errors when called with zero keys; since every key here is a non-empty
// hardcoded string, any error indicates a programming bug and is surfaced to the caller.
func bindEnvVars(v *viper.Viper) error {
	keys := []string{
		// Server
		"server.host",
		"server.port",
		"server.base_url",
		"server.public_url",
		"server.read_timeout",
		"server.write_timeout",
		"server.environment",

		// Database
		"database.path",
		"database.turso_url",
		"database.turso_auth_token",
		"database.max_connections",
		"database.min_idle_connections",

		// Session
		"session.secret",
		"session.issuer",
		"session.ttl",
		"session.cookie_name",

		// Security
		"security.login_rate_limit.max_attempts",
		"security.login_rate_limit.window",
		"security.login_rate_limit.sweep_interval",
		"security.contact_rate_limit.max_submissions",
		"security.contact_rate_limit.window",

		// Content
		"content.posts_dir",

		// Email
		"email.provider",
		"email.recipient",
		"email.smtp.host",
		"email.smtp.port",
		"email.smtp.username",
		"email.smtp.password",
		"email.smtp.from",

		// Logging
		"logging.level",
		"logging.format",

		// Telemetry
		"telemetry.metrics.enabled",
		"telemetry.metrics.port",
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env var %q: %w", key, err)
		}
	}
	return nil
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Set config file path if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config.yaml in common locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/portfolio-backend")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment variables
	}

	// Enable environment variable support
	v.SetEnvPrefix("PF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind environment variables for nested structures
	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	// Unmarshal configuration
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Expand environment variables in sensitive fields
	cfg.Database.TursoAuthToken = os.ExpandEnv(cfg.Database.TursoAuthToken)
	cfg.Session.Secret = os.ExpandEnv(cfg.Session.Secret)
	cfg.Email.SMTP.Password = os.ExpandEnv(cfg.Email.SMTP.Password)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.public_url", "")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// Database defaults
	v.SetDefault("database.path", "./data/portfolio.db")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_idle_connections", 2)

	// Session defaults
	v.SetDefault("session.issuer", "portfolio-backend")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.cookie_name", "pf_session")

	// Security defaults
	v.SetDefault("security.login_rate_limit.max_attempts", 5)
	v.SetDefault("security.login_rate_limit.window", "15m")
	v.SetDefault("security.login_rate_limit.sweep_interval", "5m")
	v.SetDefault("security.contact_rate_limit.max_submissions", 3)
	v.SetDefault("security.contact_rate_limit.window", "24h")

	// Content defaults
	v.SetDefault("content.posts_dir", "./content/posts")

	// Email defaults
	v.SetDefault("email.provider", "log")
	v.SetDefault("email.smtp.port", 587)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Telemetry defaults
	v.SetDefault("telemetry.metrics.enabled", false)
	v.SetDefault("telemetry.metrics.port", 9090)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	if c.Server.Environment != "development" && c.Server.Environment != "production" {
		return fmt.Errorf("invalid server environment: %s (must be development or production)", c.Server.Environment)
	}

	// Validate database: remote needs both values, local needs a file path
	if c.Database.TursoURL != "" && c.Database.TursoAuthToken == "" {
		return fmt.Errorf("database.turso_auth_token is required when database.turso_url is set")
	}
	if !c.Database.IsRemote() && c.Database.Path == "" {
		return fmt.Errorf("database.path is required when no remote database is configured")
	}

	// Validate session: secret required in production, discouraged-short elsewhere
	if c.Server.IsProduction() && c.Session.Secret == "" {
		return fmt.Errorf("session.secret is required in production (generate one with: openssl rand -hex 32)")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}

	// Validate rate limits
	if c.Security.LoginRateLimit.MaxAttempts < 1 {
		return fmt.Errorf("security.login_rate_limit.max_attempts must be at least 1")
	}
	if c.Security.LoginRateLimit.Window <= 0 {
		return fmt.Errorf("security.login_rate_limit.window must be positive")
	}
	if c.Security.ContactRateLimit.MaxSubmissions < 1 {
		return fmt.Errorf("security.contact_rate_limit.max_submissions must be at least 1")
	}
	if c.Security.ContactRateLimit.Window <= 0 {
		return fmt.Errorf("security.contact_rate_limit.window must be positive")
	}

	// Validate email provider
	switch c.Email.Provider {
	case "log":
	case "smtp":
		if c.Email.SMTP.Host == "" {
			return fmt.Errorf("email.smtp.host is required when email.provider is smtp")
		}
		if c.Email.SMTP.From == "" {
			return fmt.Errorf("email.smtp.from is required when email.provider is smtp")
		}
		if c.Email.Recipient == "" {
			return fmt.Errorf("email.recipient is required when email.provider is smtp")
		}
	default:
		return fmt.Errorf("invalid email provider: %s (must be smtp or log)", c.Email.Provider)
	}

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	return nil
}
