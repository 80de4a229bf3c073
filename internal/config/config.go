// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`

	// Database Configuration
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBSource          string        `mapstructure:"DB_SOURCE"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Google Identity Configuration
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URI"`
	GoogleJWKSURL      string `mapstructure:"GOOGLE_JWKS_URL"`

	// Authorization Configuration
	AdminEmails      string `mapstructure:"ADMIN_EMAILS"`
	AdminResetSecret string `mapstructure:"ADMIN_RESET_SECRET"`

	// Rate Limiting Configuration
	RateLimitWindow      time.Duration `mapstructure:"RATE_LIMIT_WINDOW_SECONDS"`
	RateLimitMaxRequests int           `mapstructure:"RATE_LIMIT_MAX_REQUESTS"`

	// Cron Jobs
	ReseedJobSchedule string `mapstructure:"RESEED_JOB_SCHEDULE"`

	// Session Configuration
	SessionSecret     string        `mapstructure:"SESSION_SECRET"`
	SessionCookieName string        `mapstructure:"SESSION_COOKIE_NAME"`
	SessionTTL        time.Duration `mapstructure:"SESSION_TTL_MINUTES"`

	// Backend base URL used by the session issuer to call the users sync endpoint.
	BackendBaseURL string `mapstructure:"BACKEND_BASE_URL"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	// Set default values
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "nexus_mapping_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REDIRECT_URI", "")
	v.SetDefault("GOOGLE_JWKS_URL", "https://www.googleapis.com/oauth2/v3/certs")

	v.SetDefault("ADMIN_EMAILS", "")
	v.SetDefault("ADMIN_RESET_SECRET", "")

	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 30)

	v.SetDefault("RESEED_JOB_SCHEDULE", "@daily")

	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_COOKIE_NAME", "nexus_session")
	v.SetDefault("SESSION_TTL_MINUTES", 720)

	v.SetDefault("BACKEND_BASE_URL", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.RateLimitWindow = time.Duration(v.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second
	cfg.SessionTTL = time.Duration(v.GetInt("SESSION_TTL_MINUTES")) * time.Minute

	// GORM DSN constructed from individual DB params. The DB_SOURCE env var,
	// when set, is primarily for external migration tooling.
	cfg.DBSource = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode, cfg.DBTimezone)

	// Basic validation for critical configs
	if strings.TrimSpace(cfg.GoogleClientID) == "" {
		return nil, fmt.Errorf("FATAL: GOOGLE_CLIENT_ID is not set. It is required to validate Google ID tokens")
	}
	if strings.TrimSpace(cfg.SessionSecret) == "" {
		return nil, fmt.Errorf("FATAL: SESSION_SECRET is not set. It is required to sign session cookies")
	}

	return &cfg, nil
}

// AdminEmailList splits the configured comma-separated admin allow-list.
// Matching against it is case-sensitive.
func (c *Config) AdminEmailList() []string {
	if strings.TrimSpace(c.AdminEmails) == "" {
		return nil
	}
	parts := strings.Split(c.AdminEmails, ",")
	emails := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			emails = append(emails, trimmed)
		}
	}
	return emails
}
