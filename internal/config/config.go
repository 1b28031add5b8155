package config

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress                string        `env:"RUN_ADDRESS" envDefault:":8080"`
	DatabaseURI               string        `env:"DATABASE_URI"`
	RedisURL                  string        `env:"REDIS_URL"`
	JWTSecret                 string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTSecretFile             string        `env:"JWT_SECRET_FILE"`
	TokenTTL                  time.Duration `env:"TOKEN_TTL" envDefault:"720h"`
	ResetTokenTTL             time.Duration `env:"RESET_TOKEN_TTL" envDefault:"10m"`
	AdminEmails               []string      `env:"ADMIN_EMAILS" envSeparator:","`
	ShutdownTimeout           time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	SeedFile                  string        `env:"SEED_FILE"`
	CheckoutLookupConcurrency int           `env:"CHECKOUT_LOOKUP_CONCURRENCY" envDefault:"8"`
	PublicURL                 string        `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
	LogLevel                  slog.Level    `env:"LOG_LEVEL" envDefault:"info"`
	BcryptCost                int           `env:"BCRYPT_COST"`
}

const (
	defaultTokenTTL                  = 720 * time.Hour
	defaultResetTokenTTL             = 10 * time.Minute
	defaultShutdownTimeout           = 10 * time.Second
	defaultCheckoutLookupConcurrency = 8
)

// Load parses configuration from environment variables, then flags.
func Load() (*Config, error) {
	return load(os.Args[1:], env.ToMap(os.Environ()))
}

func load(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("healthmart", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	adminEmails := strings.Join(cfg.AdminEmails, ",")

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL for reset tokens")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "Auth token lifetime")
	fs.DurationVar(&cfg.ResetTokenTTL, "reset-ttl", cfg.ResetTokenTTL, "Password reset token lifetime")
	fs.StringVar(&adminEmails, "admins", adminEmails, "Comma separated admin emails")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "Graceful shutdown timeout")
	fs.StringVar(&cfg.SeedFile, "seed", cfg.SeedFile, "YAML catalog loaded into an empty database")
	fs.IntVar(&cfg.CheckoutLookupConcurrency, "lookup-concurrency", cfg.CheckoutLookupConcurrency, "Concurrent product lookups per checkout")
	fs.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "External base URL used in emails")
	fs.TextVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Minimum log level (debug, info, warn, error)")
	fs.IntVar(&cfg.BcryptCost, "bcrypt-cost", cfg.BcryptCost, "bcrypt work factor, 0 for the library default")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	cfg.AdminEmails = splitEmails(adminEmails)

	if cfg.JWTSecretFile != "" {
		content, err := os.ReadFile(cfg.JWTSecretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = defaultResetTokenTTL
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.CheckoutLookupConcurrency <= 0 {
		cfg.CheckoutLookupConcurrency = defaultCheckoutLookupConcurrency
	}

	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.AdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

func splitEmails(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
