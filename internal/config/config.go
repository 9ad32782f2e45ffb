// Package config reads the server configuration from flags, with
// GALETTERY_* environment variables (and an optional .env file) as defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/galettery/galettery/internal/logger"
)

const envPrefix = "GALETTERY_"

// Config holds everything needed to start the server
type Config struct {
	Port          int
	DBPath        string
	AdminPassword string
	LogLevel      string
	LogFormat     string
	BaseURL       string
	BackendURL    string
	BackendAPIKey string
	NATSURL       string
	TemplatesDir  string
	SessionTTL    time.Duration
	NoAnimate     bool
	NoKeyboard    bool
	ShowVersion   bool
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// LoadEnvFile loads a dotenv file into the environment without overriding
// variables that are already set. It is skipped when GALETTERY_ENV is
// production, and a missing file is not an error.
func LoadEnvFile(path string) error {
	if os.Getenv(envPrefix+"ENV") == "production" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load parses args (without the program name). Environment variables provide
// the defaults, flags win.
func Load(args []string, usage io.Writer) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("galettery", flag.ContinueOnError)
	fs.SetOutput(usage)

	port, err := envInt("PORT", 8081)
	if err != nil {
		return nil, err
	}
	ttl, err := envDuration("SESSION_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}

	fs.IntVar(&cfg.Port, "port", port, "HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", envString("DB", "galettery.db"), "SQLite database path")
	fs.StringVar(&cfg.AdminPassword, "adminpw", envString("ADMIN_PASSWORD", ""), "Staff password or bcrypt hash (auto-generated if not set)")
	fs.StringVar(&cfg.LogLevel, "loglevel", envString("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "logformat", envString("LOG_FORMAT", "text"), "Log format (text, json)")
	fs.StringVar(&cfg.BaseURL, "baseurl", envString("BASE_URL", ""), "Public URL used in menu QR codes")
	fs.StringVar(&cfg.BackendURL, "backend", envString("BACKEND_URL", ""), "Catalog gateway URL")
	fs.StringVar(&cfg.BackendAPIKey, "backendkey", envString("BACKEND_API_KEY", ""), "Catalog gateway API key")
	fs.StringVar(&cfg.NATSURL, "nats", envString("NATS_URL", ""), "NATS server URL for order events (disabled if empty)")
	fs.StringVar(&cfg.TemplatesDir, "templates", envString("TEMPLATES_DIR", "templates"), "Directory of cuisine template YAML files")
	fs.DurationVar(&cfg.SessionTTL, "sessionttl", ttl, "Idle lifetime of a customization session")
	fs.BoolVar(&cfg.NoAnimate, "noanimate", false, "Skip the startup banner")
	fs.BoolVar(&cfg.NoKeyboard, "nokeyboard", false, "Disable keyboard shortcuts")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values a flag parser cannot
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("database path is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	switch c.LogFormat {
	case string(logger.FormatText), string(logger.FormatJSON):
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	return nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := envString(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := envString(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return d, nil
}
