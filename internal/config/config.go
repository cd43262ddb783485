// Package config reads service settings from CHOREHUB_* environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const prefix = "CHOREHUB"

// Backend selects the remote store transport.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendREST     Backend = "rest"
)

type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	Backend     Backend       `envconfig:"BACKEND" default:"sqlite"`
	DBPath      string        `envconfig:"DB_PATH" default:"chorehub.db"`
	PostgresDSN string        `envconfig:"POSTGRES_DSN"`
	RESTURL     string        `envconfig:"REST_URL"`
	RESTKey     string        `envconfig:"REST_KEY"`
	RESTTimeout time.Duration `envconfig:"REST_TIMEOUT" default:"10s"`

	// CookieSecret enables sealed session cookies when set.
	CookieSecret  string        `envconfig:"COOKIE_SECRET"`
	SecureCookies bool          `envconfig:"SECURE_COOKIES" default:"false"`
	WorkspaceIdle time.Duration `envconfig:"WORKSPACE_IDLE" default:"30m"`

	// JoinRateLimit is the number of joins allowed per client IP per minute.
	JoinRateLimit int `envconfig:"JOIN_RATE_LIMIT" default:"10"`
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected backend has the settings it needs.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("%s_DB_PATH is required for the sqlite backend", prefix)
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%s_POSTGRES_DSN is required for the postgres backend", prefix)
		}
	case BackendREST:
		if c.RESTURL == "" {
			return fmt.Errorf("%s_REST_URL is required for the rest backend", prefix)
		}
	default:
		return fmt.Errorf("unsupported %s_BACKEND: %q", prefix, c.Backend)
	}
	if c.WorkspaceIdle <= 0 {
		return fmt.Errorf("%s_WORKSPACE_IDLE must be positive", prefix)
	}
	if c.JoinRateLimit <= 0 {
		return fmt.Errorf("%s_JOIN_RATE_LIMIT must be positive", prefix)
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}
