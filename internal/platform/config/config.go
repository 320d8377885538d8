package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the deployment configuration of the roster API.
type Config struct {
	Port int `env:"PORT" envDefault:"8080"`

	// LogLevel is a zerolog level name (trace, debug, info, warn, error).
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// LogFormat is "console" for human-friendly output or "json".
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	// SeedFile optionally replaces the built-in starting roster.
	SeedFile string `env:"ROSTER_SEED_FILE"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// StreamWriteTimeout bounds each snapshot write to a stream client.
	StreamWriteTimeout time.Duration `env:"STREAM_WRITE_TIMEOUT" envDefault:"5s"`

	// IdempotencyTTL is how long a keyed add can be replayed. 0 keeps records forever.
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
}

// LoadFromEnv parses Config from the process environment.
func LoadFromEnv() (Config, error) {
	return parse(env.Options{})
}

// LoadFromMap parses Config from the given variables only. Used by tests.
func LoadFromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations that env tags cannot express.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	if c.StreamWriteTimeout <= 0 {
		return fmt.Errorf("STREAM_WRITE_TIMEOUT must be positive, got %s", c.StreamWriteTimeout)
	}
	if c.IdempotencyTTL < 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL must not be negative, got %s", c.IdempotencyTTL)
	}
	return nil
}
