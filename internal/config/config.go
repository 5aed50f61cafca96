package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"memory-duel/internal/game"
)

// Config holds every setting read from the environment
type Config struct {
	// Environment
	Environment string `env:"APP_ENV,default=development"`

	// Server
	Port             string `env:"PORT,default=8080"`
	StaticDir        string `env:"STATIC_DIR,default=./web"`
	AllowedWSOrigins string `env:"ALLOWED_WS_ORIGINS"` // comma separated; empty means localhost only

	// Redis; empty keeps checkpoints in memory
	RedisURL   string        `env:"REDIS_URL"`
	SessionTTL time.Duration `env:"SESSION_TTL,default=1h"`

	// Game Settings
	FacePoolSize    int           `env:"FACE_POOL_SIZE,default=128"`
	DefaultGridSize int           `env:"DEFAULT_GRID_SIZE,default=4"`
	RevealDelay     time.Duration `env:"REVEAL_DELAY,default=560ms"`
	UnlockDelay     time.Duration `env:"UNLOCK_DELAY,default=240ms"`
}

// Load reads a .env file if present, then the environment.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail at the first game
func (c *Config) Validate() error {
	if c.FacePoolSize < 1 {
		return fmt.Errorf("FACE_POOL_SIZE must be positive, got %d", c.FacePoolSize)
	}
	maxGrid := game.MaxGridSize(c.FacePoolSize)
	if c.DefaultGridSize <= 0 || c.DefaultGridSize%2 != 0 || c.DefaultGridSize > maxGrid {
		return fmt.Errorf("DEFAULT_GRID_SIZE must be an even number between 2 and %d, got %d", maxGrid, c.DefaultGridSize)
	}
	if c.RevealDelay < 0 || c.UnlockDelay < 0 {
		return errors.New("REVEAL_DELAY and UNLOCK_DELAY must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
