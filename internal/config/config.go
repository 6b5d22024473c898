package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"

	"github.com/racequest/raceapi/internal/race"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/race.db"`
	RedisURL string     `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// CatalogPath points at a JSON course file. Empty means the embedded
	// demo course.
	CatalogPath string `env:"CATALOG_PATH"`

	AttemptsPerChallenge int     `env:"ATTEMPTS_PER_CHALLENGE" envDefault:"3"`
	HintPenalty          float64 `env:"HINT_PENALTY" envDefault:"0.5"`
	UseGeofence          bool    `env:"USE_GEOFENCE" envDefault:"false"`

	// AdminIDs are the owner identifiers allowed to call admin endpoints.
	AdminIDs []string `env:"ADMIN_IDS" envSeparator:","`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.AttemptsPerChallenge < 1 {
		return nil, fmt.Errorf("ATTEMPTS_PER_CHALLENGE must be at least 1, got %d", cfg.AttemptsPerChallenge)
	}
	if cfg.HintPenalty < 0 {
		return nil, fmt.Errorf("HINT_PENALTY must not be negative, got %v", cfg.HintPenalty)
	}
	return &cfg, nil
}

// Rules maps the configured policy knobs onto the game engine.
func (c *Config) Rules() race.Rules {
	return race.Rules{
		AttemptBudget: c.AttemptsPerChallenge,
		HintPenalty:   c.HintPenalty,
		Geofence:      c.UseGeofence,
	}
}
