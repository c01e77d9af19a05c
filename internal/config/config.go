// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/samdwyer/repoheroes/internal/balance"
)

// Config holds everything the game reads from the environment. The .env
// loading itself happens in main; this package only parses.
type Config struct {
	// DBPath is the SQLite database file for saved worlds and players.
	DBPath string `env:"RH_DB_PATH" envDefault:"repoheroes.db"`

	// GitHubToken authorizes API requests. Optional; unauthenticated
	// requests work with a much lower rate limit.
	GitHubToken string `env:"GITHUB_TOKEN"`

	// GitHubBaseURL points at the GitHub REST API. Overridable for
	// GitHub Enterprise hosts and tests.
	GitHubBaseURL string `env:"RH_GITHUB_API" envDefault:"https://api.github.com"`

	// PlayerName keys the saved player record.
	PlayerName string `env:"RH_PLAYER" envDefault:"Hero"`

	Balance balance.Config
}

// Load parses configuration from process environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
