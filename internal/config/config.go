// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/denisok6893-rgb/property-underwriting/internal/domain"
)

type Config struct {
	Address         string
	PropertiesPath  string
	AssumptionsPath string
	DBPath          string // empty keeps listings in memory
	LogLevel        string
	LogPretty       bool
	ScoreWorkers    int

	DefaultStrategy     domain.Strategy
	DefaultHorizonYears int
}

// Load reads configuration from environment variables, after loading a .env
// file if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	strategy, err := domain.ParseStrategy(getEnv("DEFAULT_STRATEGY", "rental"))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_STRATEGY: %w", err)
	}

	cfg := &Config{
		Address:             getEnv("API_ADDRESS", ":8080"),
		PropertiesPath:      getEnv("PROPERTIES_PATH", "data/properties.json"),
		AssumptionsPath:     getEnv("ASSUMPTIONS_PATH", "configs/assumptions.toml"),
		DBPath:              getEnv("DB_PATH", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogPretty:           getEnvAsBool("LOG_PRETTY", false),
		ScoreWorkers:        getEnvAsInt("SCORE_WORKERS", 4),
		DefaultStrategy:     strategy,
		DefaultHorizonYears: getEnvAsInt("DEFAULT_HORIZON_YEARS", 5),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("API_ADDRESS must not be empty")
	}
	if c.ScoreWorkers <= 0 {
		return fmt.Errorf("SCORE_WORKERS must be positive, got %d", c.ScoreWorkers)
	}
	if !c.DefaultStrategy.Valid() {
		return fmt.Errorf("DEFAULT_STRATEGY: %w", domain.ErrUnknownStrategy)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
