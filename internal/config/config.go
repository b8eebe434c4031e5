// Package config loads environment-overridable defaults for the demo
// CLI, the way dcfr-go/appconfig loads its process configuration.
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// AppConfig holds the defaults the demo binary falls back to when a flag
// isn't passed explicitly.
type AppConfig struct {
	Iterations int    `env:"SOLVER_ITERATIONS" env-default:"1000"`
	NumThreads int    `env:"SOLVER_THREADS" env-default:"0"`
	LogLevel   string `env:"SOLVER_LOG_LEVEL" env-default:"info"`
}

// Load reads AppConfig from the process environment.
func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
