package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment variable name in Config tags.
const EnvPrefix = "SESSIONKEEPER_"

// parseEnv overlays cfg with SESSIONKEEPER_* variables. Unset variables
// leave the current value untouched.
func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
