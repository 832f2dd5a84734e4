package platform

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/aretw0/otcheck/pkg/core"
)

// EnvConfig holds the settings read from OTCHECK_* environment variables.
type EnvConfig struct {
	Format        string `env:"OTCHECK_FORMAT" envDefault:"json"`
	StrictKinds   bool   `env:"OTCHECK_STRICT_KINDS"`
	StrictNumbers bool   `env:"OTCHECK_STRICT_NUMBERS"`
	SkipBound     string `env:"OTCHECK_SKIP_BOUND" envDefault:"legacy"`
	Pattern       string `env:"OTCHECK_PATTERN"`
	NoCache       bool   `env:"OTCHECK_NO_CACHE"`
}

// LoadEnv reads the process environment.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadEnvFrom reads the given variables instead of the process environment.
func LoadEnvFrom(vars map[string]string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Options converts the configuration to functional options.
func (c EnvConfig) Options() ([]Option, error) {
	bound, err := core.ParseSkipBound(c.SkipBound)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithFormat(c.Format),
		WithStrictKinds(c.StrictKinds),
		WithStrictNumbers(c.StrictNumbers),
		WithSkipBound(bound),
	}
	if c.Pattern != "" {
		opts = append(opts, WithPattern(c.Pattern))
	}
	if c.NoCache {
		opts = append(opts, WithCache(false))
	}
	return opts, nil
}
