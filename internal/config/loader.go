package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if RAIDLUCK_CONFIG is set
//  3. env (prefix RAIDLUCK_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("RAIDLUCK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: RAIDLUCK_ADDR, RAIDLUCK_SHARD_COUNT, ...
	// Map env keys like RAIDLUCK_SHARD_COUNT -> shard_count (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("RAIDLUCK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "raidluck_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.Storage != "memory" && c.Storage != "sqlite" {
		return fmt.Errorf("%w: storage must be memory or sqlite, got %q", ErrInvalidConfig, c.Storage)
	}
	if c.Storage == "sqlite" && c.SQLitePath == "" {
		return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
	}
	if len(c.RarityBaselines) == 0 {
		return fmt.Errorf("%w: rarity_baselines must not be empty", ErrInvalidConfig)
	}
	for locale, p := range c.RarityBaselines {
		if p <= 0 || p >= 1 {
			return fmt.Errorf("%w: baseline for %q must be in (0, 1), got %v", ErrInvalidConfig, locale, p)
		}
	}
	return nil
}
