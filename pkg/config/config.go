package config

import (
	"context"
	"fmt"
	"os"

	"github.com/asimihsan/manup/internal/config"
	"github.com/asimihsan/manup/pkg/config/loader"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "manup.yaml"

// DefaultEnvFile is read for MANUP_* variables when present.
const DefaultEnvFile = ".env"

// DefaultsID identifies a configuration built without a file.
const DefaultsID = "defaults"

// Override adjusts the configuration after file and environment are applied.
type Override func(*config.AppConfig)

// Evaluate resolves the configuration: defaults, then the file at path (or
// DefaultPath when path is empty and that file exists), then MANUP_*
// variables, then overrides. The result is validated. The returned ID is the
// SHA-256 of the file, or DefaultsID.
func Evaluate(ctx context.Context, path string, overrides ...Override) (*config.AppConfig, string, error) {
	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}

	cfg := *config.Default()
	id := DefaultsID
	if path != "" {
		shared, sha, err := loader.LoadFromPathWithSHA(ctx, path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg, id = *shared, sha
	}

	lookup, err := config.EnvLookup(DefaultEnvFile)
	if err != nil {
		return nil, "", err
	}
	if err := config.ApplyEnv(&cfg, lookup); err != nil {
		return nil, "", err
	}
	for _, o := range overrides {
		o(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, id, nil
}
