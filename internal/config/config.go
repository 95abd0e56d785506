// Package config loads the gateway configuration from an optional
// YAML file with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses YAML strings like "90s" or "2m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

type Config struct {
	Addr       string   `yaml:"addr"`
	BackendURL string   `yaml:"backend_url"`
	StateDir   string   `yaml:"state_dir"`
	RedisAddr  string   `yaml:"redis_addr"`
	CatalogTTL Duration `yaml:"catalog_ttl"`
	Production bool     `yaml:"production"`
}

func Default() Config {
	stateDir := ".shopfront"
	if home, err := os.UserHomeDir(); err == nil {
		stateDir = filepath.Join(home, ".shopfront")
	}
	return Config{
		Addr:       ":8080",
		BackendURL: "https://api-ecom.duthanhduoc.com",
		StateDir:   stateDir,
		CatalogTTL: Duration(time.Minute),
	}
}

// Load reads the YAML file at path on top of the defaults. A missing
// file is fine; environment variables win over both.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	override := func(dst *string, env string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	override(&cfg.Addr, "SHOPFRONT_ADDR")
	override(&cfg.BackendURL, "SHOPFRONT_BACKEND_URL")
	override(&cfg.StateDir, "SHOPFRONT_STATE_DIR")
	override(&cfg.RedisAddr, "SHOPFRONT_REDIS_ADDR")
	if os.Getenv("ENV") == "production" {
		cfg.Production = true
	}

	if cfg.CatalogTTL <= 0 {
		cfg.CatalogTTL = Duration(time.Minute)
	}
	return cfg, nil
}

// StateFile is the path of the persisted session state.
func (c Config) StateFile() string {
	return filepath.Join(c.StateDir, "state.json")
}
