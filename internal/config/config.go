package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAddr         = ":5000"
	defaultParserURL    = "http://localhost:8000/parse"
	defaultParseTimeout = 3
)

// Config holds everything supplied from outside the process.
type Config struct {
	Addr                string `yaml:"addr"`
	ParserURL           string `yaml:"parser_url"`
	ParseTimeoutSeconds int    `yaml:"parse_timeout_seconds"`
	CatalogPath         string `yaml:"catalog_path"`
	SubstitutesPath     string `yaml:"substitutes_path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:                defaultAddr,
		ParserURL:           defaultParserURL,
		ParseTimeoutSeconds: defaultParseTimeout,
	}
}

// Load reads YAML configuration from path. An empty path yields the
// defaults. GROCER_ADDR and GROCER_PARSER_URL override either source.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		cfg = hydrateDefaults(cfg)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// ParseTimeout converts the configured seconds to a duration.
func (c Config) ParseTimeout() time.Duration {
	return time.Duration(c.ParseTimeoutSeconds) * time.Second
}

func hydrateDefaults(cfg Config) Config {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.ParserURL == "" {
		cfg.ParserURL = defaultParserURL
	}
	if cfg.ParseTimeoutSeconds <= 0 {
		cfg.ParseTimeoutSeconds = defaultParseTimeout
	}
	return cfg
}

func applyEnv(cfg *Config) {
	if addr := os.Getenv("GROCER_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if url := os.Getenv("GROCER_PARSER_URL"); url != "" {
		cfg.ParserURL = url
	}
}
