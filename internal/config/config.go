// Package config loads hockeymetrics settings from defaults, an optional
// YAML file and HOCKEYMETRICS_* environment variables, in that order of
// precedence (low to high). Command-line flags are applied on top by cmd.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment override. Nested keys use a
	// double underscore: HOCKEYMETRICS_PROVIDER__RPS=2.
	EnvPrefix = "HOCKEYMETRICS_"
	// PathEnvVar names a YAML config file when --config is not given.
	PathEnvVar = "HOCKEYMETRICS_CONFIG"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full process configuration.
type Config struct {
	DBPath   string         `koanf:"db_path" validate:"required"`
	CacheDir string         `koanf:"cache_dir"`
	Workers  int            `koanf:"workers" validate:"min=1,max=32"`
	Log      LogConfig      `koanf:"log"`
	Provider ProviderConfig `koanf:"provider"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Model    ModelConfig    `koanf:"model"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// ProviderConfig configures the NHL web API client.
type ProviderConfig struct {
	WebBaseURL   string        `koanf:"web_base_url" validate:"required,url"`
	StatsBaseURL string        `koanf:"stats_base_url" validate:"required,url"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
	RPS          float64       `koanf:"rps" validate:"gt=0"`
	Burst        int           `koanf:"burst" validate:"min=1"`
	// FetchHands looks up shooter and goalie handedness for the xG model.
	FetchHands bool `koanf:"fetch_hands"`
}

// PipelineConfig controls record-level error tolerance.
type PipelineConfig struct {
	// Strict fails a game on the first malformed record.
	Strict bool `koanf:"strict"`
	// MaxSkipped is how many malformed records a game may drop before the
	// whole game is rejected.
	MaxSkipped int `koanf:"max_skipped" validate:"min=0"`
}

// ModelConfig locates the shot-quality model. Empty Path uses the built-in
// coefficients.
type ModelConfig struct {
	Path string `koanf:"path"`
}

// MetricsConfig controls the prometheus textfile dump written after a run.
type MetricsConfig struct {
	Textfile string `koanf:"textfile"`
}

// Default returns the built-in configuration.
func Default() Config {
	home := mustUserHome()
	return Config{
		DBPath:   filepath.Join(home, ".hockeymetrics", "metrics.db"),
		CacheDir: filepath.Join(home, ".hockeymetrics", "cache"),
		Workers:  2,
		Log:      LogConfig{Level: "info", Format: "console"},
		Provider: ProviderConfig{
			WebBaseURL:   "https://api-web.nhle.com/v1",
			StatsBaseURL: "https://api.nhle.com/stats/rest/en",
			Timeout:      30 * time.Second,
			RPS:          2,
			Burst:        2,
			FetchHands:   true,
		},
		Pipeline: PipelineConfig{MaxSkipped: 25},
	}
}

// Load layers defaults, the YAML file at path (or $HOCKEYMETRICS_CONFIG when
// path is empty) and the environment, then validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(PathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps HOCKEYMETRICS_PROVIDER__RPS to provider.rps.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
