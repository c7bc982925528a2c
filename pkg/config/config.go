// Package config loads evaluation settings from YAML or JSON files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/towerbench/pkg/adapters/process"
	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/puzzle"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Store selects where sessions are persisted.
type Store struct {
	Backend  string        `mapstructure:"backend" json:"backend"`
	Path     string        `mapstructure:"path" json:"path,omitempty"`
	RedisURL string        `mapstructure:"redis_url" json:"redis_url,omitempty"`
	Prefix   string        `mapstructure:"prefix" json:"prefix,omitempty"`
	TTL      time.Duration `mapstructure:"ttl" json:"ttl,omitempty"`
}

// Config is the full evaluation configuration.
type Config struct {
	Model       string  `mapstructure:"model" json:"model"`
	Temperature float64 `mapstructure:"temperature" json:"temperature"`

	Puzzle      string `mapstructure:"puzzle" json:"puzzle"`
	PuzzleSizes []int  `mapstructure:"puzzle_sizes" json:"puzzle_sizes"`

	TurnLimitMultiplier  float64 `mapstructure:"turn_limit_multiplier" json:"turn_limit_multiplier"`
	MoveLimitMultiplier  float64 `mapstructure:"move_limit_multiplier" json:"move_limit_multiplier"`
	WindowSize           int     `mapstructure:"window_size" json:"window_size"`
	RepeatedInvalidLimit int     `mapstructure:"repeated_invalid_limit" json:"repeated_invalid_limit"`
	StateRevisitLimit    int     `mapstructure:"state_revisit_limit" json:"state_revisit_limit"`

	Seed           int64         `mapstructure:"seed" json:"seed"`
	AgentTimeout   time.Duration `mapstructure:"agent_timeout" json:"agent_timeout"`
	EpisodeTimeout time.Duration `mapstructure:"episode_timeout" json:"episode_timeout"`
	Concurrency    int           `mapstructure:"concurrency" json:"concurrency"`

	PromptTemplateDir string `mapstructure:"prompt_template_dir" json:"prompt_template_dir,omitempty"`
	OutputDir         string `mapstructure:"output_dir" json:"output_dir"`

	Agent process.Config `mapstructure:"agent" json:"agent"`
	Store Store          `mapstructure:"store" json:"store"`
}

// Default returns the stock configuration. Model is left empty and must be set.
func Default() Config {
	limits := domain.DefaultLimits()
	return Config{
		Temperature:          0,
		Puzzle:               string(puzzle.Default),
		PuzzleSizes:          []int{8},
		TurnLimitMultiplier:  limits.TurnLimitMultiplier,
		MoveLimitMultiplier:  limits.MoveLimitMultiplier,
		WindowSize:           limits.WindowSize,
		RepeatedInvalidLimit: limits.RepeatedInvalidLimit,
		StateRevisitLimit:    limits.StateRevisitLimit,
		Seed:                 42,
		AgentTimeout:         60 * time.Second,
		Concurrency:          1,
		OutputDir:            "results",
		Store:                Store{Backend: BackendMemory},
	}
}

// Load reads a YAML or JSON file over Default(). Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}
	return FromMap(raw)
}

// FromMap decodes loosely typed settings over Default().
// Durations accept Go syntax ("90s"); numbers in strings are coerced.
func FromMap(raw map[string]any) (Config, error) {
	cfg := Default()
	if len(raw) == 0 {
		return cfg, nil
	}
	// A present list replaces the default instead of merging into it.
	if _, ok := raw["puzzle_sizes"]; ok {
		cfg.PuzzleSizes = nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}
	return cfg, nil
}

// Validate reports every problem at once, each wrapping domain.ErrInvalidConfiguration.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{domain.ErrInvalidConfiguration}, args...)...))
		}
	}

	check(c.Model != "", "model is required")
	check(c.Temperature >= 0 && c.Temperature <= 2, "temperature must be within [0, 2], got %v", c.Temperature)
	check(puzzle.Known(c.Puzzle), "unknown puzzle %q (known: %s)", c.Puzzle, strings.Join(puzzle.Names(), ", "))
	check(len(c.PuzzleSizes) > 0, "puzzle_sizes must not be empty")
	for _, size := range c.PuzzleSizes {
		check(size > 0, "puzzle size must be positive, got %d", size)
	}
	check(c.Concurrency > 0, "concurrency must be positive, got %d", c.Concurrency)
	check(c.OutputDir != "", "output_dir is required")

	if c.PromptTemplateDir != "" {
		info, err := os.Stat(c.PromptTemplateDir)
		check(err == nil && info.IsDir(), "prompt_template_dir %q is not a directory", c.PromptTemplateDir)
	}

	switch c.Store.Backend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		check(c.Store.RedisURL != "", "store.redis_url is required for the redis backend")
	default:
		check(false, "unknown store backend %q", c.Store.Backend)
	}
	check(c.Store.TTL >= 0, "store.ttl must not be negative, got %s", c.Store.TTL)

	if err := c.Limits().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Limits extracts the termination policy.
func (c Config) Limits() domain.Limits {
	return domain.Limits{
		TurnLimitMultiplier:  c.TurnLimitMultiplier,
		MoveLimitMultiplier:  c.MoveLimitMultiplier,
		RepeatedInvalidLimit: c.RepeatedInvalidLimit,
		StateRevisitLimit:    c.StateRevisitLimit,
		WindowSize:           c.WindowSize,
		AgentTimeout:         c.AgentTimeout,
		EpisodeTimeout:       c.EpisodeTimeout,
	}
}
