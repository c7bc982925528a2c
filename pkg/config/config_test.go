package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/towerbench/pkg/config"
	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "eval.yaml", `
model: gpt-test
temperature: 0.7
puzzle_sizes: [3, 5]
window_size: "6"
agent_timeout: 90s
episode_timeout: 10m
concurrency: 4
agent:
  command: ./agent.sh
  args: ["--fast"]
  env:
    API_KEY: secret
store:
  backend: redis
  redis_url: redis://localhost:6379/0
  ttl: 24h
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-test", cfg.Model)
	assert.Equal(t, []int{3, 5}, cfg.PuzzleSizes)
	assert.Equal(t, 6, cfg.WindowSize, "weak typing coerces strings")
	assert.Equal(t, 90*time.Second, cfg.AgentTimeout)
	assert.Equal(t, 10*time.Minute, cfg.EpisodeTimeout)
	assert.Equal(t, "./agent.sh", cfg.Agent.Command)
	assert.Equal(t, "secret", cfg.Agent.Env["API_KEY"])
	assert.Equal(t, 24*time.Hour, cfg.Store.TTL)

	// Untouched fields keep their defaults.
	assert.Equal(t, "tower_of_hanoi", cfg.Puzzle)
	assert.Equal(t, 2.0, cfg.TurnLimitMultiplier)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "results", cfg.OutputDir)

	limits := cfg.Limits()
	assert.Equal(t, 6, limits.WindowSize)
	assert.Equal(t, 90*time.Second, limits.AgentTimeout)
}

func TestLoad_JSON(t *testing.T) {
	path := write(t, "eval.json", `{"model": "m", "puzzle_sizes": [2], "seed": 7}`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, cfg.PuzzleSizes)
	assert.Equal(t, int64(7), cfg.Seed)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = config.Load(write(t, "bad.yaml", "model: [unclosed"))
	assert.Error(t, err)

	_, err = config.Load(write(t, "typo.yaml", "modle: x\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	assert.ErrorContains(t, err, "modle")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr []string
	}{
		{"valid", func(c *config.Config) {}, nil},
		{"missing model", func(c *config.Config) { c.Model = "" }, []string{"model is required"}},
		{"temperature", func(c *config.Config) { c.Temperature = 2.5 }, []string{"temperature"}},
		{"sizes", func(c *config.Config) { c.PuzzleSizes = []int{3, 0} }, []string{"puzzle size must be positive"}},
		{"empty sizes", func(c *config.Config) { c.PuzzleSizes = nil }, []string{"puzzle_sizes"}},
		{"puzzle", func(c *config.Config) { c.Puzzle = "sudoku" }, []string{"unknown puzzle"}},
		{"backend", func(c *config.Config) { c.Store.Backend = "s3" }, []string{"unknown store backend"}},
		{"redis url", func(c *config.Config) { c.Store.Backend = config.BackendRedis }, []string{"redis_url"}},
		{"template dir", func(c *config.Config) { c.PromptTemplateDir = "/does/not/exist" }, []string{"prompt_template_dir"}},
		{"many", func(c *config.Config) {
			c.Concurrency = 0
			c.WindowSize = 0
		}, []string{"concurrency", "window_size"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Model = "m"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}
