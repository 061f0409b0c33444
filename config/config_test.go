package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/simbench/bench"
	"github.com/weiihann/simbench/measure"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if len(cfg.EntityCounts) != 1 || cfg.EntityCounts[0] != 2048 {
		t.Errorf("expected entity_counts [2048], got %v", cfg.EntityCounts)
	}
	if len(cfg.Ticks) != 1 || cfg.Ticks[0] != 1024 {
		t.Errorf("expected ticks [1024], got %v", cfg.Ticks)
	}
	if cfg.Repetitions != 3 {
		t.Errorf("expected repetitions 3, got %d", cfg.Repetitions)
	}
	if cfg.Mode != measure.ModeFull {
		t.Errorf("expected mode full, got %q", cfg.Mode)
	}
	if cfg.Timeout != 10*time.Minute {
		t.Errorf("expected timeout 10m, got %v", cfg.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simbench.yaml")
	content := `
entity_counts: [8, 64]
ticks: [16]
targets: [default, single-proc]
contexts: [AoS, SoA]
repetitions: 2
mode: steps
timeout: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []int{8, 64}, cfg.EntityCounts)
	assert.Equal(t, []int{16}, cfg.Ticks)
	assert.Equal(t, []bench.Target{bench.TargetDefault, bench.TargetSingleProc}, cfg.Targets)
	assert.Equal(t, []string{"AoS", "SoA"}, cfg.Contexts)
	assert.Equal(t, 2, cfg.Repetitions)
	assert.Equal(t, measure.ModeSteps, cfg.Mode)
	assert.Equal(t, 30*time.Second, cfg.Timeout)

	// Omitted keys keep their defaults.
	assert.Equal(t, 5, cfg.Iterations)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromFileUnknownTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("targets: [warp-speed]\n"), 0600))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SIMBENCH_ENTITY_COUNTS", "1, 2 ,8")
	t.Setenv("SIMBENCH_TICKS", "4")
	t.Setenv("SIMBENCH_TARGETS", "gc-off")
	t.Setenv("SIMBENCH_CONTEXTS", "Chunked")
	t.Setenv("SIMBENCH_REPETITIONS", "7")
	t.Setenv("SIMBENCH_MODE", "steps")
	t.Setenv("SIMBENCH_TIMEOUT", "1m")
	t.Setenv("SIMBENCH_DUMP_DIR", "/tmp/dumps")
	t.Setenv("SIMBENCH_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 8}, cfg.EntityCounts)
	assert.Equal(t, []int{4}, cfg.Ticks)
	assert.Equal(t, []bench.Target{bench.TargetGCOff}, cfg.Targets)
	assert.Equal(t, []string{"Chunked"}, cfg.Contexts)
	assert.Equal(t, 7, cfg.Repetitions)
	assert.Equal(t, measure.ModeSteps, cfg.Mode)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.Equal(t, "/tmp/dumps", cfg.DumpDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadEnvOverridesInvalid(t *testing.T) {
	t.Setenv("SIMBENCH_TICKS", "four")

	_, err := Load("")
	assert.ErrorContains(t, err, "SIMBENCH_TICKS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty entity counts", func(c *Config) { c.EntityCounts = nil }},
		{"negative entity count", func(c *Config) { c.EntityCounts = []int{-1} }},
		{"empty ticks", func(c *Config) { c.Ticks = nil }},
		{"negative ticks", func(c *Config) { c.Ticks = []int{-4} }},
		{"no targets", func(c *Config) { c.Targets = nil }},
		{"zero repetitions", func(c *Config) { c.Repetitions = 0 }},
		{"zero iterations", func(c *Config) { c.Iterations = 0 }},
		{"negative warmup", func(c *Config) { c.Warmup = -1 }},
		{"unknown mode", func(c *Config) { c.Mode = "warm" }},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}

func TestValidateAcceptsZeroSizes(t *testing.T) {
	cfg := Default()
	cfg.EntityCounts = []int{0}
	cfg.Ticks = []int{0}

	assert.NoError(t, cfg.Validate())
}

func TestSizes(t *testing.T) {
	cfg := Default()
	cfg.EntityCounts = []int{1, 8}
	cfg.Ticks = []int{4, 64}

	assert.Equal(t, [][2]int{{1, 4}, {1, 64}, {8, 4}, {8, 64}}, cfg.Sizes())
}

func TestParseInts(t *testing.T) {
	got, err := ParseInts("1,,2")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)

	_, err = ParseInts("1,x")
	assert.Error(t, err)
}
