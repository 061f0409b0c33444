// Package config loads the bench run configuration: which contexts are
// measured, at which sizes, under which targets and how often.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/weiihann/simbench/bench"
	"github.com/weiihann/simbench/logging"
	"github.com/weiihann/simbench/measure"
)

// Config is the parameter surface of a bench run.
type Config struct {
	// EntityCounts and Ticks span the size matrix; every pair is measured.
	EntityCounts []int `yaml:"entity_counts"`
	Ticks        []int `yaml:"ticks"`

	Targets []bench.Target `yaml:"targets"`

	// Contexts restricts the run to these identities. Empty means all.
	Contexts []string `yaml:"contexts"`

	// Repetitions is the number of measurement processes per case.
	Repetitions int `yaml:"repetitions"`

	// Iterations and Warmup are passed to every measurement process.
	Iterations int `yaml:"iterations"`
	Warmup     int `yaml:"warmup"`

	Mode measure.Mode `yaml:"mode"`

	// Timeout bounds a single measurement process.
	Timeout time.Duration `yaml:"timeout"`

	DumpDir  string `yaml:"dump_dir"`
	LogLevel string `yaml:"log_level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		EntityCounts: []int{2048},
		Ticks:        []int{1024},
		Targets:      []bench.Target{bench.TargetDefault, bench.TargetGCOff},
		Repetitions:  3,
		Iterations:   5,
		Warmup:       1,
		Mode:         measure.ModeFull,
		Timeout:      10 * time.Minute,
		LogLevel:     "info",
	}
}

// Load returns the defaults, overlaid with path when it is non-empty,
// then with SIMBENCH_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}

		cfg = fileCfg
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file. Keys the file omits
// keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration describes a runnable bench.
func (c *Config) Validate() error {
	if len(c.EntityCounts) == 0 {
		return fmt.Errorf("entity_counts must not be empty")
	}

	for _, n := range c.EntityCounts {
		if n < 0 {
			return fmt.Errorf("entity_counts must be non-negative, got %d", n)
		}
	}

	if len(c.Ticks) == 0 {
		return fmt.Errorf("ticks must not be empty")
	}

	for _, n := range c.Ticks {
		if n < 0 {
			return fmt.Errorf("ticks must be non-negative, got %d", n)
		}
	}

	if len(c.Targets) == 0 {
		return fmt.Errorf("targets must not be empty")
	}

	if c.Repetitions < 1 {
		return fmt.Errorf("repetitions must be positive, got %d", c.Repetitions)
	}

	if c.Iterations < 1 {
		return fmt.Errorf("iterations must be positive, got %d", c.Iterations)
	}

	if c.Warmup < 0 {
		return fmt.Errorf("warmup must be non-negative, got %d", c.Warmup)
	}

	if _, err := measure.ParseMode(string(c.Mode)); err != nil {
		return err
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got %v", c.Timeout)
	}

	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.LogLevel)
	}

	return nil
}

// Sizes expands the entity and tick lists into every size pair, entity
// count major.
func (c *Config) Sizes() [][2]int {
	out := make([][2]int, 0, len(c.EntityCounts)*len(c.Ticks))
	for _, e := range c.EntityCounts {
		for _, t := range c.Ticks {
			out = append(out, [2]int{e, t})
		}
	}

	return out
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SIMBENCH_ENTITY_COUNTS"); v != "" {
		n, err := ParseInts(v)
		if err != nil {
			return fmt.Errorf("SIMBENCH_ENTITY_COUNTS: %w", err)
		}
		cfg.EntityCounts = n
	}
	if v := os.Getenv("SIMBENCH_TICKS"); v != "" {
		n, err := ParseInts(v)
		if err != nil {
			return fmt.Errorf("SIMBENCH_TICKS: %w", err)
		}
		cfg.Ticks = n
	}
	if v := os.Getenv("SIMBENCH_TARGETS"); v != "" {
		targets, err := ParseTargets(v)
		if err != nil {
			return fmt.Errorf("SIMBENCH_TARGETS: %w", err)
		}
		cfg.Targets = targets
	}
	if v := os.Getenv("SIMBENCH_CONTEXTS"); v != "" {
		cfg.Contexts = splitList(v)
	}
	if v := os.Getenv("SIMBENCH_REPETITIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SIMBENCH_REPETITIONS: %w", err)
		}
		cfg.Repetitions = n
	}
	if v := os.Getenv("SIMBENCH_MODE"); v != "" {
		cfg.Mode = measure.Mode(v)
	}
	if v := os.Getenv("SIMBENCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SIMBENCH_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("SIMBENCH_DUMP_DIR"); v != "" {
		cfg.DumpDir = v
	}
	if v := os.Getenv("SIMBENCH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return nil
}

// ParseInts parses a comma-separated list of integers.
func ParseInts(s string) ([]int, error) {
	parts := splitList(s)
	out := make([]int, 0, len(parts))

	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", p)
		}
		out = append(out, n)
	}

	return out, nil
}

// ParseTargets parses a comma-separated list of target names.
func ParseTargets(s string) ([]bench.Target, error) {
	parts := splitList(s)
	out := make([]bench.Target, 0, len(parts))

	for _, p := range parts {
		t, err := bench.ParseTarget(p)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, nil
}

func splitList(s string) []string {
	var out []string

	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
