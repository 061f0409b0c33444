package harness

import (
	"fmt"
	"os"
	"strconv"

	"github.com/weiihann/simbench/bench"
)

// CommandConfig holds the resolved command, extra arguments, and
// environment variables needed to run a measurement process.
type CommandConfig struct {
	Binary    string
	ExtraArgs []string
	Env       []string
}

// ResolveBinary returns the executable measurement processes are started
// from. An empty override resolves to the running executable.
func ResolveBinary(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	path, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}

	return path, nil
}

// WrapCommand returns the exec configuration that runs binPath's
// measure subcommand under target.
func WrapCommand(target bench.Target, binPath string) CommandConfig {
	return CommandConfig{
		Binary:    binPath,
		ExtraArgs: []string{"measure"},
		Env:       target.Env(),
	}
}

// MeasureArgs renders the measure subcommand flags for one case.
func MeasureArgs(c bench.Case, iterations, warmup int) []string {
	args := []string{
		"--context", c.Context(),
		"--target", c.Target.String(),
		"--iterations", strconv.Itoa(iterations),
		"--warmup", strconv.Itoa(warmup),
	}

	if p, ok := c.Param(bench.ParamEntityCount); ok {
		args = append(args, "--entities", p.Value())
	}

	if p, ok := c.Param(bench.ParamTicks); ok {
		args = append(args, "--ticks", p.Value())
	}

	if p, ok := c.Param(bench.ParamMode); ok {
		args = append(args, "--mode", p.Value())
	}

	return args
}
