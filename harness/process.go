package harness

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrNoMeasurement is returned when a measurement process exits cleanly
// without printing a result line.
var ErrNoMeasurement = errors.New("no measurement line in output")

// RunConfig holds parameters for a single measurement process.
type RunConfig struct {
	Args    []string
	Timeout time.Duration
}

// ProcessRunner launches and manages measurement processes.
type ProcessRunner struct {
	Name       string
	BinaryPath string
	ExtraArgs  []string
	Env        []string
	Logger     *slog.Logger
}

// NewProcessRunner creates a ProcessRunner. Env is appended to the
// inherited environment of every process it starts.
func NewProcessRunner(
	name string,
	cmdCfg CommandConfig,
	logger *slog.Logger,
) *ProcessRunner {
	return &ProcessRunner{
		Name:       name,
		BinaryPath: cmdCfg.Binary,
		ExtraArgs:  cmdCfg.ExtraArgs,
		Env:        cmdCfg.Env,
		Logger:     logger.With(slog.String("target", name)),
	}
}

// Run executes one measurement process and returns its captured output.
func (r *ProcessRunner) Run(ctx context.Context, cfg RunConfig) (*Execution, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(r.ExtraArgs)+len(cfg.Args))
	args = append(args, r.ExtraArgs...)
	args = append(args, cfg.Args...)

	cmd := exec.CommandContext(ctx, r.BinaryPath, args...)

	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.Logger.Debug("starting measurement process",
		slog.String("binary", r.BinaryPath),
		slog.String("args", strings.Join(args, " ")),
	)

	wallStart := time.Now()

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf(
			"measurement %s failed: %w\nstderr: %s",
			r.Name, err, stderr.String(),
		)
	}

	r.Logger.Debug("measurement process finished",
		slog.Duration("wall_time", time.Since(wallStart)),
	)

	exe, err := parseExecution(&stdout)
	if err != nil {
		return nil, fmt.Errorf(
			"parse %s output: %w\nstdout: %s",
			r.Name, err, stdout.String(),
		)
	}

	return exe, nil
}

// parseExecution keeps every stdout line for marker scraping and decodes
// the last JSON object line as the measurement.
func parseExecution(r io.Reader) (*Execution, error) {
	var exe Execution

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := sc.Text()
		exe.StandardOutput = append(exe.StandardOutput, line)

		if !strings.HasPrefix(strings.TrimSpace(line), "{") {
			continue
		}

		var m Measurement
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}

		exe.Measurement = &m
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}

	if exe.Measurement == nil {
		return nil, ErrNoMeasurement
	}

	return &exe, nil
}
