package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/weiihann/simbench/bench"
	"github.com/weiihann/simbench/config"
	"github.com/weiihann/simbench/harness"
	"github.com/weiihann/simbench/logging"
	"github.com/weiihann/simbench/metrics"
	"github.com/weiihann/simbench/report"
)

type benchFlags struct {
	configPath  string
	outputJSON  bool
	metricsFile string
	binary      string
	skipCheck   bool
	entities    []int
	ticks       []int
	targets     []string
	contexts    []string
	repetitions int
}

func newBenchCmd(a *app) *cobra.Command {
	var flags benchFlags

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure every context and compare their cost",
		Long: `Verify the selected contexts agree, then measure every target, context
and size combination in separate processes of this executable and render
a comparison table per logical group.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadBenchConfig(cmd, flags)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
				a.logger = logging.NewLogger(cfg.LogLevel, a.stderr)
			}

			return runBench(cmd.Context(), a, cfg, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "",
		"Path to a YAML config file")
	f.BoolVar(&flags.outputJSON, "json", false,
		"Output results as JSON instead of markdown")
	f.StringVar(&flags.metricsFile, "metrics-file", "",
		"Write Prometheus metrics in text format to this file")
	f.StringVar(&flags.binary, "binary", "",
		"Executable to launch measurement processes from (default: this one)")
	f.BoolVar(&flags.skipCheck, "skip-check", false,
		"Skip the equivalence check before measuring")
	f.IntSliceVar(&flags.entities, "entities", nil,
		"Entity counts (overrides config)")
	f.IntSliceVar(&flags.ticks, "ticks", nil,
		"Tick counts (overrides config)")
	f.StringSliceVar(&flags.targets, "targets", nil,
		"Execution targets (overrides config)")
	f.StringSliceVar(&flags.contexts, "contexts", nil,
		"Contexts to measure (overrides config)")
	f.IntVar(&flags.repetitions, "repetitions", 0,
		"Measurement processes per case (overrides config)")

	return cmd
}

// loadBenchConfig resolves defaults, the config file, the environment
// and finally explicit flags, in that order.
func loadBenchConfig(cmd *cobra.Command, flags benchFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed

	if changed("entities") {
		cfg.EntityCounts = flags.entities
	}
	if changed("ticks") {
		cfg.Ticks = flags.ticks
	}
	if changed("targets") {
		targets := make([]bench.Target, 0, len(flags.targets))
		for _, s := range flags.targets {
			t, err := bench.ParseTarget(s)
			if err != nil {
				return nil, err
			}
			targets = append(targets, t)
		}
		cfg.Targets = targets
	}
	if changed("contexts") {
		cfg.Contexts = flags.contexts
	}
	if changed("repetitions") {
		cfg.Repetitions = flags.repetitions
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func runBench(ctx context.Context, a *app, cfg *config.Config, flags benchFlags) error {
	runID := uuid.NewString()
	logger := a.logger.With(slog.String("run_id", runID))

	factories, err := a.registry.Select(cfg.Contexts)
	if err != nil {
		return err
	}

	reg, m, err := newMetrics()
	if err != nil {
		return err
	}

	binPath, err := harness.ResolveBinary(flags.binary)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting benchmark",
		slog.Int("contexts", len(factories)),
		slog.String("entities", formatInts(cfg.EntityCounts)),
		slog.String("ticks", formatInts(cfg.Ticks)),
		slog.Int("targets", len(cfg.Targets)),
		slog.Int("repetitions", cfg.Repetitions),
		slog.String("mode", string(cfg.Mode)),
	)

	// Step 1: Prove the contexts agree before timing them.
	if !flags.skipCheck {
		sizes := make([]harness.Size, 0, len(cfg.EntityCounts)*len(cfg.Ticks))
		for _, s := range cfg.Sizes() {
			sizes = append(sizes, harness.Size{EntityCount: s[0], Ticks: s[1]})
		}

		driver := harness.NewDriver(
			harness.WithLogger(logger),
			harness.WithDumpDir(cfg.DumpDir),
			harness.WithMetrics(m),
		)

		if _, err := driver.CheckMatrix(factories, sizes); err != nil {
			return fmt.Errorf("equivalence check: %w", err)
		}
	}

	// Step 2: Build the case list in execution order.
	var cases []bench.Case

	for _, target := range cfg.Targets {
		for _, f := range factories {
			for _, s := range cfg.Sizes() {
				cases = append(cases, bench.NewCase(target, f.Name, s[0], s[1], string(cfg.Mode)))
			}
		}
	}

	// Step 3: Run every case's processes sequentially.
	results := make([]report.Result, 0, len(cases))

	for _, c := range report.ExecutionOrder(cases) {
		executions := runCase(ctx, logger, m, binPath, c, cfg)
		results = append(results, report.NewResult(c, executions))
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// Step 4: Generate report.
	summary := report.Summary{RunID: runID, Results: results}

	if flags.outputJSON {
		if err := report.GenerateJSON(a.stdout, summary); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}
	} else {
		if err := report.Generate(a.stdout, summary); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	if err := writeMetrics(flags.metricsFile, reg); err != nil {
		return err
	}

	logger.InfoContext(ctx, "benchmark complete", slog.Int("cases", len(cases)))

	return nil
}

// runCase launches the configured number of measurement processes for c.
// A failed process is logged and left out, so the case reports missing
// statistics instead of aborting the run.
func runCase(
	ctx context.Context,
	logger *slog.Logger,
	m *metrics.Collectors,
	binPath string,
	c bench.Case,
	cfg *config.Config,
) []harness.Execution {
	runner := harness.NewProcessRunner(c.Target.String(), harness.WrapCommand(c.Target, binPath), logger)

	executions := make([]harness.Execution, 0, cfg.Repetitions)

	for rep := 0; rep < cfg.Repetitions; rep++ {
		if ctx.Err() != nil {
			break
		}

		exe, err := runner.Run(ctx, harness.RunConfig{
			Args:    harness.MeasureArgs(c, cfg.Iterations, cfg.Warmup),
			Timeout: cfg.Timeout,
		})
		if err != nil {
			m.ObserveProcess(c.Target.String(), metrics.OutcomeFailed)
			logger.WarnContext(ctx, "measurement process failed",
				slog.String("case", c.String()),
				slog.Int("repetition", rep),
				slog.Any("error", err),
			)

			continue
		}

		m.ObserveProcess(c.Target.String(), metrics.OutcomeOK)
		executions = append(executions, *exe)
	}

	logger.InfoContext(ctx, "case measured",
		slog.String("case", c.String()),
		slog.Int("processes", len(executions)),
	)

	return executions
}
