package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/weiihann/simbench/harness"
)

type checkConfig struct {
	entities    []int
	ticks       []int
	contexts    []string
	dumpDir     string
	metricsFile string
}

func newCheckCmd(a *app) *cobra.Command {
	var cfg checkConfig

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify every context renders identical frames",
		Long: `Run every selected context over each entity count and tick count and
compare the stable hash of the framebuffer after every tick. All contexts
are run; every divergence and fault is reported together.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd.Context(), a, cfg)
		},
	}

	flags := cmd.Flags()
	flags.IntSliceVar(&cfg.entities, "entities", []int{1, 2, 8, 64},
		"Entity counts to check")
	flags.IntSliceVar(&cfg.ticks, "ticks", []int{1, 4, 64},
		"Tick counts to check")
	flags.StringSliceVar(&cfg.contexts, "contexts", nil,
		"Contexts to check (default: all registered)")
	flags.StringVar(&cfg.dumpDir, "dump-dir", "",
		"Write a sorted draw dump per context and size to this directory")
	flags.StringVar(&cfg.metricsFile, "metrics-file", "",
		"Write Prometheus metrics in text format to this file")

	return cmd
}

func runCheck(ctx context.Context, a *app, cfg checkConfig) error {
	factories, err := a.registry.Select(cfg.contexts)
	if err != nil {
		return err
	}

	reg, m, err := newMetrics()
	if err != nil {
		return err
	}

	sizes := make([]harness.Size, 0, len(cfg.entities)*len(cfg.ticks))
	for _, e := range cfg.entities {
		for _, t := range cfg.ticks {
			sizes = append(sizes, harness.Size{EntityCount: e, Ticks: t})
		}
	}

	a.logger.InfoContext(ctx, "starting equivalence check",
		slog.Int("contexts", len(factories)),
		slog.String("entities", formatInts(cfg.entities)),
		slog.String("ticks", formatInts(cfg.ticks)),
	)

	driver := harness.NewDriver(
		harness.WithLogger(a.logger),
		harness.WithDumpDir(cfg.dumpDir),
		harness.WithMetrics(m),
	)

	reports, checkErr := driver.CheckMatrix(factories, sizes)

	for _, r := range reports {
		printCheckReport(a, r)
	}

	if err := writeMetrics(cfg.metricsFile, reg); err != nil {
		return err
	}

	if checkErr != nil {
		return checkErr
	}

	a.logger.InfoContext(ctx, "all contexts agree", slog.Int("sizes", len(sizes)))

	return nil
}

func printCheckReport(a *app, r *harness.CheckReport) {
	if r.Reference == "" {
		fmt.Fprintf(a.stdout, "%s: no reference\n", r.Size)
	} else {
		fmt.Fprintf(a.stdout, "%s: reference %s %08X\n", r.Size, r.Reference, r.Hash)
	}

	for _, out := range r.Outcomes {
		status := "ok  "
		if !out.Passed() {
			status = "FAIL"
		}

		line := fmt.Sprintf("  %s %s", status, out.Identity)
		if len(out.Faults) == 0 {
			line += fmt.Sprintf(" %08X", out.Hash)
		}

		if out.DumpPath != "" {
			line += " dump=" + out.DumpPath
		}

		fmt.Fprintln(a.stdout, line)
	}
}
