// Package main provides the CLI entry point for simbench, an equivalence
// oracle and comparative benchmark for tick-based simulation contexts.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/weiihann/simbench/harness"
	"github.com/weiihann/simbench/logging"
	"github.com/weiihann/simbench/metrics"
	"github.com/weiihann/simbench/simulation"
)

func main() {
	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the state shared by every subcommand.
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	logLevel string
	logger   *slog.Logger
	registry *harness.Registry
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		stdout:   stdout,
		stderr:   stderr,
		logger:   slog.New(slog.DiscardHandler),
		registry: harness.NewRegistry(),
	}

	root := &cobra.Command{
		Use:   "simbench",
		Short: "Equivalence oracle and benchmark for simulation contexts",
		Long: `Simbench drives several implementations of the same tick-based
simulation against a framebuffer, proves they render identical frames
tick by tick, and compares what each one costs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			a.logger = logging.NewLogger(a.logLevel, a.stderr)

			return simulation.Register(a.registry)
		},
	}

	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"Log level: info, debug, trace (default info)")

	root.AddCommand(
		newListCmd(a),
		newCheckCmd(a),
		newBenchCmd(a),
		newMeasureCmd(a),
	)

	return root
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered simulation contexts",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			for _, name := range a.registry.Names() {
				fmt.Fprintln(a.stdout, name)
			}

			return nil
		},
	}
}

// newMetrics returns collectors registered against a fresh registry the
// caller can later write out.
func newMetrics() (*prometheus.Registry, *metrics.Collectors, error) {
	reg := prometheus.NewRegistry()

	m, err := metrics.New(reg)
	if err != nil {
		return nil, nil, fmt.Errorf("register metrics: %w", err)
	}

	return reg, m, nil
}

func writeMetrics(path string, reg *prometheus.Registry) error {
	if path == "" {
		return nil
	}

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}

	return nil
}

func formatInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}

	return strings.Join(parts, ",")
}
