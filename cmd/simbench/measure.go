package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weiihann/simbench/bench"
	"github.com/weiihann/simbench/measure"
)

func newMeasureCmd(a *app) *cobra.Command {
	var (
		contextName string
		entities    int
		ticks       int
		target      string
		mode        string
		iterations  int
		warmup      int
	)

	cmd := &cobra.Command{
		Use:    "measure",
		Short:  "Measure one context in this process",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if entities < 0 || ticks < 0 {
				return fmt.Errorf("--entities and --ticks must be non-negative, got %d and %d", entities, ticks)
			}

			f, err := a.registry.Lookup(contextName)
			if err != nil {
				return err
			}

			t, err := bench.ParseTarget(target)
			if err != nil {
				return err
			}

			m, err := measure.ParseMode(mode)
			if err != nil {
				return err
			}

			res, err := measure.NewEngine(a.logger, nil).Run(cmd.Context(), f, measure.Config{
				EntityCount: entities,
				Ticks:       ticks,
				Iterations:  iterations,
				Warmup:      warmup,
				Mode:        m,
				Target:      t.String(),
			})
			if err != nil {
				return fmt.Errorf("measure %s: %w", contextName, err)
			}

			return measure.Emit(a.stdout, res)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&contextName, "context", "", "Context to measure")
	flags.IntVar(&entities, "entities", 2048, "Entity count")
	flags.IntVar(&ticks, "ticks", 1024, "Tick count")
	flags.StringVar(&target, "target", bench.TargetDefault.String(), "Execution target label")
	flags.StringVar(&mode, "mode", string(measure.ModeFull), "Measured span: full or steps")
	flags.IntVar(&iterations, "iterations", 5, "Timed iterations")
	flags.IntVar(&warmup, "warmup", 1, "Untimed warmup iterations")

	_ = cmd.MarkFlagRequired("context")

	return cmd
}
