// Package metrics defines the Prometheus collectors simbench records
// equivalence checks and measurements into.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "simbench"

// Outcome label values.
const (
	OutcomePass     = "pass"
	OutcomeMismatch = "mismatch"
	OutcomeFault    = "fault"
	OutcomeOK       = "ok"
	OutcomeFailed   = "failed"
)

// Collectors groups every simbench collector. A nil *Collectors is valid
// and records nothing.
type Collectors struct {
	EquivalenceContexts *prometheus.CounterVec
	TickDuration        *prometheus.HistogramVec
	IterationDuration   *prometheus.HistogramVec
	BenchProcesses      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func New(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		EquivalenceContexts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "equivalence",
			Name:      "contexts_total",
			Help:      "Contexts run by the equivalence driver, by outcome",
		}, []string{"context", "outcome"}),

		TickDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "equivalence",
			Name:      "tick_duration_seconds",
			Help:      "Step plus hash duration of one tick during equivalence checks",
			Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"context"}),

		IterationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "measure",
			Name:      "iteration_duration_seconds",
			Help:      "Duration of one measured iteration",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"context", "mode"}),

		BenchProcesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bench",
			Name:      "processes_total",
			Help:      "Measurement processes launched, by outcome",
		}, []string{"target", "outcome"}),
	}

	if reg == nil {
		return c, nil
	}

	for _, col := range []prometheus.Collector{
		c.EquivalenceContexts,
		c.TickDuration,
		c.IterationDuration,
		c.BenchProcesses,
	} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	return c, nil
}

// ObserveContext counts one equivalence outcome for a context.
func (c *Collectors) ObserveContext(context, outcome string) {
	if c == nil {
		return
	}

	c.EquivalenceContexts.WithLabelValues(context, outcome).Inc()
}

// ObserveTick records the duration of one tick in seconds.
func (c *Collectors) ObserveTick(context string, seconds float64) {
	if c == nil {
		return
	}

	c.TickDuration.WithLabelValues(context).Observe(seconds)
}

// ObserveIteration records the duration of one measured iteration.
func (c *Collectors) ObserveIteration(context, mode string, seconds float64) {
	if c == nil {
		return
	}

	c.IterationDuration.WithLabelValues(context, mode).Observe(seconds)
}

// ObserveProcess counts one measurement process.
func (c *Collectors) ObserveProcess(target, outcome string) {
	if c == nil {
		return
	}

	c.BenchProcesses.WithLabelValues(target, outcome).Inc()
}
