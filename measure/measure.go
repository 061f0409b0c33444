// Package measure times one context at one size inside the current
// process and reports the result, including the correctness marker the
// report cross-checks between processes.
package measure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"
	"time"

	"github.com/weiihann/simbench/framebuffer"
	"github.com/weiihann/simbench/harness"
	"github.com/weiihann/simbench/metrics"
	"github.com/weiihann/simbench/stablehash"
)

// Mode selects what a measured iteration covers.
type Mode string

const (
	// ModeFull times Setup, every Step with the buffer folded into the
	// run hash, and Cleanup, then emits the run hash.
	ModeFull Mode = "full"
	// ModeSteps times only the Steps; nothing is hashed.
	ModeSteps Mode = "steps"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFull, ModeSteps:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (valid: full, steps)", s)
	}
}

// ErrNoIterations is returned when a config asks for no measured work.
var ErrNoIterations = errors.New("iterations must be positive")

// ErrInvalidSize is returned for a negative entity or tick count.
var ErrInvalidSize = errors.New("entity and tick counts must be non-negative")

// Config describes one measured case.
type Config struct {
	EntityCount int
	Ticks       int
	Iterations  int
	Warmup      int
	Mode        Mode
	Target      string
	Width       int
	Height      int
}

// Engine runs measurements.
type Engine struct {
	logger  *slog.Logger
	metrics *metrics.Collectors
}

// NewEngine creates an Engine. Both arguments may be nil.
func NewEngine(logger *slog.Logger, m *metrics.Collectors) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Engine{logger: logger, metrics: m}
}

// Result is a measurement plus every distinct run hash seen, in first
// seen order.
type Result struct {
	Measurement harness.Measurement
	Hashes      []uint32
}

// iteration is the state scoped to one measured iteration. A fresh one
// is built for every iteration so nothing leaks between them.
type iteration struct {
	fb   *framebuffer.Framebuffer
	acc  *stablehash.Accumulator
	hash uint32
}

func newIteration(cfg Config) *iteration {
	it := &iteration{
		fb: framebuffer.New(cfg.Width, cfg.Height, 0),
	}

	if cfg.Mode == ModeFull {
		it.acc = stablehash.New(0)
	}

	return it
}

func (it *iteration) cleanup() {
	it.fb.Dispose()

	if it.acc != nil {
		it.hash = it.acc.Finalize()
	}
}

// sample is what one iteration cost.
type sample struct {
	elapsed    time.Duration
	allocBytes uint64
	allocs     uint64
}

// Run measures the context produced by f. Warmup iterations run first
// and are not timed.
func (e *Engine) Run(ctx context.Context, f harness.Factory, cfg Config) (*Result, error) {
	if cfg.Iterations <= 0 {
		return nil, ErrNoIterations
	}

	if cfg.EntityCount < 0 || cfg.Ticks < 0 {
		return nil, fmt.Errorf("%w: entities=%d ticks=%d", ErrInvalidSize, cfg.EntityCount, cfg.Ticks)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = harness.DefaultWidth, harness.DefaultHeight
	}

	if cfg.Mode == "" {
		cfg.Mode = ModeFull
	}

	c := f.New()
	if c == nil {
		return nil, fmt.Errorf("%w: %s", harness.ErrNilFactory, f.Name)
	}

	logger := e.logger.With(
		slog.String("context", c.String()),
		slog.String("mode", string(cfg.Mode)),
	)

	result := &Result{
		Measurement: harness.Measurement{
			Context:     c.String(),
			EntityCount: cfg.EntityCount,
			Ticks:       cfg.Ticks,
			Target:      cfg.Target,
			Mode:        string(cfg.Mode),
			Iterations:  cfg.Iterations,
		},
	}

	var (
		total      time.Duration
		allocBytes uint64
		allocs     uint64
		minNs      int64 = math.MaxInt64
		maxNs      int64
		lastHash   uint32
	)

	seen := make(map[uint32]struct{})

	for i := 0; i < cfg.Warmup+cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		it := newIteration(cfg)

		s, err := e.iterate(c, it, cfg)
		it.cleanup()

		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", i, err)
		}

		if cfg.Mode == ModeFull {
			if _, ok := seen[it.hash]; !ok {
				seen[it.hash] = struct{}{}
				result.Hashes = append(result.Hashes, it.hash)
			}

			lastHash = it.hash
		}

		if i < cfg.Warmup {
			continue
		}

		e.metrics.ObserveIteration(c.String(), string(cfg.Mode), s.elapsed.Seconds())

		total += s.elapsed
		allocBytes += s.allocBytes
		allocs += s.allocs
		minNs = min(minNs, s.elapsed.Nanoseconds())
		maxNs = max(maxNs, s.elapsed.Nanoseconds())
	}

	n := uint64(cfg.Iterations)

	m := &result.Measurement
	m.MeanNs = float64(total.Nanoseconds()) / float64(cfg.Iterations)
	m.MinNs = minNs
	m.MaxNs = maxNs
	m.AllocBytes = allocBytes / n
	m.Allocs = allocs / n

	if len(result.Hashes) > 0 {
		m.Hash = fmt.Sprintf("%08X", lastHash)
	}

	logger.Debug("measurement complete",
		slog.Float64("mean_ns", m.MeanNs),
		slog.Uint64("alloc_bytes", m.AllocBytes),
		slog.Int("distinct_hashes", len(result.Hashes)),
	)

	return result, nil
}

// iterate runs one iteration. Allocation counters are read outside the
// timed span since ReadMemStats stops the world.
func (e *Engine) iterate(c harness.Context, it *iteration, cfg Config) (sample, error) {
	var before, after runtime.MemStats

	if cfg.Mode == ModeSteps {
		if err := c.Setup(cfg.EntityCount, it.fb); err != nil {
			return sample{}, fmt.Errorf("setup: %w", err)
		}

		runtime.ReadMemStats(&before)
		start := time.Now()
		stepErr := steps(c, cfg.Ticks, nil)
		elapsed := time.Since(start)
		runtime.ReadMemStats(&after)

		if err := c.Cleanup(); err != nil && stepErr == nil {
			stepErr = fmt.Errorf("cleanup: %w", err)
		}

		return newSample(elapsed, &before, &after), stepErr
	}

	runtime.ReadMemStats(&before)
	start := time.Now()

	if err := c.Setup(cfg.EntityCount, it.fb); err != nil {
		return sample{}, fmt.Errorf("setup: %w", err)
	}

	stepErr := steps(c, cfg.Ticks, it)

	if err := c.Cleanup(); err != nil && stepErr == nil {
		stepErr = fmt.Errorf("cleanup: %w", err)
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&after)

	return newSample(elapsed, &before, &after), stepErr
}

func newSample(elapsed time.Duration, before, after *runtime.MemStats) sample {
	return sample{
		elapsed:    elapsed,
		allocBytes: after.TotalAlloc - before.TotalAlloc,
		allocs:     after.Mallocs - before.Mallocs,
	}
}

// steps runs ticks 0..ticks-1. When it is non-nil each tick's buffer is
// added to the run hash right after its Step.
func steps(c harness.Context, ticks int, it *iteration) error {
	for tick := 0; tick < ticks; tick++ {
		if err := c.Step(tick); err != nil {
			return fmt.Errorf("step %d: %w", tick, err)
		}

		if it != nil {
			it.acc.Add(it.fb.Bytes())
		}
	}

	return nil
}

// Emit writes the JSON result line followed by one marker line per
// distinct run hash.
func Emit(w io.Writer, r *Result) error {
	line, err := json.Marshal(r.Measurement)
	if err != nil {
		return fmt.Errorf("encode measurement: %w", err)
	}

	if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
		return err
	}

	for _, h := range r.Hashes {
		if _, err := fmt.Fprintln(w, stablehash.FormatMarker(h)); err != nil {
			return err
		}
	}

	return nil
}
