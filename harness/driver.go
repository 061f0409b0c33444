package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/weiihann/simbench/framebuffer"
	"github.com/weiihann/simbench/logging"
	"github.com/weiihann/simbench/metrics"
	"github.com/weiihann/simbench/stablehash"
)

// Framebuffer dimensions every context is driven against unless
// overridden.
const (
	DefaultWidth  = 256
	DefaultHeight = 256
)

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) DriverOption {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithDumpDir enables diagnostic mode: draw logs are captured and one
// sorted dump file per context and size is written to dir.
func WithDumpDir(dir string) DriverOption {
	return func(d *Driver) {
		d.dumpDir = dir
	}
}

// WithFramebufferSize overrides the framebuffer dimensions. Non-positive
// values are ignored.
func WithFramebufferSize(width, height int) DriverOption {
	return func(d *Driver) {
		if width > 0 && height > 0 {
			d.width = width
			d.height = height
		}
	}
}

// WithMetrics records outcomes and tick durations into c.
func WithMetrics(c *metrics.Collectors) DriverOption {
	return func(d *Driver) {
		d.metrics = c
	}
}

// WithSeed sets the seed of every per-run hash accumulator.
func WithSeed(seed uint32) DriverOption {
	return func(d *Driver) {
		d.seed = seed
	}
}

// Driver runs contexts over identical tick sequences and checks that
// they all produce the same hash.
type Driver struct {
	logger  *slog.Logger
	metrics *metrics.Collectors
	dumpDir string
	width   int
	height  int
	seed    uint32
}

// NewDriver creates a Driver.
func NewDriver(opts ...DriverOption) *Driver {
	d := &Driver{
		logger: slog.New(slog.DiscardHandler),
		width:  DefaultWidth,
		height: DefaultHeight,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Outcome is the result of running one context at one size.
type Outcome struct {
	Identity string
	Size     Size
	Hash     uint32
	DumpPath string
	// Faults holds every execution fault; Mismatch is set when the run
	// completed but disagreed with the reference.
	Faults   []error
	Mismatch *MismatchError
}

// Passed reports whether the context ran cleanly and matched.
func (o Outcome) Passed() bool {
	return len(o.Faults) == 0 && o.Mismatch == nil
}

// CheckReport holds every outcome of one Check call.
type CheckReport struct {
	Size      Size
	Reference string
	Hash      uint32
	Outcomes  []Outcome
}

// Check runs every factory's context for ticks 0..ticks-1 against a
// fresh framebuffer and compares the finalized hashes. The first context
// that completes provides the reference hash. All contexts are run
// regardless of earlier failures; the returned error is an
// *AggregateError listing every mismatch and fault.
func (d *Driver) Check(factories []Factory, entityCount, ticks int) (*CheckReport, error) {
	size := Size{EntityCount: entityCount, Ticks: ticks}
	if entityCount < 0 || ticks < 0 {
		return nil, fmt.Errorf("invalid size %s", size)
	}

	report := &CheckReport{Size: size}
	haveRef := false

	var (
		failures []error
		passed   []string
	)

	for _, f := range factories {
		out := d.run(f, size)

		if len(out.Faults) == 0 {
			if !haveRef {
				haveRef = true
				report.Reference = out.Identity
				report.Hash = out.Hash
			} else if out.Hash != report.Hash {
				out.Mismatch = &MismatchError{
					Identity:  out.Identity,
					Size:      size,
					Got:       out.Hash,
					Want:      report.Hash,
					Reference: report.Reference,
				}
			}
		}

		d.observe(out)
		report.Outcomes = append(report.Outcomes, out)

		if out.Passed() {
			passed = append(passed, out.Identity)

			continue
		}

		failures = append(failures, out.Faults...)
		if out.Mismatch != nil {
			failures = append(failures, out.Mismatch)
		}
	}

	if len(failures) > 0 {
		return report, &AggregateError{Failures: failures, Passed: passed}
	}

	return report, nil
}

// CheckMatrix runs Check for every size and joins every failure across
// the whole matrix into one *AggregateError.
func (d *Driver) CheckMatrix(factories []Factory, sizes []Size) ([]*CheckReport, error) {
	reports := make([]*CheckReport, 0, len(sizes))

	var (
		failures []error
		passed   []string
	)

	for _, size := range sizes {
		report, err := d.Check(factories, size.EntityCount, size.Ticks)
		if report == nil {
			failures = append(failures, err)

			continue
		}

		reports = append(reports, report)

		for _, out := range report.Outcomes {
			if out.Passed() {
				passed = append(passed, fmt.Sprintf("%s (%s)", out.Identity, size))
			}
		}

		var agg *AggregateError
		if errors.As(err, &agg) {
			failures = append(failures, agg.Failures...)
		}
	}

	if len(failures) > 0 {
		return reports, &AggregateError{Failures: failures, Passed: passed}
	}

	return reports, nil
}

func (d *Driver) run(f Factory, size Size) (out Outcome) {
	out = Outcome{Identity: f.Name, Size: size}

	var c Context
	if err := protect(func() error {
		c = f.New()
		if c == nil {
			return ErrNilFactory
		}

		return nil
	}); err != nil {
		out.Faults = append(out.Faults, newFault(f.Name, size, PhaseSetup, 0, err))

		return out
	}

	out.Identity = c.String()

	capacity := 0
	if d.dumpDir != "" {
		capacity = size.EntityCount * size.Ticks
	}

	fb := framebuffer.New(d.width, d.height, capacity)
	defer fb.Dispose()

	out.Hash, out.Faults = d.drive(c, out.Identity, fb, size)

	if d.dumpDir != "" && len(out.Faults) == 0 {
		path, err := writeDump(d.dumpDir, out.Identity, size, fb.Draws())
		if err != nil {
			out.Faults = append(out.Faults, newFault(out.Identity, size, PhaseDump, 0, err))
		}

		out.DumpPath = path
	}

	return out
}

// drive performs Setup, every Step with its hash, then Cleanup. Cleanup
// runs whenever Setup succeeded, even after a failed Step.
func (d *Driver) drive(c Context, id string, fb *framebuffer.Framebuffer, size Size) (uint32, []error) {
	if err := protect(func() error {
		return c.Setup(size.EntityCount, fb)
	}); err != nil {
		return 0, []error{newFault(id, size, PhaseSetup, 0, err)}
	}

	var faults []error

	acc := stablehash.New(d.seed)
	for tick := 0; tick < size.Ticks; tick++ {
		start := time.Now()

		err := protect(func() error {
			if err := c.Step(tick); err != nil {
				return err
			}

			acc.Add(fb.Bytes())

			return nil
		})
		if err != nil {
			faults = append(faults, newFault(id, size, PhaseStep, tick, err))

			break
		}

		elapsed := time.Since(start)
		d.metrics.ObserveTick(id, elapsed.Seconds())
		d.logger.Log(context.Background(), logging.LevelTrace, "tick",
			slog.String("context", id),
			slog.Int("tick", tick),
			slog.Duration("elapsed", elapsed),
		)
	}

	if err := protect(c.Cleanup); err != nil {
		faults = append(faults, newFault(id, size, PhaseCleanup, 0, err))
	}

	if len(faults) > 0 {
		return 0, faults
	}

	return acc.Finalize(), nil
}

func (d *Driver) observe(out Outcome) {
	logger := d.logger.With(
		slog.String("context", out.Identity),
		slog.Int("entities", out.Size.EntityCount),
		slog.Int("ticks", out.Size.Ticks),
	)

	switch {
	case len(out.Faults) > 0:
		d.metrics.ObserveContext(out.Identity, metrics.OutcomeFault)
		logger.Error("context faulted", slog.Any("error", errors.Join(out.Faults...)))

	case out.Mismatch != nil:
		d.metrics.ObserveContext(out.Identity, metrics.OutcomeMismatch)
		logger.Warn("hash mismatch",
			slog.String("hash", fmt.Sprintf("%08X", out.Hash)),
			slog.String("want", fmt.Sprintf("%08X", out.Mismatch.Want)),
			slog.String("reference", out.Mismatch.Reference),
		)

	default:
		d.metrics.ObserveContext(out.Identity, metrics.OutcomePass)
		logger.Debug("context passed", slog.String("hash", fmt.Sprintf("%08X", out.Hash)))
	}
}

// panicError carries a recovered panic and the stack it happened on.
type panicError struct {
	value any
	stack string
}

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.value) }

func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: string(debug.Stack())}
		}
	}()

	return fn()
}

func newFault(id string, size Size, phase Phase, tick int, err error) *FaultError {
	fault := &FaultError{
		Identity: id,
		Size:     size,
		Phase:    phase,
		Tick:     tick,
		Err:      err,
	}

	var pe *panicError
	if errors.As(err, &pe) {
		fault.Stack = pe.stack
	}

	return fault
}
