package harness

import (
	"fmt"
	"strings"
)

// Phase names the lifecycle step a fault happened in.
type Phase string

const (
	PhaseSetup   Phase = "setup"
	PhaseStep    Phase = "step"
	PhaseCleanup Phase = "cleanup"
	PhaseDump    Phase = "dump"
)

// Size is one (entityCount, ticks) parameter pair.
type Size struct {
	EntityCount int
	Ticks       int
}

func (s Size) String() string {
	return fmt.Sprintf("entities=%d ticks=%d", s.EntityCount, s.Ticks)
}

// MismatchError reports a context whose hash differs from the reference.
type MismatchError struct {
	Identity  string
	Size      Size
	Got       uint32
	Want      uint32
	Reference string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s (%s): hash %08X, expected %08X from %s",
		e.Identity, e.Size, e.Got, e.Want, e.Reference)
}

// FaultError reports an unexpected error or panic inside a context.
type FaultError struct {
	Identity string
	Size     Size
	Phase    Phase
	Tick     int
	Err      error
	Stack    string
}

func (e *FaultError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s): %s", e.Identity, e.Size, e.Phase)
	if e.Phase == PhaseStep {
		fmt.Fprintf(&b, " tick %d", e.Tick)
	}

	fmt.Fprintf(&b, ": %v", e.Err)
	if e.Stack != "" {
		fmt.Fprintf(&b, "\n%s", e.Stack)
	}

	return b.String()
}

func (e *FaultError) Unwrap() error { return e.Err }

// AggregateError is the single failure an equivalence check returns. It
// lists every mismatch and fault together with the contexts that passed.
type AggregateError struct {
	Failures []error
	Passed   []string
}

func (e *AggregateError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "equivalence check failed: %d failure(s), %d passed\n",
		len(e.Failures), len(e.Passed))

	for _, f := range e.Failures {
		fmt.Fprintf(&b, "  FAIL %s\n", f)
	}

	for _, p := range e.Passed {
		fmt.Fprintf(&b, "  ok   %s\n", p)
	}

	return strings.TrimRight(b.String(), "\n")
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error { return e.Failures }
