// Package bench holds the parameter surface shared by the measurement
// engine, the process orchestrator and the report: execution targets,
// case parameters and cases.
package bench

import (
	"fmt"
	"strings"
)

// Target is the runtime configuration a measurement process runs under.
// Targets are ordered by declaration.
type Target int

const (
	TargetDefault Target = iota
	TargetGCOff
	TargetSingleProc
)

var targetNames = [...]string{
	TargetDefault:    "default",
	TargetGCOff:      "gc-off",
	TargetSingleProc: "single-proc",
}

// Targets returns every known target in rank order.
func Targets() []Target {
	return []Target{TargetDefault, TargetGCOff, TargetSingleProc}
}

func (t Target) String() string {
	if t < 0 || int(t) >= len(targetNames) {
		return fmt.Sprintf("target(%d)", int(t))
	}

	return targetNames[t]
}

// Env returns the environment variables applied to a measurement
// process for this target.
func (t Target) Env() []string {
	switch t {
	case TargetGCOff:
		return []string{"GOGC=off"}
	case TargetSingleProc:
		return []string{"GOMAXPROCS=1"}
	default:
		return nil
	}
}

// ParseTarget maps a target name to its Target.
func ParseTarget(s string) (Target, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range targetNames {
		if n == name {
			return Target(i), nil
		}
	}

	return 0, fmt.Errorf("unknown target %q (valid: %s)",
		s, strings.Join(targetNames[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Target) UnmarshalText(b []byte) error {
	parsed, err := ParseTarget(string(b))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}
