// Package harness drives simulation contexts: it checks that every
// context produces the same output hash and launches the measurement
// processes whose output the report is built from.
package harness

// Measurement is the structured result line a measurement process
// writes to stdout.
type Measurement struct {
	Context     string  `json:"context"`
	EntityCount int     `json:"entity_count"`
	Ticks       int     `json:"ticks"`
	Target      string  `json:"target"`
	Mode        string  `json:"mode"`
	Iterations  int     `json:"iterations"`
	MeanNs      float64 `json:"mean_ns"`
	MinNs       int64   `json:"min_ns"`
	MaxNs       int64   `json:"max_ns"`
	AllocBytes  uint64  `json:"alloc_bytes"`
	Allocs      uint64  `json:"allocs"`
	Hash        string  `json:"hash,omitempty"`
}

// Execution is the captured output of one measurement process.
type Execution struct {
	StandardOutput []string     `json:"stdout"`
	Measurement    *Measurement `json:"measurement,omitempty"`
}
