// Package report ranks measurement results within logical groups and
// renders them as markdown or JSON comparison tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/weiihann/simbench/bench"
	"github.com/weiihann/simbench/harness"
)

// Statistics summarises the timing and allocations of one result.
type Statistics struct {
	MeanNs float64 `json:"mean_ns"`
	// AllocBytes and Allocs are per measured iteration.
	AllocBytes uint64 `json:"alloc_bytes"`
	Allocs     uint64 `json:"allocs"`
	N          int    `json:"n"`
}

// Result is one case and everything its measurement processes reported.
type Result struct {
	Case       bench.Case
	Stats      *Statistics
	Executions []harness.Execution
}

func (r Result) mean() float64 {
	if r.Stats == nil {
		return 0
	}

	return r.Stats.MeanNs
}

// NewResult folds the executions of one case into a Result. Every
// statistic is the mean of the per-process values; Stats is nil when no
// process produced a measurement.
func NewResult(c bench.Case, executions []harness.Execution) Result {
	r := Result{Case: c, Executions: executions}

	var (
		sum        float64
		allocBytes uint64
		allocs     uint64
	)

	n := 0
	for _, exe := range executions {
		if exe.Measurement == nil {
			continue
		}

		sum += exe.Measurement.MeanNs
		allocBytes += exe.Measurement.AllocBytes
		allocs += exe.Measurement.Allocs
		n++
	}

	if n > 0 {
		r.Stats = &Statistics{
			MeanNs:     sum / float64(n),
			AllocBytes: allocBytes / uint64(n),
			Allocs:     allocs / uint64(n),
			N:          n,
		}
	}

	return r
}

// Summary is everything one bench run produced.
type Summary struct {
	RunID   string
	Results []Result
}

// Generate writes a markdown comparison table per logical group.
func Generate(w io.Writer, summary Summary) error {
	if len(summary.Results) == 0 {
		return fmt.Errorf("no results to report")
	}

	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)

	if summary.RunID != "" {
		fmt.Fprintf(w, "Run: `%s`\n\n", summary.RunID)
	}

	for _, g := range GroupResults(summary.Results) {
		writeGroup(w, g)
	}

	return nil
}

func writeGroup(w io.Writer, g Group) {
	fmt.Fprintf(w, "### %s\n\n", g.Key)

	// Hash check across contexts.
	switch checkHashes(g) {
	case hashesMatch:
		fmt.Fprintln(w, "Hashes: **all match**")
	case hashesMissing:
		fmt.Fprintln(w, "Hashes: **unavailable**")
	default:
		fmt.Fprintln(w, "Hashes: **MISMATCH**")

		for _, r := range g.Results {
			fmt.Fprintf(w, "  - %s: %s\n", r.Case.Context(), HashCell(r))
		}
	}

	fmt.Fprintln(w)

	names := paramNames(g.Results[0].Case)

	header := append([]string{"Context", "Target"}, names...)
	header = append(header, "Mean", "Allocated", "Ratio", "Hash")

	fmt.Fprintf(w, "| %s |\n", strings.Join(header, " | "))
	fmt.Fprintf(w, "|%s\n", strings.Repeat("---|", len(header)))

	ratios := Ratios(g)
	for i, r := range g.Results {
		row := []string{r.Case.Context(), r.Case.Target.String()}

		for _, name := range names {
			p, _ := r.Case.Param(name)
			row = append(row, p.Value())
		}

		row = append(row, formatMean(r.Stats), formatAllocated(r.Stats), ratios[i], HashCell(r))

		fmt.Fprintf(w, "| %s |\n", strings.Join(row, " | "))
	}

	fmt.Fprintln(w)
}

type hashCheck int

const (
	hashesMatch hashCheck = iota
	hashesMismatch
	hashesMissing
)

// checkHashes compares the reported hashes of every context in g. Any
// inconsistent result, or two contexts disagreeing, is a mismatch.
func checkHashes(g Group) hashCheck {
	var first string

	seen := false
	for _, r := range g.Results {
		status := Hashes(r)
		if len(status.Hashes) == 0 {
			continue
		}

		if !status.Consistent {
			return hashesMismatch
		}

		if seen && status.First() != first {
			return hashesMismatch
		}

		first = status.First()
		seen = true
	}

	if !seen {
		return hashesMissing
	}

	return hashesMatch
}

// paramNames lists the parameters shown as columns: everything except
// the context identity, which has its own column.
func paramNames(c bench.Case) []string {
	names := make([]string, 0, len(c.Params))
	for _, p := range c.Params {
		if p.Name != bench.ParamContext {
			names = append(names, p.Name)
		}
	}

	return names
}

type jsonResult struct {
	Context        string            `json:"context"`
	Target         string            `json:"target"`
	Params         map[string]string `json:"params"`
	Stats          *Statistics       `json:"stats,omitempty"`
	Ratio          string            `json:"ratio"`
	Hash           string            `json:"hash"`
	Hashes         []string          `json:"hashes,omitempty"`
	HashConsistent bool              `json:"hash_consistent"`
}

type jsonGroup struct {
	Key     string       `json:"key"`
	Hashes  string       `json:"hashes"`
	Results []jsonResult `json:"results"`
}

type jsonSummary struct {
	RunID  string      `json:"run_id,omitempty"`
	Groups []jsonGroup `json:"groups"`
}

// GenerateJSON writes the grouped results as JSON to w.
func GenerateJSON(w io.Writer, summary Summary) error {
	out := jsonSummary{RunID: summary.RunID, Groups: []jsonGroup{}}

	for _, g := range GroupResults(summary.Results) {
		jg := jsonGroup{Key: g.Key, Hashes: checkHashes(g).String()}

		ratios := Ratios(g)
		for i, r := range g.Results {
			status := Hashes(r)

			params := make(map[string]string, len(r.Case.Params))
			for _, p := range r.Case.Params {
				if p.Name != bench.ParamContext {
					params[p.Name] = p.Value()
				}
			}

			jg.Results = append(jg.Results, jsonResult{
				Context:        r.Case.Context(),
				Target:         r.Case.Target.String(),
				Params:         params,
				Stats:          r.Stats,
				Ratio:          ratios[i],
				Hash:           HashCell(r),
				Hashes:         status.Hashes,
				HashConsistent: status.Consistent,
			})
		}

		out.Groups = append(out.Groups, jg)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

func (h hashCheck) String() string {
	switch h {
	case hashesMatch:
		return "match"
	case hashesMismatch:
		return "mismatch"
	default:
		return "unavailable"
	}
}

func formatMean(s *Statistics) string {
	if s == nil {
		return Placeholder
	}

	return formatNs(s.MeanNs)
}

func formatAllocated(s *Statistics) string {
	if s == nil {
		return Placeholder
	}

	return formatBytes(s.AllocBytes)
}

func formatBytes(b uint64) string {
	if b == 0 {
		return "-"
	}

	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(b)
	unit := 0

	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	formatted := fmt.Sprintf("%.1f", size)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	return formatted + " " + units[unit]
}

func formatNs(ns float64) string {
	switch {
	case ns < float64(time.Microsecond):
		return fmt.Sprintf("%.1f ns", ns)
	case ns < float64(time.Millisecond):
		return fmt.Sprintf("%.2f µs", ns/float64(time.Microsecond))
	case ns < float64(time.Second):
		return fmt.Sprintf("%.2f ms", ns/float64(time.Millisecond))
	default:
		return fmt.Sprintf("%.2f s", ns/float64(time.Second))
	}
}
