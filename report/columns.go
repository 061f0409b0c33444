package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/weiihann/simbench/stablehash"
)

// Placeholder is rendered for any cell whose input is missing.
const Placeholder = "?"

// Baseline marks the cheapest result of a logical group.
const Baseline = "baseline"

var printer = message.NewPrinter(language.English)

// Ratios renders the ratio column for every result of g, in order. Each
// cell is the percentage delta of the result's mean cost from the
// group minimum. Results without statistics, and zero means, are left
// out of the minimum.
func Ratios(g Group) []string {
	minIdx := -1
	for i, r := range g.Results {
		m := r.mean()
		if m == 0 {
			continue
		}

		if minIdx < 0 || m < g.Results[minIdx].mean() {
			minIdx = i
		}
	}

	cells := make([]string, len(g.Results))
	for i, r := range g.Results {
		cells[i] = ratioCell(r, i, minIdx, g)
	}

	return cells
}

func ratioCell(r Result, i, minIdx int, g Group) string {
	if r.Stats == nil || minIdx < 0 {
		return Placeholder
	}

	if i == minIdx {
		return Baseline
	}

	ratio := r.mean() / g.Results[minIdx].mean()
	if ratio >= 1 {
		return printer.Sprintf("+%.1f%%", (ratio-1)*100)
	}

	return printer.Sprintf("-%.1f%%", (1-ratio)*100)
}

// HashStatus is what the measurement processes of one result reported
// through their marker lines.
type HashStatus struct {
	Hashes     []string
	Consistent bool
}

// First returns the first reported hash, or "" when none was reported.
func (s HashStatus) First() string {
	if len(s.Hashes) == 0 {
		return ""
	}

	return s.Hashes[0]
}

// Hashes scrapes every marker line from the captured output of r's
// measurement processes.
func Hashes(r Result) HashStatus {
	status := HashStatus{Consistent: true}

	for _, exe := range r.Executions {
		for _, line := range exe.StandardOutput {
			token, ok := stablehash.ParseMarker(line)
			if !ok {
				continue
			}

			if len(status.Hashes) > 0 && token != status.Hashes[0] {
				status.Consistent = false
			}

			status.Hashes = append(status.Hashes, token)
		}
	}

	return status
}

// HashCell renders the hash column: the hash when every process agreed,
// "!" and the first hash when they did not, and the placeholder when no
// process emitted a marker.
func HashCell(r Result) string {
	status := Hashes(r)

	switch {
	case len(status.Hashes) == 0:
		return Placeholder
	case !status.Consistent:
		return "!" + status.First()
	default:
		return status.First()
	}
}
