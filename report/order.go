package report

import (
	"cmp"
	"slices"
	"strings"

	"github.com/weiihann/simbench/bench"
)

func compareCases(a, b bench.Case) int {
	if c := cmp.Compare(a.Target, b.Target); c != 0 {
		return c
	}

	return bench.CompareParams(a.Params, b.Params)
}

// ExecutionOrder returns cases sorted by target, then parameters
// component-wise. Cases that compare equal keep their input order.
func ExecutionOrder(cases []bench.Case) []bench.Case {
	out := slices.Clone(cases)
	slices.SortStableFunc(out, compareCases)

	return out
}

// SummaryOrder sorts results like ExecutionOrder and breaks ties by mean
// cost, missing statistics counting as zero.
func SummaryOrder(results []Result) []Result {
	out := slices.Clone(results)
	slices.SortStableFunc(out, func(a, b Result) int {
		if c := compareCases(a.Case, b.Case); c != 0 {
			return c
		}

		return cmp.Compare(a.mean(), b.mean())
	})

	return out
}

// LogicalGroupKey identifies the results that are compared with each
// other: same target and same value for every comparable parameter.
func LogicalGroupKey(c bench.Case) string {
	parts := []string{c.Target.String()}

	for _, p := range c.Params {
		if p.Comparable() {
			parts = append(parts, p.String())
		}
	}

	return strings.Join(parts, "/")
}

// Group is one logical group of results in summary order.
type Group struct {
	Key     string
	Results []Result
}

// GroupResults partitions results into logical groups. Groups are
// ordered like their first results, so entities=8 precedes entities=64;
// the key breaks ties.
func GroupResults(results []Result) []Group {
	index := make(map[string]int)

	var groups []Group

	for _, r := range SummaryOrder(results) {
		key := LogicalGroupKey(r.Case)

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}

		groups[i].Results = append(groups[i].Results, r)
	}

	slices.SortStableFunc(groups, func(a, b Group) int {
		if c := compareCases(a.Results[0].Case, b.Results[0].Case); c != 0 {
			return c
		}

		return cmp.Compare(a.Key, b.Key)
	})

	return groups
}
