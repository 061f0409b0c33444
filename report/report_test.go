package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/simbench/bench"
	"github.com/weiihann/simbench/harness"
)

func execAlloc(meanNs float64, allocBytes, allocs uint64) harness.Execution {
	exe := exec(meanNs, "")
	exe.Measurement.AllocBytes = allocBytes
	exe.Measurement.Allocs = allocs

	return exe
}

func exec(meanNs float64, hash string) harness.Execution {
	exe := harness.Execution{
		Measurement: &harness.Measurement{MeanNs: meanNs, Hash: hash},
	}

	if hash != "" {
		exe.StandardOutput = []string{`{"mean_ns":1}`, "// Hash: " + hash}
	}

	return exe
}

func result(target bench.Target, context string, entities, ticks int, execs ...harness.Execution) Result {
	return NewResult(bench.NewCase(target, context, entities, ticks, "full"), execs)
}

func TestRatiosProperty(t *testing.T) {
	g := Group{Results: []Result{
		result(bench.TargetDefault, "A", 8, 64, exec(10, "")),
		result(bench.TargetDefault, "B", 8, 64, exec(20, "")),
		result(bench.TargetDefault, "C", 8, 64, exec(15, "")),
	}}

	assert.Equal(t, []string{Baseline, "+100.0%", "+50.0%"}, Ratios(g))
}

func TestRatiosMissingStats(t *testing.T) {
	g := Group{Results: []Result{
		result(bench.TargetDefault, "A", 8, 64),
		result(bench.TargetDefault, "B", 8, 64, exec(40, "")),
		result(bench.TargetDefault, "C", 8, 64, exec(0, "")),
	}}

	assert.Equal(t, []string{Placeholder, Baseline, "-100.0%"}, Ratios(g))
}

func TestRatiosNoStatsAtAll(t *testing.T) {
	g := Group{Results: []Result{
		result(bench.TargetDefault, "A", 8, 64),
		result(bench.TargetDefault, "B", 8, 64, exec(0, "")),
	}}

	assert.Equal(t, []string{Placeholder, Placeholder}, Ratios(g))
}

func TestRatiosDigitGrouping(t *testing.T) {
	g := Group{Results: []Result{
		result(bench.TargetDefault, "A", 8, 64, exec(1, "")),
		result(bench.TargetDefault, "B", 8, 64, exec(20, "")),
	}}

	assert.Equal(t, "+1,900.0%", Ratios(g)[1])
}

func TestHashCellInconsistent(t *testing.T) {
	r := result(bench.TargetDefault, "A", 8, 64,
		exec(10, "0000ABCD"),
		exec(11, "0000ABCE"),
	)

	status := Hashes(r)
	assert.False(t, status.Consistent)
	assert.Equal(t, []string{"0000ABCD", "0000ABCE"}, status.Hashes)
	assert.Equal(t, "!0000ABCD", HashCell(r))
}

func TestHashCellConsistentAndMissing(t *testing.T) {
	same := result(bench.TargetDefault, "A", 8, 64,
		exec(10, "0000ABCD"),
		exec(11, "0000ABCD"),
	)
	assert.Equal(t, "0000ABCD", HashCell(same))

	none := result(bench.TargetDefault, "A", 8, 64, exec(10, ""))
	assert.Equal(t, Placeholder, HashCell(none))
}

func TestNewResultAveragesProcesses(t *testing.T) {
	r := result(bench.TargetDefault, "A", 8, 64,
		exec(10, ""),
		harness.Execution{},
		exec(30, ""),
	)

	require.NotNil(t, r.Stats)
	assert.InDelta(t, 20, r.Stats.MeanNs, 1e-9)
	assert.Equal(t, 2, r.Stats.N)
}

func TestNewResultAveragesAllocations(t *testing.T) {
	r := result(bench.TargetDefault, "A", 8, 64,
		execAlloc(10, 1000, 10),
		execAlloc(10, 3000, 30),
	)

	require.NotNil(t, r.Stats)
	assert.Equal(t, uint64(2000), r.Stats.AllocBytes)
	assert.Equal(t, uint64(20), r.Stats.Allocs)
}

func TestGenerateAllocatedColumn(t *testing.T) {
	summary := Summary{Results: []Result{
		result(bench.TargetDefault, "AoS", 8, 64, execAlloc(100, 0, 0)),
		result(bench.TargetDefault, "Pointers", 8, 64, execAlloc(200, 3<<20, 512)),
	}}

	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, summary))

	output := buf.String()

	if !strings.Contains(output, "| Mean | Allocated | Ratio |") {
		t.Error("expected Allocated column header")
	}
	if !strings.Contains(output, "| 100.0 ns | - | baseline |") {
		t.Error("expected '-' for an allocation-free result")
	}
	if !strings.Contains(output, "| 200.0 ns | 3 MB | +100.0% |") {
		t.Error("expected formatted allocation for Pointers")
	}
}

func TestExecutionOrder(t *testing.T) {
	cases := []bench.Case{
		bench.NewCase(bench.TargetGCOff, "A", 8, 64, "full"),
		bench.NewCase(bench.TargetDefault, "B", 16, 64, "full"),
		bench.NewCase(bench.TargetDefault, "A", 8, 128, "full"),
		bench.NewCase(bench.TargetDefault, "C", 8, 64, "full"),
		bench.NewCase(bench.TargetDefault, "A", 8, 64, "full"),
	}

	got := ExecutionOrder(cases)

	want := []string{
		"default context=C entities=8 ticks=64 mode=full",
		"default context=A entities=8 ticks=64 mode=full",
		"default context=A entities=8 ticks=128 mode=full",
		"default context=B entities=16 ticks=64 mode=full",
		"gc-off context=A entities=8 ticks=64 mode=full",
	}

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i], got[i].String())
	}
}

func TestExecutionOrderIncomparableParams(t *testing.T) {
	a := bench.Case{Params: []bench.Param{bench.IntParam("n", 1)}}
	b := bench.Case{Params: []bench.Param{bench.StringParam("n", "0")}}

	assert.NotPanics(t, func() {
		got := ExecutionOrder([]bench.Case{a, b})
		assert.Equal(t, a, got[0])
	})
}

func TestLogicalGroupKey(t *testing.T) {
	a := bench.NewCase(bench.TargetDefault, "AoS", 8, 64, "full")
	b := bench.NewCase(bench.TargetDefault, "SoA", 8, 64, "full")
	c := bench.NewCase(bench.TargetGCOff, "AoS", 8, 64, "full")

	assert.Equal(t, "default/entities=8/ticks=64/mode=full", LogicalGroupKey(a))
	assert.Equal(t, LogicalGroupKey(a), LogicalGroupKey(b))
	assert.NotEqual(t, LogicalGroupKey(a), LogicalGroupKey(c))
}

func TestGroupResults(t *testing.T) {
	results := []Result{
		result(bench.TargetGCOff, "A", 8, 64, exec(5, "")),
		result(bench.TargetDefault, "B", 8, 64, exec(30, "")),
		result(bench.TargetDefault, "A", 8, 64, exec(20, "")),
		result(bench.TargetDefault, "A", 16, 64, exec(50, "")),
	}

	groups := GroupResults(results)
	require.Len(t, groups, 3)

	assert.Equal(t, "default/entities=8/ticks=64/mode=full", groups[0].Key)
	assert.Equal(t, "default/entities=16/ticks=64/mode=full", groups[1].Key)
	assert.Equal(t, "gc-off/entities=8/ticks=64/mode=full", groups[2].Key)

	require.Len(t, groups[0].Results, 2)
	assert.Equal(t, "A", groups[0].Results[0].Case.Context(), "cheaper first")
	assert.Equal(t, "B", groups[0].Results[1].Case.Context())

	// Reordering the input does not change grouping.
	reversed := []Result{results[3], results[2], results[1], results[0]}
	again := GroupResults(reversed)
	for i := range groups {
		assert.Equal(t, groups[i].Key, again[i].Key)
	}
}

func TestGroupResultsNaturalSizeOrder(t *testing.T) {
	results := []Result{
		result(bench.TargetDefault, "A", 64, 1024, exec(5, "")),
		result(bench.TargetDefault, "A", 8, 1024, exec(5, "")),
		result(bench.TargetDefault, "A", 8, 128, exec(5, "")),
		result(bench.TargetDefault, "A", 2048, 16, exec(5, "")),
	}

	var keys []string
	for _, g := range GroupResults(results) {
		keys = append(keys, g.Key)
	}

	assert.Equal(t, []string{
		"default/entities=8/ticks=128/mode=full",
		"default/entities=8/ticks=1024/mode=full",
		"default/entities=64/ticks=1024/mode=full",
		"default/entities=2048/ticks=16/mode=full",
	}, keys)
}

func TestGenerateMatchingHashes(t *testing.T) {
	summary := Summary{
		RunID: "run-1",
		Results: []Result{
			result(bench.TargetDefault, "AoS", 8, 64, exec(1000, "0000ABCD"), exec(1000, "0000ABCD")),
			result(bench.TargetDefault, "SoA", 8, 64, exec(2000, "0000ABCD")),
		},
	}

	var buf bytes.Buffer
	if err := Generate(&buf, summary); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "all match") {
		t.Error("expected 'all match' for matching hashes")
	}
	if !strings.Contains(output, "AoS") {
		t.Error("expected AoS in output")
	}
	if !strings.Contains(output, "SoA") {
		t.Error("expected SoA in output")
	}
	if !strings.Contains(output, "+100.0%") {
		t.Error("expected +100.0% for SoA (twice as slow)")
	}
	if !strings.Contains(output, "| baseline |") {
		t.Error("expected baseline marker for AoS")
	}
	if !strings.Contains(output, "1.00 µs") {
		t.Error("expected formatted mean for AoS")
	}
	if !strings.Contains(output, "run-1") {
		t.Error("expected run id in output")
	}
}

func TestGenerateMismatchedHashes(t *testing.T) {
	summary := Summary{Results: []Result{
		result(bench.TargetDefault, "AoS", 8, 64, exec(100, "0000ABCD")),
		result(bench.TargetDefault, "SoA", 8, 64, exec(200, "0000DEAD")),
	}}

	var buf bytes.Buffer
	if err := Generate(&buf, summary); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "MISMATCH") {
		t.Error("expected MISMATCH for different hashes")
	}
	if !strings.Contains(output, "AoS: 0000ABCD") {
		t.Error("expected AoS hash in mismatch details")
	}
	if !strings.Contains(output, "SoA: 0000DEAD") {
		t.Error("expected SoA hash in mismatch details")
	}
}

func TestGenerateInconsistentProcessIsMismatch(t *testing.T) {
	summary := Summary{Results: []Result{
		result(bench.TargetDefault, "AoS", 8, 64, exec(100, "0000ABCD"), exec(100, "0000ABCE")),
	}}

	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, summary))

	assert.Contains(t, buf.String(), "MISMATCH")
	assert.Contains(t, buf.String(), "!0000ABCD")
}

func TestGenerateMissingStats(t *testing.T) {
	summary := Summary{Results: []Result{
		result(bench.TargetDefault, "AoS", 8, 64),
	}}

	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, summary))

	assert.Contains(t, buf.String(), "| ? | ? | ? | ? |")
	assert.Contains(t, buf.String(), "unavailable")
}

func TestGenerateEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := Generate(&buf, Summary{})
	if err == nil {
		t.Error("expected error for empty results")
	}
}

func TestGenerateJSON(t *testing.T) {
	summary := Summary{
		RunID: "run-2",
		Results: []Result{
			result(bench.TargetDefault, "AoS", 8, 64, exec(10, "0000ABCD"), exec(10, "0000ABCE")),
		},
	}

	var buf bytes.Buffer
	if err := GenerateJSON(&buf, summary); err != nil {
		t.Fatalf("GenerateJSON failed: %v", err)
	}

	var parsed jsonSummary
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	require.Len(t, parsed.Groups, 1)
	require.Len(t, parsed.Groups[0].Results, 1)

	r := parsed.Groups[0].Results[0]
	assert.Equal(t, "run-2", parsed.RunID)
	assert.Equal(t, "AoS", r.Context)
	assert.Equal(t, "8", r.Params["entities"])
	assert.Equal(t, Baseline, r.Ratio)
	assert.Equal(t, "!0000ABCD", r.Hash)
	assert.False(t, r.HashConsistent)
	assert.Equal(t, "mismatch", parsed.Groups[0].Hashes)
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input uint64
		want  string
	}{
		{0, "-"},
		{512, "512 B"},
		{1536, "1.5 KB"},
		{1048576, "1 MB"},
		{1073741824, "1 GB"},
	}

	for _, tt := range tests {
		got := formatBytes(tt.input)
		if got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatNs(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0, "0.0 ns"},
		{999, "999.0 ns"},
		{1500, "1.50 µs"},
		{2_500_000, "2.50 ms"},
		{3_000_000_000, "3.00 s"},
	}

	for _, tt := range tests {
		got := formatNs(tt.input)
		if got != tt.want {
			t.Errorf("formatNs(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
