package tier

import (
	"github.com/stone-age-io/hwprobe/internal/facts"
)

// Result is the outcome of classifying one fact snapshot. It is derived,
// recomputed every run, and never persisted as a source of truth.
type Result struct {
	Tier          Tier
	Index         int
	Optimization  OptimizationLevel
	RecommendedOS string
}

// Classify maps a fact snapshot onto the tier table. Pure and
// deterministic: no I/O, no environment branching, identical facts always
// yield identical results.
//
// The full table is scanned in ascending order and the last tier whose
// memory AND core thresholds are both met wins, so the effective tier is
// bounded by whichever resource is scarcer. Facts below even the lowest
// tier resolve to the lowest tier rather than indexing out of bounds.
func Classify(f *facts.HardwareFacts) Result {
	return ClassifyWith(Table, f)
}

// ClassifyWith runs the classification against an explicit table.
// The table must satisfy Validate.
func ClassifyWith(table []Tier, f *facts.HardwareFacts) Result {
	matched := 0
	for i, t := range table {
		if f.MemoryBytes >= t.MinMemoryBytes && f.LogicalCores >= t.MinCores {
			matched = i
		}
	}
	t := table[matched]
	return Result{
		Tier:          t,
		Index:         matched,
		Optimization:  t.Optimization,
		RecommendedOS: t.OSHint,
	}
}
