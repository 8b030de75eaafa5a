package tier

import (
	"fmt"

	"github.com/stone-age-io/hwprobe/internal/facts"
)

// OptimizationLevel is the coarse directive derived from a tier.
type OptimizationLevel string

const (
	OptMinimal    OptimizationLevel = "minimal"
	OptBasic      OptimizationLevel = "basic"
	OptStandard   OptimizationLevel = "standard"
	OptAggressive OptimizationLevel = "aggressive"
	OptExtreme    OptimizationLevel = "extreme"
)

// Tier is one static record of the device tier table. Tiers are
// configuration data: thresholds, labels and hints, no derived state.
type Tier struct {
	Label          string
	MinMemoryBytes uint64
	MinCores       int
	ArchHint       facts.Architecture
	DisplayHint    string
	OSHint         string
	Optimization   OptimizationLevel
}

const (
	kib = uint64(1024)
	gib = uint64(1024 * 1024 * 1024)
	tib = uint64(1024 * 1024 * 1024 * 1024)
)

// Table is the ordered tier table, ascending in both thresholds.
// The lowest tier's thresholds are the floor of the representable range
// (one byte, one core), so every valid fact set resolves to some tier.
var Table = []Tier{
	{
		Label:          "Calculator",
		MinMemoryBytes: 1,
		MinCores:       1,
		ArchHint:       facts.ArchUnknown,
		DisplayHint:    "segment",
		OSHint:         "bare-loop",
		Optimization:   OptMinimal,
	},
	{
		Label:          "Embedded",
		MinMemoryBytes: 2 * kib,
		MinCores:       1,
		ArchHint:       facts.ArchARM,
		DisplayHint:    "character",
		OSHint:         "rtos-micro",
		Optimization:   OptMinimal,
	},
	{
		Label:          "Mobile",
		MinMemoryBytes: 1 * gib,
		MinCores:       2,
		ArchHint:       facts.ArchARM64,
		DisplayHint:    "touch",
		OSHint:         "mobile-lite",
		Optimization:   OptBasic,
	},
	{
		Label:          "Desktop",
		MinMemoryBytes: 4 * gib,
		MinCores:       4,
		ArchHint:       facts.ArchX86_64,
		DisplayHint:    "graphical",
		OSHint:         "desktop-standard",
		Optimization:   OptStandard,
	},
	{
		Label:          "Workstation",
		MinMemoryBytes: 16 * gib,
		MinCores:       8,
		ArchHint:       facts.ArchX86_64,
		DisplayHint:    "graphical",
		OSHint:         "workstation-pro",
		Optimization:   OptStandard,
	},
	{
		Label:          "Server",
		MinMemoryBytes: 64 * gib,
		MinCores:       16,
		ArchHint:       facts.ArchX86_64,
		DisplayHint:    "headless",
		OSHint:         "server-core",
		Optimization:   OptAggressive,
	},
	{
		Label:          "Cluster",
		MinMemoryBytes: 256 * gib,
		MinCores:       64,
		ArchHint:       facts.ArchX86_64,
		DisplayHint:    "headless",
		OSHint:         "cluster-node",
		Optimization:   OptAggressive,
	},
	{
		Label:          "Supercomputer",
		MinMemoryBytes: 1 * tib,
		MinCores:       256,
		ArchHint:       facts.ArchX86_64,
		DisplayHint:    "headless",
		OSHint:         "hpc-compute",
		Optimization:   OptExtreme,
	},
}

// Validate checks the table invariants: memory thresholds strictly
// ascending, core thresholds non-decreasing, and every tier carries a
// label and an optimization level.
func Validate(table []Tier) error {
	if len(table) == 0 {
		return fmt.Errorf("tier table is empty")
	}
	for i, t := range table {
		if t.Label == "" {
			return fmt.Errorf("tier %d has no label", i)
		}
		if t.Optimization == "" {
			return fmt.Errorf("tier %q has no optimization level", t.Label)
		}
		if t.MinMemoryBytes == 0 {
			return fmt.Errorf("tier %q has zero memory threshold", t.Label)
		}
		if t.MinCores < 1 {
			return fmt.Errorf("tier %q has core threshold < 1", t.Label)
		}
		if i == 0 {
			continue
		}
		prev := table[i-1]
		if t.MinMemoryBytes <= prev.MinMemoryBytes {
			return fmt.Errorf("tier %q memory threshold %d not above %q (%d)",
				t.Label, t.MinMemoryBytes, prev.Label, prev.MinMemoryBytes)
		}
		if t.MinCores < prev.MinCores {
			return fmt.Errorf("tier %q core threshold %d below %q (%d)",
				t.Label, t.MinCores, prev.Label, prev.MinCores)
		}
	}
	return nil
}
