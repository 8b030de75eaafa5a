package tier

import (
	"strings"
	"testing"

	"github.com/stone-age-io/hwprobe/internal/facts"
)

// TestTableValid checks the shipped table against its own invariants.
func TestTableValid(t *testing.T) {
	if err := Validate(Table); err != nil {
		t.Fatalf("shipped tier table is invalid: %v", err)
	}
	if len(Table) != 8 {
		t.Errorf("expected 8 tiers, got %d", len(Table))
	}
	if Table[0].MinMemoryBytes != 1 || Table[0].MinCores != 1 {
		t.Errorf("lowest tier thresholds must be the representable floor, got %d bytes / %d cores",
			Table[0].MinMemoryBytes, Table[0].MinCores)
	}
}

// TestValidateRejectsBadTables exercises each invariant violation.
func TestValidateRejectsBadTables(t *testing.T) {
	base := func() []Tier {
		return []Tier{
			{Label: "A", MinMemoryBytes: 1, MinCores: 1, Optimization: OptMinimal, ArchHint: facts.ArchUnknown},
			{Label: "B", MinMemoryBytes: 1024, MinCores: 2, Optimization: OptBasic, ArchHint: facts.ArchUnknown},
		}
	}

	tests := []struct {
		name    string
		mutate  func([]Tier) []Tier
		errText string
	}{
		{
			name:    "empty table",
			mutate:  func([]Tier) []Tier { return nil },
			errText: "empty",
		},
		{
			name: "memory not ascending",
			mutate: func(tb []Tier) []Tier {
				tb[1].MinMemoryBytes = 1
				return tb
			},
			errText: "memory threshold",
		},
		{
			name: "cores descending",
			mutate: func(tb []Tier) []Tier {
				tb[0].MinCores = 4
				return tb
			},
			errText: "core threshold",
		},
		{
			name: "zero memory threshold",
			mutate: func(tb []Tier) []Tier {
				tb[0].MinMemoryBytes = 0
				return tb
			},
			errText: "zero memory",
		},
		{
			name: "missing label",
			mutate: func(tb []Tier) []Tier {
				tb[1].Label = ""
				return tb
			},
			errText: "no label",
		},
		{
			name: "missing optimization level",
			mutate: func(tb []Tier) []Tier {
				tb[1].Optimization = ""
				return tb
			},
			errText: "no optimization",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.mutate(base()))
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.errText)
			}
		})
	}
}

// TestValidateAcceptsEqualCores allows adjacent tiers to share a core
// floor as long as memory keeps ascending.
func TestValidateAcceptsEqualCores(t *testing.T) {
	table := []Tier{
		{Label: "A", MinMemoryBytes: 1, MinCores: 1, Optimization: OptMinimal},
		{Label: "B", MinMemoryBytes: 2048, MinCores: 1, Optimization: OptMinimal},
	}
	if err := Validate(table); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}
