package probe

import (
	"github.com/stone-age-io/hwprobe/internal/facts"
)

// DefaultFacts is the all-defaults snapshot applied when probing fails
// entirely but the environment is still supported: smallest measurable
// memory unit, a single core, unknown architecture. It guarantees the
// classifier resolves to the lowest tier instead of failing the run.
func DefaultFacts(env facts.HostEnvironment) *facts.HardwareFacts {
	return &facts.HardwareFacts{
		MemoryBytes:     defaultMemoryBytes,
		LogicalCores:    defaultCores,
		Architecture:    facts.ArchUnknown,
		HostEnvironment: env,
		Estimated: []string{
			facts.FactMemory,
			facts.FactCores,
			facts.FactArch,
		},
	}
}
