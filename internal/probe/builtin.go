package probe

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stone-age-io/hwprobe/internal/facts"
	"go.uber.org/zap"
)

// BuiltinProbe measures the machine through gopsutil's native system
// information APIs. This is the default source for all hosted OS targets.
type BuiltinProbe struct {
	logger *zap.Logger
}

// NewBuiltinProbe creates a new gopsutil-based probe.
func NewBuiltinProbe(logger *zap.Logger) *BuiltinProbe {
	return &BuiltinProbe{logger: logger}
}

func (p *BuiltinProbe) Describe() string {
	return "builtin (gopsutil)"
}

func (p *BuiltinProbe) Probe(ctx context.Context) (*facts.HardwareFacts, error) {
	f := &facts.HardwareFacts{
		HostEnvironment: hostEnvironment(),
	}

	// Total physical memory. VirtualMemory().Total is the OS-level
	// installed-memory figure, not a process or runtime allocation limit.
	vmem, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil || vmem.Total == 0 {
		p.logger.Warn("Failed to read total physical memory, using default", zap.Error(err))
		f.MemoryBytes = defaultMemoryBytes
		f.Estimated = append(f.Estimated, facts.FactMemory)
	} else {
		f.MemoryBytes = vmem.Total
	}

	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil || cores < 1 {
		p.logger.Warn("Failed to read logical core count, using default", zap.Error(err))
		f.LogicalCores = defaultCores
		f.Estimated = append(f.Estimated, facts.FactCores)
	} else {
		f.LogicalCores = cores
	}

	// Vendor and clock are optional; their absence never blocks
	// classification and is not marked as estimated.
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		f.CPUVendor = infos[0].VendorID
		if f.CPUVendor == "" {
			f.CPUVendor = infos[0].ModelName
		}
		f.CPUClockMHz = infos[0].Mhz
	} else if err != nil {
		p.logger.Debug("Could not read CPU identity", zap.Error(err))
	}

	if hi, err := host.InfoWithContext(ctx); err == nil && hi.KernelArch != "" {
		f.Architecture = facts.ParseArchitecture(hi.KernelArch)
	} else {
		f.Architecture = facts.ParseArchitecture(runtime.GOARCH)
	}
	if f.Architecture == facts.ArchUnknown {
		f.Estimated = append(f.Estimated, facts.FactArch)
	}

	return f, nil
}
