//go:build freebsd

package probe

import (
	"context"
	"fmt"

	"github.com/stone-age-io/hwprobe/internal/facts"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Probe gathers facts from raw sysctl MIBs: hw.physmem for memory,
// hw.ncpu for cores, hw.machine for the architecture and hw.model for the
// CPU identity. The memory read runs inside a bounded retry loop.
func (p *FirmwareProbe) Probe(ctx context.Context) (*facts.HardwareFacts, error) {
	f := &facts.HardwareFacts{
		HostEnvironment: facts.EnvFirmware,
	}

	memBytes, err := p.readMemoryBounded(ctx)
	if err != nil {
		p.logger.Warn("Memory query failed after retries, using default", zap.Error(err))
		f.MemoryBytes = defaultMemoryBytes
		f.Estimated = append(f.Estimated, facts.FactMemory)
	} else {
		f.MemoryBytes = memBytes
	}

	if ncpu, err := unix.SysctlUint32("hw.ncpu"); err == nil && ncpu >= 1 {
		f.LogicalCores = int(ncpu)
	} else {
		p.logger.Warn("Failed to read hw.ncpu, using default core count", zap.Error(err))
		f.LogicalCores = defaultCores
		f.Estimated = append(f.Estimated, facts.FactCores)
	}

	if machine, err := unix.Sysctl("hw.machine"); err == nil {
		f.Architecture = facts.ParseArchitecture(machine)
	} else {
		f.Architecture = facts.ArchUnknown
		f.Estimated = append(f.Estimated, facts.FactArch)
	}

	if model, err := unix.Sysctl("hw.model"); err == nil {
		f.CPUVendor = model
	}

	return f, nil
}

// readMemoryBounded polls the hw.physmem MIB with a small constant retry
// budget. It never blocks indefinitely.
func (p *FirmwareProbe) readMemoryBounded(ctx context.Context) (uint64, error) {
	var lastErr error
	for attempt := 1; attempt <= firmwareRetryAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		total, err := unix.SysctlUint64("hw.physmem")
		if err != nil {
			lastErr = err
			p.logger.Debug("hw.physmem read failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		if total > 0 {
			return total, nil
		}
		lastErr = fmt.Errorf("hw.physmem reported zero")
	}
	return 0, fmt.Errorf("memory query exhausted %d attempts: %w", firmwareRetryAttempts, lastErr)
}
