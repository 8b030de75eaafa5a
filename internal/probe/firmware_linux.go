//go:build linux

package probe

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/stone-age-io/hwprobe/internal/facts"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Probe gathers facts from raw kernel interfaces: sysinfo(2) for memory,
// /proc/cpuinfo for core count and vendor, uname(2) for the architecture.
// Memory is read as a two-leg query: the sysinfo call inside a bounded
// retry loop, then /proc/meminfo as the fallback leg.
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

	cores, vendor, err := readProcCPUInfo()
	if err != nil || cores < 1 {
		p.logger.Warn("Failed to read /proc/cpuinfo, using default core count", zap.Error(err))
		f.LogicalCores = defaultCores
		f.Estimated = append(f.Estimated, facts.FactCores)
	} else {
		f.LogicalCores = cores
		f.CPUVendor = vendor
	}

	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		f.Architecture = facts.ParseArchitecture(charsToString(uts.Machine[:]))
	} else {
		p.logger.Warn("uname failed, architecture unknown", zap.Error(err))
		f.Architecture = facts.ArchUnknown
		f.Estimated = append(f.Estimated, facts.FactArch)
	}

	return f, nil
}

// readMemoryBounded polls sysinfo(2) with a small constant retry budget,
// then falls back to the /proc/meminfo leg. It never blocks indefinitely.
func (p *FirmwareProbe) readMemoryBounded(ctx context.Context) (uint64, error) {
	var lastErr error
	for attempt := 1; attempt <= firmwareRetryAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		var si unix.Sysinfo_t
		if err := unix.Sysinfo(&si); err != nil {
			lastErr = err
			p.logger.Debug("sysinfo call failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		total := uint64(si.Totalram) * uint64(si.Unit)
		if total > 0 {
			return total, nil
		}
		lastErr = fmt.Errorf("sysinfo reported zero total memory")
	}

	if total, err := readProcMemTotal(); err == nil && total > 0 {
		return total, nil
	}
	return 0, fmt.Errorf("memory query exhausted %d attempts: %w", firmwareRetryAttempts, lastErr)
}

// readProcMemTotal parses the MemTotal line of /proc/meminfo (kB units).
func readProcMemTotal() (uint64, error) {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[0] != "MemTotal:" {
			continue
		}
		var kb uint64
		if _, err := fmt.Sscanf(fields[1], "%d", &kb); err != nil {
			return 0, err
		}
		return kb * 1024, nil
	}
	return 0, fmt.Errorf("MemTotal not found in /proc/meminfo")
}

// readProcCPUInfo counts processor entries and extracts the vendor tag
// from /proc/cpuinfo.
func readProcCPUInfo() (int, string, error) {
	file, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return 0, "", err
	}
	defer file.Close()

	cores := 0
	vendor := ""

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "processor") {
			cores++
			continue
		}
		if vendor == "" && strings.HasPrefix(line, "vendor_id") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) == 2 {
				vendor = strings.TrimSpace(parts[1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, "", err
	}

	return cores, vendor, nil
}

// charsToString converts a null-terminated byte array from uname output.
func charsToString(arr []byte) string {
	n := 0
	for n < len(arr) && arr[n] != 0 {
		n++
	}
	return string(arr[:n])
}
