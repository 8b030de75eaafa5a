package facts

import (
	"fmt"
	"strings"
)

// Architecture is the fixed vocabulary of CPU architecture tags.
// Unrecognized values always map to ArchUnknown, never to an empty tag.
type Architecture string

const (
	ArchX86     Architecture = "x86"
	ArchX86_64  Architecture = "x86_64"
	ArchARM     Architecture = "arm"
	ArchARM64   Architecture = "arm64"
	ArchRISCV64 Architecture = "riscv64"
	ArchUnknown Architecture = "unknown"
)

// HostEnvironment identifies which probe produced a snapshot.
// It is carried for reporting only and must never influence classification.
type HostEnvironment string

const (
	EnvFirmware    HostEnvironment = "firmware"
	EnvLinux       HostEnvironment = "linux"
	EnvWindows     HostEnvironment = "windows"
	EnvDarwin      HostEnvironment = "darwin"
	EnvFreeBSD     HostEnvironment = "freebsd"
	EnvExporter    HostEnvironment = "exporter"
	EnvUnsupported HostEnvironment = "unsupported"
)

// Fact names recorded in Estimated when a probe substitutes a default.
const (
	FactMemory = "memory"
	FactCores  = "cores"
	FactVendor = "cpu_vendor"
	FactClock  = "cpu_clock"
	FactArch   = "architecture"
)

// HardwareFacts is an immutable snapshot of the machine, produced exactly
// once per run by a probe. MemoryBytes must reflect total installed
// physical memory, never a per-process or runtime allocation limit.
type HardwareFacts struct {
	MemoryBytes     uint64
	LogicalCores    int
	CPUVendor       string
	CPUClockMHz     float64
	Architecture    Architecture
	HostEnvironment HostEnvironment

	// Estimated lists fact names that were substituted with conservative
	// defaults because the probe could not read them.
	Estimated []string
}

// Validate checks the snapshot invariants: at least one logical core and
// a non-empty architecture tag.
func (f *HardwareFacts) Validate() error {
	if f.LogicalCores < 1 {
		return fmt.Errorf("logical core count must be >= 1, got %d", f.LogicalCores)
	}
	if f.Architecture == "" {
		return fmt.Errorf("architecture tag must not be empty (use %q)", ArchUnknown)
	}
	if f.HostEnvironment == "" {
		return fmt.Errorf("host environment tag must not be empty")
	}
	return nil
}

// IsEstimated reports whether the named fact was substituted with a default.
func (f *HardwareFacts) IsEstimated(name string) bool {
	for _, e := range f.Estimated {
		if e == name {
			return true
		}
	}
	return false
}

// ParseArchitecture normalizes a raw architecture string (runtime.GOARCH,
// kernel arch from uname, or exporter label) into the fixed vocabulary.
func ParseArchitecture(raw string) Architecture {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "x86_64", "amd64", "x64":
		return ArchX86_64
	case "x86", "i386", "i486", "i586", "i686", "386":
		return ArchX86
	case "arm", "armv6l", "armv7l", "arm32":
		return ArchARM
	case "arm64", "aarch64":
		return ArchARM64
	case "riscv64":
		return ArchRISCV64
	default:
		return ArchUnknown
	}
}
