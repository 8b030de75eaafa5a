//go:build linux

package probe

import (
	"context"
	"testing"

	"github.com/stone-age-io/hwprobe/internal/facts"
	"go.uber.org/zap"
)

// TestFirmwareProbe runs the raw kernel path on the host.
func TestFirmwareProbe(t *testing.T) {
	p := NewFirmwareProbe(zap.NewNop())

	f, err := p.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	if err := f.Validate(); err != nil {
		t.Fatalf("firmware facts invalid: %v", err)
	}
	if f.MemoryBytes <= 1 {
		t.Errorf("MemoryBytes = %d, expected real total physical memory", f.MemoryBytes)
	}
	if f.LogicalCores < 1 {
		t.Errorf("LogicalCores = %d, expected >= 1", f.LogicalCores)
	}
	if f.HostEnvironment != facts.EnvFirmware {
		t.Errorf("HostEnvironment = %s, want firmware", f.HostEnvironment)
	}
}

// TestReadProcMemTotal parses the live /proc/meminfo.
func TestReadProcMemTotal(t *testing.T) {
	total, err := readProcMemTotal()
	if err != nil {
		t.Fatalf("readProcMemTotal failed: %v", err)
	}
	if total == 0 {
		t.Error("readProcMemTotal returned zero")
	}
}

// TestFirmwareAndBuiltinAgree cross-checks the two probe paths: both must
// report the same order of magnitude for total memory and the same core
// count, since they measure the same machine.
func TestFirmwareAndBuiltinAgree(t *testing.T) {
	ctx := context.Background()

	fw, err := NewFirmwareProbe(zap.NewNop()).Probe(ctx)
	if err != nil {
		t.Fatalf("firmware probe failed: %v", err)
	}
	builtin, err := NewBuiltinProbe(zap.NewNop()).Probe(ctx)
	if err != nil {
		t.Fatalf("builtin probe failed: %v", err)
	}

	if fw.LogicalCores != builtin.LogicalCores {
		t.Errorf("core counts disagree: firmware=%d builtin=%d",
			fw.LogicalCores, builtin.LogicalCores)
	}

	ratio := float64(fw.MemoryBytes) / float64(builtin.MemoryBytes)
	if ratio < 0.9 || ratio > 1.1 {
		t.Errorf("memory readings disagree: firmware=%d builtin=%d",
			fw.MemoryBytes, builtin.MemoryBytes)
	}
}
