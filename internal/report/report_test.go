package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stone-age-io/hwprobe/internal/facts"
	"github.com/stone-age-io/hwprobe/internal/tier"
)

func desktopFacts() *facts.HardwareFacts {
	return &facts.HardwareFacts{
		MemoryBytes:     8 << 30,
		LogicalCores:    8,
		CPUVendor:       "GenuineIntel",
		CPUClockMHz:     3200,
		Architecture:    facts.ArchX86_64,
		HostEnvironment: facts.EnvLinux,
	}
}

// TestEncodeRoundTrip verifies decode-then-re-encode is byte-identical.
func TestEncodeRoundTrip(t *testing.T) {
	f := desktopFacts()
	r := tier.Classify(f)

	encoded, err := Encode(f, r)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	reencoded, err := decoded.Marshal()
	if err != nil {
		t.Fatalf("re-encode failed: %v", err)
	}

	if !bytes.Equal(encoded, reencoded) {
		t.Errorf("round trip not byte-identical:\n first: %s\nsecond: %s", encoded, reencoded)
	}
}

// TestEncodeFieldContract pins the stable field names a consuming server
// parses. These names must not change.
func TestEncodeFieldContract(t *testing.T) {
	f := desktopFacts()
	f.Estimated = []string{facts.FactMemory}
	encoded, err := Encode(f, tier.Classify(f))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(encoded, &raw); err != nil {
		t.Fatalf("encoding is not valid JSON: %v", err)
	}

	for _, field := range []string{
		"memory_bytes",
		"memory_human",
		"cpu_cores",
		"cpu_vendor",
		"cpu_clock_mhz",
		"architecture",
		"tier",
		"optimization_level",
		"recommended_os",
		"host_environment",
		"estimated_fields",
	} {
		if _, ok := raw[field]; !ok {
			t.Errorf("encoding missing contract field %q", field)
		}
	}

	if raw["tier"] != "Desktop" {
		t.Errorf("tier = %v, want Desktop", raw["tier"])
	}
	if raw["host_environment"] != "linux" {
		t.Errorf("host_environment = %v, want linux", raw["host_environment"])
	}
}

// TestEncodeOmitsEmptyOptionals verifies optional fields disappear rather
// than encode as empty values.
func TestEncodeOmitsEmptyOptionals(t *testing.T) {
	f := desktopFacts()
	f.CPUVendor = ""
	f.CPUClockMHz = 0
	f.Estimated = nil

	encoded, err := Encode(f, tier.Classify(f))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(encoded, &raw); err != nil {
		t.Fatalf("encoding is not valid JSON: %v", err)
	}

	for _, field := range []string{"cpu_vendor", "cpu_clock_mhz", "estimated_fields"} {
		if _, ok := raw[field]; ok {
			t.Errorf("empty optional field %q should be omitted", field)
		}
	}
}

// TestRender checks the human report contains the facts and the
// classification, and marks estimated values.
func TestRender(t *testing.T) {
	f := desktopFacts()
	r := tier.Classify(f)

	out := Render(f, r)

	for _, want := range []string{
		"Hardware Profile",
		"8.0 GiB",
		"GenuineIntel",
		"x86_64",
		"Desktop",
		"standard",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "(estimated)") {
		t.Errorf("report marks estimates without any estimated fact:\n%s", out)
	}
}

// TestRenderMarksEstimates verifies the default-substitution path is
// clearly visible to a human reader.
func TestRenderMarksEstimates(t *testing.T) {
	f := &facts.HardwareFacts{
		MemoryBytes:     1,
		LogicalCores:    1,
		Architecture:    facts.ArchUnknown,
		HostEnvironment: facts.EnvFirmware,
		Estimated:       []string{facts.FactMemory, facts.FactCores, facts.FactArch},
	}
	r := tier.Classify(f)
	if r.Tier.Label != "Calculator" {
		t.Fatalf("default snapshot classified as %s, want Calculator", r.Tier.Label)
	}

	out := Render(f, r)
	if !strings.Contains(out, "(estimated)") {
		t.Errorf("report does not mark estimated facts:\n%s", out)
	}
	if !strings.Contains(out, "conservative defaults") {
		t.Errorf("report does not explain the default substitution:\n%s", out)
	}
}

// TestDecodeRejectsGarbage verifies decode errors on malformed input.
func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("{not json")); err == nil {
		t.Error("Decode accepted malformed input")
	}
}
