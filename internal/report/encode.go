package report

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/stone-age-io/hwprobe/internal/facts"
	"github.com/stone-age-io/hwprobe/internal/tier"
)

// Profile is the machine-readable encoding of one classification run.
//
// Field names and types are a stability contract: a consuming server must
// be able to parse output from any probe implementation identically, so
// they must not change across releases or probe sources.
type Profile struct {
	MemoryBytes       uint64   `json:"memory_bytes"`
	MemoryHuman       string   `json:"memory_human"`
	CPUCores          int      `json:"cpu_cores"`
	CPUVendor         string   `json:"cpu_vendor,omitempty"`
	CPUClockMHz       float64  `json:"cpu_clock_mhz,omitempty"`
	Architecture      string   `json:"architecture"`
	Tier              string   `json:"tier"`
	OptimizationLevel string   `json:"optimization_level"`
	RecommendedOS     string   `json:"recommended_os,omitempty"`
	HostEnvironment   string   `json:"host_environment"`
	EstimatedFields   []string `json:"estimated_fields,omitempty"`
}

// NewProfile builds the stable encoding from a fact snapshot and its
// classification result.
func NewProfile(f *facts.HardwareFacts, r tier.Result) *Profile {
	return &Profile{
		MemoryBytes:       f.MemoryBytes,
		MemoryHuman:       humanize.IBytes(f.MemoryBytes),
		CPUCores:          f.LogicalCores,
		CPUVendor:         f.CPUVendor,
		CPUClockMHz:       f.CPUClockMHz,
		Architecture:      string(f.Architecture),
		Tier:              r.Tier.Label,
		OptimizationLevel: string(r.Optimization),
		RecommendedOS:     r.RecommendedOS,
		HostEnvironment:   string(f.HostEnvironment),
		EstimatedFields:   f.Estimated,
	}
}

// Encode serializes the profile for a fact snapshot and result. A failure
// here is a programming-contract violation (the field set is fixed and
// finite), so callers treat it as fatal.
func Encode(f *facts.HardwareFacts, r tier.Result) ([]byte, error) {
	return NewProfile(f, r).Marshal()
}

// Marshal produces the canonical byte encoding. Encoding is deterministic:
// decoding and re-encoding a profile yields byte-identical output.
func (p *Profile) Marshal() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("profile encoding violated contract: %w", err)
	}
	return data, nil
}

// Decode parses a previously encoded profile.
func Decode(data []byte) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &p, nil
}
