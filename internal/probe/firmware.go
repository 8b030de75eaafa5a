package probe

import (
	"go.uber.org/zap"
)

// firmwareRetryAttempts bounds the polling loop around transient raw
// kernel calls. On exhaustion the probe falls back to defaults instead of
// waiting indefinitely.
const firmwareRetryAttempts = 3

// FirmwareProbe measures the machine through the lowest-level interfaces
// available: direct kernel syscalls and raw procfs/sysctl reads, no
// higher-level system information library. It is the hosted analogue of
// the pre-OS firmware detection stage and shares its failure policy.
type FirmwareProbe struct {
	logger *zap.Logger
}

// NewFirmwareProbe creates a raw-interface probe.
func NewFirmwareProbe(logger *zap.Logger) *FirmwareProbe {
	return &FirmwareProbe{logger: logger}
}

func (p *FirmwareProbe) Describe() string {
	return "firmware (raw kernel interfaces)"
}
