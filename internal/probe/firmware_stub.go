//go:build !linux && !freebsd

package probe

import (
	"context"
	"fmt"
	"runtime"

	"github.com/stone-age-io/hwprobe/internal/facts"
)

// Probe is a stub for platforms without a raw kernel interface path.
// Use the builtin or exporter source there instead.
func (p *FirmwareProbe) Probe(ctx context.Context) (*facts.HardwareFacts, error) {
	return nil, fmt.Errorf("%w: firmware probe not available on %s", ErrUnsupported, runtime.GOOS)
}
