// Package probe acquires raw hardware facts from the current execution
// context. Each probe source normalizes to the same units (bytes for
// memory, count for cores) before returning, which is the seam that keeps
// the classifier environment-agnostic.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"github.com/stone-age-io/hwprobe/internal/facts"
	"go.uber.org/zap"
)

// ErrUnsupported is returned when a probe cannot run at all in the current
// environment. Partial failures never surface as errors: the probe
// substitutes conservative defaults instead, because classification must
// still produce some tier.
var ErrUnsupported = errors.New("probe: unsupported host environment")

// The conservative defaults applied on partial failure. One byte of
// memory keeps the classifier at the lowest tier without going out of
// range; one core is the smallest valid count.
const (
	defaultMemoryBytes = 1
	defaultCores       = 1
)

// Probe measures the machine and returns a complete fact snapshot.
type Probe interface {
	// Probe gathers hardware facts. It never returns a partially
	// constructed snapshot: unreadable facts are replaced with defaults
	// and recorded in the snapshot's Estimated list. An error means the
	// probe could not run at all.
	Probe(ctx context.Context) (*facts.HardwareFacts, error)

	// Describe returns the probe name for logging.
	Describe() string
}

// New creates the appropriate probe based on configuration.
func New(source, exporterURL string, logger *zap.Logger, httpClient *http.Client) (Probe, error) {
	source = strings.ToLower(source)
	if source == "" || source == "auto" {
		source = "builtin"
	}

	switch source {
	case "builtin":
		logger.Info("Using builtin probe (gopsutil)")
		return NewBuiltinProbe(logger), nil
	case "firmware":
		logger.Info("Using firmware probe (raw kernel interfaces)")
		return NewFirmwareProbe(logger), nil
	case "exporter":
		if exporterURL == "" {
			return nil, fmt.Errorf("exporter_url required for exporter source")
		}
		logger.Info("Using exporter probe", zap.String("url", exporterURL))
		return NewExporterProbe(exporterURL, logger, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown probe source: %s", source)
	}
}

// hostEnvironment maps the running OS onto the reporting tag vocabulary.
func hostEnvironment() facts.HostEnvironment {
	switch runtime.GOOS {
	case "linux":
		return facts.EnvLinux
	case "windows":
		return facts.EnvWindows
	case "darwin":
		return facts.EnvDarwin
	case "freebsd":
		return facts.EnvFreeBSD
	default:
		return facts.HostEnvironment(runtime.GOOS)
	}
}
