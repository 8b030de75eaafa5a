package agent

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stone-age-io/hwprobe/internal/config"
	"github.com/stone-age-io/hwprobe/internal/report"
	"go.uber.org/zap"
)

func detectorConfig(format string) *config.Config {
	return &config.Config{
		Probe: config.ProbeConfig{
			Source:        "builtin",
			RetryAttempts: 3,
		},
		Output: config.OutputConfig{Format: format},
		Agent:  config.AgentConfig{Interval: time.Hour},
	}
}

// TestDetectorJSONOutput runs a full detection against the host and
// checks the stdout payload is a decodable profile.
func TestDetectorJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	d, err := NewDetector(detectorConfig("json"), zap.NewNop(), &buf, nil)
	if err != nil {
		t.Fatalf("NewDetector failed: %v", err)
	}

	if err := d.Detect(context.Background()); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	profile, err := report.Decode(bytes.TrimSpace(buf.Bytes()))
	if err != nil {
		t.Fatalf("output is not a valid profile: %v\noutput: %s", err, buf.String())
	}
	if profile.Tier == "" {
		t.Error("profile has no tier")
	}
	if profile.CPUCores < 1 {
		t.Errorf("profile cores = %d, want >= 1", profile.CPUCores)
	}
	if profile.MemoryBytes == 0 {
		t.Error("profile has zero memory")
	}
}

// TestDetectorTextOutput checks the human report path.
func TestDetectorTextOutput(t *testing.T) {
	var buf bytes.Buffer
	d, err := NewDetector(detectorConfig("text"), zap.NewNop(), &buf, nil)
	if err != nil {
		t.Fatalf("NewDetector failed: %v", err)
	}

	if err := d.Detect(context.Background()); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Hardware Profile") {
		t.Errorf("report missing header:\n%s", out)
	}
	if !strings.Contains(out, "Device tier") {
		t.Errorf("report missing classification:\n%s", out)
	}
}

// TestDetectorRejectsBadProbeSource propagates factory errors.
func TestDetectorRejectsBadProbeSource(t *testing.T) {
	cfg := detectorConfig("text")
	cfg.Probe.Source = "quantum"

	if _, err := NewDetector(cfg, zap.NewNop(), &bytes.Buffer{}, nil); err == nil {
		t.Fatal("NewDetector accepted unknown probe source")
	}
}
