package probe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stone-age-io/hwprobe/internal/facts"
	"go.uber.org/zap"
)

// exporterFixture renders a scrape body for this platform's metric names.
func exporterFixture(memoryBytes float64, cores int, arch, vendor string) string {
	names := getExporterMetricNames()
	var b strings.Builder

	fmt.Fprintf(&b, "# TYPE %s gauge\n", names.MemoryTotal)
	fmt.Fprintf(&b, "%s %g\n", names.MemoryTotal, memoryBytes)

	fmt.Fprintf(&b, "# TYPE %s counter\n", names.CPUTime)
	for i := 0; i < cores; i++ {
		fmt.Fprintf(&b, "%s{%s=\"%d\",mode=\"idle\"} 100\n", names.CPUTime, names.CoreLabel, i)
		fmt.Fprintf(&b, "%s{%s=\"%d\",mode=\"user\"} 10\n", names.CPUTime, names.CoreLabel, i)
	}

	// Arch and vendor may share one info family depending on platform.
	fmt.Fprintf(&b, "# TYPE %s gauge\n", names.ArchInfo)
	if names.ArchInfo == names.VendorInfo {
		fmt.Fprintf(&b, "%s{%s=%q,%s=%q} 1\n", names.ArchInfo, names.ArchLabel, arch, names.VendorLabel, vendor)
	} else {
		fmt.Fprintf(&b, "%s{%s=%q} 1\n", names.ArchInfo, names.ArchLabel, arch)
		fmt.Fprintf(&b, "# TYPE %s gauge\n", names.VendorInfo)
		fmt.Fprintf(&b, "%s{%s=%q} 1\n", names.VendorInfo, names.VendorLabel, vendor)
	}

	return b.String()
}

// TestExporterProbe parses a synthetic scrape into a fact snapshot.
func TestExporterProbe(t *testing.T) {
	body := exporterFixture(8589934592, 2, "x86_64", "GenuineIntel")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	p := NewExporterProbe(srv.URL, zap.NewNop(), srv.Client())
	f, err := p.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	if f.MemoryBytes != 8589934592 {
		t.Errorf("MemoryBytes = %d, want 8589934592", f.MemoryBytes)
	}
	if f.LogicalCores != 2 {
		t.Errorf("LogicalCores = %d, want 2", f.LogicalCores)
	}
	if f.Architecture != facts.ArchX86_64 {
		t.Errorf("Architecture = %s, want x86_64", f.Architecture)
	}
	if f.CPUVendor != "GenuineIntel" {
		t.Errorf("CPUVendor = %s, want GenuineIntel", f.CPUVendor)
	}
	if f.HostEnvironment != facts.EnvExporter {
		t.Errorf("HostEnvironment = %s, want exporter", f.HostEnvironment)
	}
	if len(f.Estimated) != 0 {
		t.Errorf("Estimated = %v, want none", f.Estimated)
	}
	if err := f.Validate(); err != nil {
		t.Errorf("exporter facts invalid: %v", err)
	}
}

// TestExporterProbeDefaults substitutes defaults when the scrape carries
// none of the expected families.
func TestExporterProbeDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "# TYPE something_unrelated gauge\nsomething_unrelated 1\n")
	}))
	defer srv.Close()

	p := NewExporterProbe(srv.URL, zap.NewNop(), srv.Client())
	f, err := p.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	if f.MemoryBytes != defaultMemoryBytes {
		t.Errorf("MemoryBytes = %d, want default %d", f.MemoryBytes, uint64(defaultMemoryBytes))
	}
	if f.LogicalCores != defaultCores {
		t.Errorf("LogicalCores = %d, want default %d", f.LogicalCores, defaultCores)
	}
	if !f.IsEstimated(facts.FactMemory) || !f.IsEstimated(facts.FactCores) {
		t.Errorf("defaults not marked as estimated: %v", f.Estimated)
	}
	if err := f.Validate(); err != nil {
		t.Errorf("default facts invalid: %v", err)
	}
}

// TestExporterProbeBadStatus treats HTTP failures as probe errors so the
// boot stage can retry within its budget.
func TestExporterProbeBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewExporterProbe(srv.URL, zap.NewNop(), srv.Client())
	if _, err := p.Probe(context.Background()); err == nil {
		t.Fatal("Probe succeeded against a failing exporter")
	}
}
