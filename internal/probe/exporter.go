package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/stone-age-io/hwprobe/internal/facts"
	"go.uber.org/zap"
)

// scrapeBodyLimit caps the exporter response size.
const scrapeBodyLimit = 10 * 1024 * 1024

// ExporterProbe derives hardware facts by scraping a Prometheus exporter
// (node_exporter or windows_exporter). Useful when the profiler runs next
// to an existing monitoring stack and must not touch OS APIs itself.
type ExporterProbe struct {
	exporterURL string
	logger      *zap.Logger
	httpClient  *http.Client
}

// NewExporterProbe creates a probe that scrapes a Prometheus exporter.
func NewExporterProbe(url string, logger *zap.Logger, httpClient *http.Client) *ExporterProbe {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &ExporterProbe{
		exporterURL: url,
		logger:      logger,
		httpClient:  httpClient,
	}
}

func (p *ExporterProbe) Describe() string {
	return fmt.Sprintf("exporter (%s)", p.exporterURL)
}

func (p *ExporterProbe) Probe(ctx context.Context) (*facts.HardwareFacts, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.exporterURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "hwprobe/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exporter metrics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected exporter status code: %d", resp.StatusCode)
	}

	families, err := p.parseFamilies(io.LimitReader(resp.Body, scrapeBodyLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to parse exporter metrics: %w", err)
	}

	return p.extractFacts(families), nil
}

func (p *ExporterProbe) parseFamilies(reader io.Reader) (map[string]*dto.MetricFamily, error) {
	decoder := expfmt.NewDecoder(reader, expfmt.FmtText)
	families := make(map[string]*dto.MetricFamily)
	for {
		mf := &dto.MetricFamily{}
		err := decoder.Decode(mf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode metric family: %w", err)
		}
		families[mf.GetName()] = mf
	}
	p.logger.Debug("Parsed metric families", zap.Int("count", len(families)))
	return families, nil
}

// extractFacts maps exporter metric families onto the fact snapshot,
// substituting defaults for anything the exporter does not expose.
func (p *ExporterProbe) extractFacts(families map[string]*dto.MetricFamily) *facts.HardwareFacts {
	names := getExporterMetricNames()

	f := &facts.HardwareFacts{
		HostEnvironment: facts.EnvExporter,
		Architecture:    facts.ArchUnknown,
	}

	if total, ok := gaugeValue(families[names.MemoryTotal]); ok && total > 0 {
		f.MemoryBytes = uint64(total)
	} else {
		p.logger.Warn("Exporter did not report total memory, using default",
			zap.String("metric", names.MemoryTotal))
		f.MemoryBytes = defaultMemoryBytes
		f.Estimated = append(f.Estimated, facts.FactMemory)
	}

	if cores := countLabelValues(families[names.CPUTime], names.CoreLabel); cores > 0 {
		f.LogicalCores = cores
	} else {
		p.logger.Warn("Exporter did not report CPU cores, using default",
			zap.String("metric", names.CPUTime))
		f.LogicalCores = defaultCores
		f.Estimated = append(f.Estimated, facts.FactCores)
	}

	if arch, ok := labelValue(families[names.ArchInfo], names.ArchLabel); ok {
		f.Architecture = facts.ParseArchitecture(arch)
	}
	if f.Architecture == facts.ArchUnknown {
		f.Estimated = append(f.Estimated, facts.FactArch)
	}

	if vendor, ok := labelValue(families[names.VendorInfo], names.VendorLabel); ok {
		f.CPUVendor = vendor
	}
	if clock, ok := gaugeValue(families[names.Clock]); ok && clock > 0 {
		f.CPUClockMHz = clock * names.ClockToMHz
	}

	return f
}

// gaugeValue returns the first gauge or untyped sample in the family.
func gaugeValue(family *dto.MetricFamily) (float64, bool) {
	if family == nil {
		return 0, false
	}
	for _, m := range family.GetMetric() {
		if g := m.GetGauge(); g != nil {
			return g.GetValue(), true
		}
		if u := m.GetUntyped(); u != nil {
			return u.GetValue(), true
		}
	}
	return 0, false
}

// countLabelValues counts distinct values of a label across the family.
// Counting the "cpu" label of the per-core CPU time counter yields the
// logical core count.
func countLabelValues(family *dto.MetricFamily, label string) int {
	if family == nil {
		return 0
	}
	seen := make(map[string]bool)
	for _, m := range family.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == label {
				seen[lp.GetValue()] = true
			}
		}
	}
	return len(seen)
}

// labelValue returns the first non-empty value of a label in the family.
func labelValue(family *dto.MetricFamily, label string) (string, bool) {
	if family == nil {
		return "", false
	}
	for _, m := range family.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == label && lp.GetValue() != "" {
				return lp.GetValue(), true
			}
		}
	}
	return "", false
}
