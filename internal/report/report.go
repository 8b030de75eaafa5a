// Package report renders classification results for two audiences: a
// formatted textual report for a human at a console, and a stable
// machine-readable encoding for a consuming process. Both renderers are
// pure functions of the fact snapshot and classification result.
package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/stone-age-io/hwprobe/internal/facts"
	"github.com/stone-age-io/hwprobe/internal/tier"
	"github.com/stone-age-io/hwprobe/internal/utils"
)

// Render produces the human-readable console report. Formatting here may
// vary freely between releases; only the Profile encoding is a contract.
func Render(f *facts.HardwareFacts, r tier.Result) string {
	var b strings.Builder

	b.WriteString("Hardware Profile\n")
	b.WriteString("================\n")
	writeFact(&b, "Memory", fmt.Sprintf("%s (%d bytes)", humanize.IBytes(f.MemoryBytes), f.MemoryBytes), f.IsEstimated(facts.FactMemory))
	writeFact(&b, "Logical cores", fmt.Sprintf("%d", f.LogicalCores), f.IsEstimated(facts.FactCores))

	vendor := f.CPUVendor
	if vendor == "" {
		vendor = "unknown"
	}
	writeFact(&b, "CPU vendor", vendor, f.IsEstimated(facts.FactVendor))

	if f.CPUClockMHz > 0 {
		writeFact(&b, "CPU clock", fmt.Sprintf("%.2f GHz", utils.Round(f.CPUClockMHz/1000)), f.IsEstimated(facts.FactClock))
	}
	writeFact(&b, "Architecture", string(f.Architecture), f.IsEstimated(facts.FactArch))
	writeFact(&b, "Probe source", string(f.HostEnvironment), false)

	b.WriteString("\nClassification\n")
	b.WriteString("==============\n")
	writeFact(&b, "Device tier", fmt.Sprintf("%s (%d of %d)", r.Tier.Label, r.Index+1, len(tier.Table)), false)
	writeFact(&b, "Optimization", string(r.Optimization), false)
	writeFact(&b, "Display hint", r.Tier.DisplayHint, false)
	if r.RecommendedOS != "" {
		writeFact(&b, "Recommended OS", r.RecommendedOS, false)
	}

	if len(f.Estimated) > 0 {
		fmt.Fprintf(&b, "\nNote: values marked (estimated) use conservative defaults because the\nprobe could not read them: %s\n", strings.Join(f.Estimated, ", "))
	}

	return b.String()
}

func writeFact(b *strings.Builder, label, value string, estimated bool) {
	suffix := ""
	if estimated {
		suffix = " (estimated)"
	}
	fmt.Fprintf(b, "  %-15s %s%s\n", label+":", value, suffix)
}
