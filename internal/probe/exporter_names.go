package probe

import (
	"runtime"
)

// exporterMetricNames defines platform-specific Prometheus metric names
// used to derive hardware facts from a node exporter scrape.
type exporterMetricNames struct {
	MemoryTotal string  // Gauge: total physical memory bytes
	CPUTime     string  // Counter: per-core CPU time, used to count cores
	CoreLabel   string  // Label that identifies the core on CPUTime
	ArchInfo    string  // Gauge: uname/system info with machine label
	ArchLabel   string  // Label carrying the machine architecture
	VendorInfo  string  // Gauge: CPU info with vendor label
	VendorLabel string  // Label carrying the CPU vendor
	Clock       string  // Gauge: per-core clock frequency
	ClockToMHz  float64 // Multiplier converting the clock gauge to MHz
}

// getExporterMetricNames returns metric names for the exporter running on
// this platform (windows_exporter on Windows, node_exporter elsewhere).
func getExporterMetricNames() exporterMetricNames {
	if runtime.GOOS == "windows" {
		return exporterMetricNames{
			MemoryTotal: "windows_cs_physical_memory_bytes",
			CPUTime:     "windows_cpu_time_total",
			CoreLabel:   "core",
			ArchInfo:    "windows_cpu_info",
			ArchLabel:   "architecture",
			VendorInfo:  "windows_cpu_info",
			VendorLabel: "vendor_id",
			Clock:       "windows_cpu_core_frequency_mhz",
			ClockToMHz:  1,
		}
	}
	return exporterMetricNames{
		MemoryTotal: "node_memory_MemTotal_bytes",
		CPUTime:     "node_cpu_seconds_total",
		CoreLabel:   "cpu",
		ArchInfo:    "node_uname_info",
		ArchLabel:   "machine",
		VendorInfo:  "node_cpu_info",
		VendorLabel: "vendor",
		Clock:       "node_cpu_scaling_frequency_max_hertz",
		ClockToMHz:  1e-6,
	}
}
