package config

import (
	"runtime"
)

// PlatformDefaults holds platform-specific default values.
type PlatformDefaults struct {
	LogFile     string
	ConfigPath  string
	ExporterURL string
}

// GetPlatformDefaults returns defaults based on runtime.GOOS.
func GetPlatformDefaults() PlatformDefaults {
	switch runtime.GOOS {
	case "windows":
		return PlatformDefaults{
			LogFile:     `C:\ProgramData\Hwprobe\hwprobe.log`,
			ConfigPath:  `C:\ProgramData\Hwprobe\config.yaml`,
			ExporterURL: "http://localhost:9182/metrics", // windows_exporter
		}
	case "freebsd":
		return PlatformDefaults{
			LogFile:     "/var/log/hwprobe/hwprobe.log",
			ConfigPath:  "/usr/local/etc/hwprobe/config.yaml",
			ExporterURL: "http://localhost:9100/metrics", // node_exporter
		}
	default:
		// Linux and anything Linux-like
		return PlatformDefaults{
			LogFile:     "/var/log/hwprobe/hwprobe.log",
			ConfigPath:  "/etc/hwprobe/config.yaml",
			ExporterURL: "http://localhost:9100/metrics", // node_exporter
		}
	}
}

// GetDefaultConfigPath returns the platform-specific default config path.
func GetDefaultConfigPath() string {
	return GetPlatformDefaults().ConfigPath
}
