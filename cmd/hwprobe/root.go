package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stone-age-io/hwprobe/internal/agent"
	"github.com/stone-age-io/hwprobe/internal/config"
	"github.com/stone-age-io/hwprobe/internal/forward"
	"go.uber.org/zap"
)

var (
	cfgFile     string
	jsonOutput  bool
	probeSource string
	publishFlag bool

	rootCmd = &cobra.Command{
		Use:   "hwprobe",
		Short: "Probe hardware and classify the machine into a device tier",
		Long: `Hwprobe measures the machine it runs on (total physical memory, logical
core count, CPU identity, architecture) and maps the profile onto an
ordered set of device tiers, from calculator-class hardware to exascale
clusters, together with the optimization level a downstream stage should
apply.

By default it prints a human-readable report. Use --json for the stable
machine-readable encoding.

Examples:
  hwprobe                    # Detect and print the textual report
  hwprobe --json             # Print the structured encoding
  hwprobe --probe firmware   # Probe through raw kernel interfaces
  hwprobe agent              # Re-detect on an interval, forward profiles
  hwprobe service install    # Register the agent with the service manager`,
		Args: cobra.NoArgs,
		RunE: runDetect,
	}

	detectCmd = &cobra.Command{
		Use:   "detect",
		Short: "Probe the machine and print the classification",
		Args:  cobra.NoArgs,
		RunE:  runDetect,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: platform config path)")
	rootCmd.PersistentFlags().StringVar(&probeSource, "probe", "", "probe source: auto, builtin, firmware, exporter")
	rootCmd.PersistentFlags().BoolVar(&publishFlag, "publish", false, "forward the encoding to the configured NATS subject")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "print the structured encoding instead of the report")

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(serviceCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the configuration and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if probeSource != "" {
		cfg.Probe.Source = probeSource
	}
	if publishFlag {
		cfg.Publish.Enabled = true
	}
	return cfg, nil
}

// runDetect performs one detection run and writes the result to stdout.
// Exit status is zero for every completed classification, including the
// default-substitution path; only a probe that cannot run at all (or a
// broken configuration) fails the command.
func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hwprobe: %v\n", err)
		return err
	}
	if jsonOutput {
		cfg.Output.Format = "json"
	}

	logger, err := agent.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hwprobe: %v\n", err)
		return err
	}
	defer logger.Sync()

	var fwd *forward.Forwarder
	if cfg.Publish.Enabled {
		if err := forward.BootstrapCredentials(&cfg.Publish.NATS.Auth, cfg.DeviceID, logger); err != nil {
			logger.Error("Credential bootstrap failed", zap.Error(err))
			return err
		}
		fwd, err = forward.New(&cfg.Publish, cfg.DeviceID, logger)
		if err != nil {
			logger.Error("Forwarder connection failed", zap.Error(err))
			return err
		}
		defer fwd.Close()
	}

	detector, err := agent.NewDetector(cfg, logger, os.Stdout, fwd)
	if err != nil {
		logger.Error("Detector setup failed", zap.Error(err))
		return err
	}

	if err := detector.Detect(context.Background()); err != nil {
		logger.Error("Detection failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "hwprobe: %v\n", err)
		return err
	}

	return nil
}
