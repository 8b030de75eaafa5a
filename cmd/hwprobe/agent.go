package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/stone-age-io/hwprobe/internal/agent"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run detection on an interval and forward profiles",
	Long: `Agent mode re-runs hardware detection on the configured interval and
forwards the structured encoding downstream after every run. Reports are
not written to stdout in this mode; use the log file to follow runs.`,
	Args: cobra.NoArgs,
	RunE: runAgent,
}

func runAgent(cmd *cobra.Command, args []string) error {
	a, err := newAgent(io.Discard)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hwprobe: %v\n", err)
		return err
	}
	if err := a.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "hwprobe: %v\n", err)
		return err
	}
	return nil
}

// newAgent loads configuration and constructs the interval agent.
func newAgent(out io.Writer) (*agent.Agent, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := agent.NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	return agent.New(cfg, logger, out, version)
}
