package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/stone-age-io/hwprobe/internal/agent"
)

var serviceCmd = &cobra.Command{
	Use:       "service {install|uninstall|start|stop|restart|run}",
	Short:     "Manage the agent as a system service",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"install", "uninstall", "start", "stop", "restart", "run"},
	RunE:      runService,
}

func runService(cmd *cobra.Command, args []string) error {
	action := args[0]

	if action == "run" {
		a, err := newAgent(io.Discard)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hwprobe: %v\n", err)
			return err
		}
		return agent.RunService(a)
	}

	if err := agent.ControlService(action); err != nil {
		fmt.Fprintf(os.Stderr, "hwprobe: %v\n", err)
		return err
	}
	fmt.Printf("service %s: done\n", action)
	return nil
}
