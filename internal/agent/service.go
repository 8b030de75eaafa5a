package agent

import (
	"fmt"

	"github.com/kardianos/service"
)

// serviceConfig describes the agent to the host service manager
// (systemd, launchd, or Windows SCM).
func serviceConfig() *service.Config {
	return &service.Config{
		Name:        "hwprobe",
		DisplayName: "Hardware Profile Agent",
		Description: "Probes hardware and publishes the tier classification profile on an interval.",
		Arguments:   []string{"agent"},
	}
}

// program adapts Agent to the service manager lifecycle.
type program struct {
	agent *Agent
	done  chan error
}

func (p *program) Start(s service.Service) error {
	// Start must not block; Run owns the blocking loop.
	go func() {
		p.done <- p.agent.Run()
	}()
	return nil
}

func (p *program) Stop(s service.Service) error {
	p.agent.Stop()
	return <-p.done
}

// RunService runs the agent under the host service manager.
func RunService(a *Agent) error {
	prg := &program{agent: a, done: make(chan error, 1)}
	svc, err := service.New(prg, serviceConfig())
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return svc.Run()
}

// ControlService installs, uninstalls, starts, stops, or restarts the
// registered service.
func ControlService(action string) error {
	svc, err := service.New(&program{done: make(chan error, 1)}, serviceConfig())
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	if err := service.Control(svc, action); err != nil {
		return fmt.Errorf("service %s failed: %w", action, err)
	}
	return nil
}
