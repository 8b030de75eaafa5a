// Package agent hosts the long-running mode: detection re-run on a fixed
// interval with the profile forwarded downstream after every run.
package agent

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-co-op/gocron/v2"
	"github.com/stone-age-io/hwprobe/internal/config"
	"github.com/stone-age-io/hwprobe/internal/forward"
	"go.uber.org/zap"
)

// Agent re-runs hardware detection on an interval. Every run owns its own
// fact snapshot and classification result; nothing is shared between runs
// except the connections.
type Agent struct {
	config    *config.Config
	logger    *zap.Logger
	detector  *Detector
	forwarder *forward.Forwarder
	scheduler gocron.Scheduler
	version   string
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates an agent from configuration. The report writer receives the
// output of every scheduled run; io.Discard is a reasonable choice when
// only forwarding matters.
func New(cfg *config.Config, logger *zap.Logger, out io.Writer, version string) (*Agent, error) {
	ctx, cancel := context.WithCancel(context.Background())

	var fwd *forward.Forwarder
	if cfg.Publish.Enabled {
		if err := forward.BootstrapCredentials(&cfg.Publish.NATS.Auth, cfg.DeviceID, logger); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to bootstrap credentials: %w", err)
		}
		f, err := forward.New(&cfg.Publish, cfg.DeviceID, logger)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to connect forwarder: %w", err)
		}
		fwd = f
	}

	detector, err := NewDetector(cfg, logger, out, fwd)
	if err != nil {
		cancel()
		if fwd != nil {
			fwd.Close()
		}
		return nil, err
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		cancel()
		if fwd != nil {
			fwd.Close()
		}
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	a := &Agent{
		config:    cfg,
		logger:    logger,
		detector:  detector,
		forwarder: fwd,
		scheduler: scheduler,
		version:   version,
		ctx:       ctx,
		cancel:    cancel,
	}

	if _, err := scheduler.NewJob(
		gocron.DurationJob(cfg.Agent.Interval),
		gocron.NewTask(a.runDetection),
	); err != nil {
		cancel()
		if fwd != nil {
			fwd.Close()
		}
		return nil, fmt.Errorf("failed to schedule detection job: %w", err)
	}

	return a, nil
}

// Run starts the agent and blocks until shutdown. The first detection
// runs immediately; subsequent runs follow the configured interval.
func (a *Agent) Run() error {
	a.logger.Info("Agent running",
		zap.String("device_id", a.config.DeviceID),
		zap.String("version", a.version),
		zap.Duration("interval", a.config.Agent.Interval))

	a.runDetection()
	a.scheduler.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		a.logger.Info("Received shutdown signal")
	case <-a.ctx.Done():
		a.logger.Info("Context cancelled")
	}

	return a.Shutdown()
}

// Stop requests shutdown from another goroutine (used by the service
// wrapper).
func (a *Agent) Stop() {
	a.cancel()
}

// Shutdown stops the scheduler and drains the forwarder.
func (a *Agent) Shutdown() error {
	a.logger.Info("Shutting down agent gracefully")
	a.cancel()

	if err := a.scheduler.Shutdown(); err != nil {
		a.logger.Error("Error shutting down scheduler", zap.Error(err))
	}

	if a.forwarder != nil {
		drainCtx, drainCancel := context.WithTimeout(context.Background(), a.config.Publish.NATS.DrainTimeout)
		defer drainCancel()
		if err := a.forwarder.Drain(drainCtx); err != nil {
			a.logger.Error("Error draining forwarder", zap.Error(err))
		}
	}

	a.logger.Info("Agent shutdown complete")
	a.logger.Sync()
	return nil
}

// runDetection executes one scheduled detection run. Failures are logged,
// never fatal: the next interval gets a fresh attempt.
func (a *Agent) runDetection() {
	if err := a.detector.Detect(a.ctx); err != nil {
		a.logger.Error("Scheduled detection failed", zap.Error(err))
	}
}
