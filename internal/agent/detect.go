package agent

import (
	"context"
	"fmt"
	"io"

	"github.com/stone-age-io/hwprobe/internal/bootstage"
	"github.com/stone-age-io/hwprobe/internal/config"
	"github.com/stone-age-io/hwprobe/internal/facts"
	"github.com/stone-age-io/hwprobe/internal/forward"
	"github.com/stone-age-io/hwprobe/internal/probe"
	"github.com/stone-age-io/hwprobe/internal/report"
	"github.com/stone-age-io/hwprobe/internal/tier"
	"go.uber.org/zap"
)

// Detector wires a probe, the boot-stage machine, and the presenters for
// one configuration. It is reused across runs in agent mode; each run
// still produces its own snapshot and result.
type Detector struct {
	cfg       *config.Config
	logger    *zap.Logger
	probe     probe.Probe
	out       io.Writer
	forwarder *forward.Forwarder
}

// NewDetector builds a detector from configuration. out receives the
// textual report or the structured encoding depending on output.format.
func NewDetector(cfg *config.Config, logger *zap.Logger, out io.Writer, fwd *forward.Forwarder) (*Detector, error) {
	p, err := probe.New(cfg.Probe.Source, cfg.Probe.ExporterURL, logger, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create probe: %w", err)
	}
	return &Detector{
		cfg:       cfg,
		logger:    logger,
		probe:     p,
		out:       out,
		forwarder: fwd,
	}, nil
}

// Detect runs one full probe→classify→present sequence. The returned
// error is non-nil only for total probe failure or presenter failure; the
// default-substitution path completes normally.
func (d *Detector) Detect(ctx context.Context) error {
	presenters := []bootstage.Presenter{d.present}
	if d.forwarder != nil {
		presenters = append(presenters, d.forward(ctx))
	}

	machine := bootstage.New(d.probe, d.logger, presenters,
		bootstage.WithRetryBudget(d.cfg.Probe.RetryAttempts))

	_, _, err := machine.Run(ctx)
	return err
}

// present renders the result to the output writer in the configured
// format.
func (d *Detector) present(f *facts.HardwareFacts, r tier.Result) error {
	if d.cfg.Output.Format == "json" {
		data, err := report.Encode(f, r)
		if err != nil {
			return err
		}
		if _, err := d.out.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write encoding: %w", err)
		}
		return nil
	}

	if _, err := io.WriteString(d.out, report.Render(f, r)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// forward publishes the structured encoding to the downstream service.
func (d *Detector) forward(ctx context.Context) bootstage.Presenter {
	return func(f *facts.HardwareFacts, r tier.Result) error {
		data, err := report.Encode(f, r)
		if err != nil {
			return err
		}
		return d.forwarder.Publish(ctx, data)
	}
}
