// Package bootstage sequences one detection run as an explicit state
// machine: control is transferred in, the machine probes, classifies,
// presents, and halts. The profile is computed exactly once per run;
// there is no path back into probing after classification.
package bootstage

import (
	"context"
	"errors"
	"fmt"

	"github.com/stone-age-io/hwprobe/internal/facts"
	"github.com/stone-age-io/hwprobe/internal/probe"
	"github.com/stone-age-io/hwprobe/internal/tier"
	"go.uber.org/zap"
)

// State is one stage of the detection sequence.
type State string

const (
	StateTransferred State = "transferred"
	StateProbing     State = "probing"
	StateRetry       State = "retry"
	StateClassified  State = "classified"
	StatePresented   State = "presented"
	StateHalt        State = "halt"
)

// defaultRetryBudget bounds transient probe retries before the machine
// falls back to default facts.
const defaultRetryBudget = 3

// Presenter consumes the finished facts and classification: a console
// report, the structured encoding, a forwarder. Presenters run in order
// after classification and must not mutate their inputs.
type Presenter func(f *facts.HardwareFacts, r tier.Result) error

// Machine drives one run from transfer of control to halt.
type Machine struct {
	probe       probe.Probe
	presenters  []Presenter
	logger      *zap.Logger
	retryBudget int
	fallbackEnv facts.HostEnvironment

	state   State
	history []State
}

// Option adjusts machine construction.
type Option func(*Machine)

// WithRetryBudget overrides the transient-failure retry bound.
func WithRetryBudget(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.retryBudget = n
		}
	}
}

// WithFallbackEnvironment sets the environment tag used on the
// all-defaults snapshot when probing fails entirely.
func WithFallbackEnvironment(env facts.HostEnvironment) Option {
	return func(m *Machine) { m.fallbackEnv = env }
}

// New creates a machine in the Transferred state, as if the prior loader
// stage had just handed over control.
func New(p probe.Probe, logger *zap.Logger, presenters []Presenter, opts ...Option) *Machine {
	m := &Machine{
		probe:       p,
		presenters:  presenters,
		logger:      logger,
		retryBudget: defaultRetryBudget,
		fallbackEnv: facts.EnvUnsupported,
		state:       StateTransferred,
		history:     []State{StateTransferred},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// History returns the ordered states the machine has passed through.
func (m *Machine) History() []State {
	out := make([]State, len(m.history))
	copy(out, m.history)
	return out
}

func (m *Machine) transition(next State) {
	m.logger.Debug("Boot stage transition",
		zap.String("from", string(m.state)),
		zap.String("to", string(next)))
	m.state = next
	m.history = append(m.history, next)
}

// Run executes the full sequence and returns the facts and result it
// presented. An error is returned only for total probe failure
// (unsupported environment) or a presenter failure; transient probe
// errors are absorbed by the bounded retry and default-substitution
// policy.
func (m *Machine) Run(ctx context.Context) (*facts.HardwareFacts, tier.Result, error) {
	if m.state != StateTransferred {
		return nil, tier.Result{}, fmt.Errorf("machine already ran (state %s)", m.state)
	}

	m.transition(StateProbing)
	f, err := m.probeBounded(ctx)
	if err != nil {
		m.transition(StateHalt)
		return nil, tier.Result{}, err
	}

	if err := f.Validate(); err != nil {
		// A probe returning invalid facts is a contract violation; recover
		// with the default snapshot rather than crashing the boot path.
		m.logger.Error("Probe returned invalid facts, substituting defaults", zap.Error(err))
		f = probe.DefaultFacts(f.HostEnvironment)
	}

	result := tier.Classify(f)
	m.transition(StateClassified)
	m.logger.Info("Hardware classified",
		zap.String("tier", result.Tier.Label),
		zap.String("optimization", string(result.Optimization)),
		zap.Uint64("memory_bytes", f.MemoryBytes),
		zap.Int("cores", f.LogicalCores))

	for _, present := range m.presenters {
		if err := present(f, result); err != nil {
			m.transition(StateHalt)
			return f, result, fmt.Errorf("presentation failed: %w", err)
		}
	}
	m.transition(StatePresented)

	m.transition(StateHalt)
	return f, result, nil
}

// probeBounded retries transient probe failures up to the retry budget,
// then falls back to the all-defaults snapshot. Unsupported-environment
// errors are final: no classification is attempted for them.
func (m *Machine) probeBounded(ctx context.Context) (*facts.HardwareFacts, error) {
	var lastErr error
	for attempt := 1; attempt <= m.retryBudget; attempt++ {
		f, err := m.probe.Probe(ctx)
		if err == nil {
			return f, nil
		}
		if errors.Is(err, probe.ErrUnsupported) {
			return nil, err
		}
		lastErr = err
		m.logger.Warn("Probe attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("budget", m.retryBudget),
			zap.Error(err))
		if attempt < m.retryBudget {
			m.transition(StateRetry)
			m.transition(StateProbing)
		}
	}

	m.logger.Warn("Probe retries exhausted, continuing with default facts",
		zap.Error(lastErr))
	return probe.DefaultFacts(m.fallbackEnv), nil
}
