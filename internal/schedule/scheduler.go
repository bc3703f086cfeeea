// Package schedule runs multiple chains under a selectable ordering
// policy, with an optional safety gate checked before each chain.
//
// Import rules:
//   - CAN import: internal/clock, internal/constants, internal/domain, internal/errors, internal/quest, std lib
//   - MUST NOT import: internal/cli
package schedule

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/averlon/questline/internal/clock"
	"github.com/averlon/questline/internal/constants"
	"github.com/averlon/questline/internal/domain"
	questerrors "github.com/averlon/questline/internal/errors"
	"github.com/averlon/questline/internal/quest"
)

// Runner is the orchestrator surface the scheduler drives.
// *quest.Orchestrator satisfies it.
type Runner interface {
	Chains() []*domain.Chain
	RunChain(ctx context.Context, chainID string, opts ...quest.RunOption) (bool, error)
}

// Scheduler runs the runner's enabled chains under one policy. It is
// single-threaded: chains never execute in parallel, and cancellation
// is observed cooperatively between chains and rounds.
type Scheduler struct {
	runner     Runner
	clk        clock.Clock
	logger     zerolog.Logger
	policy     Policy
	gate       Gate
	gatePolicy GatePolicy
	roundDelay time.Duration
	maxRounds  int
	runOpts    []quest.RunOption
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithGate installs a pre-chain gate and the policy applied when it
// reports a fatal condition.
func WithGate(gate Gate, policy GatePolicy) Option {
	return func(s *Scheduler) {
		s.gate = gate
		s.gatePolicy = policy
	}
}

// WithRoundDelay overrides the pause between rounds.
func WithRoundDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		s.roundDelay = d
	}
}

// WithMaxRounds overrides the round cap. Values below one are ignored.
func WithMaxRounds(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxRounds = n
		}
	}
}

// WithChainRunOptions forwards the given options to every chain run,
// e.g. a pass cap applied schedule-wide.
func WithChainRunOptions(opts ...quest.RunOption) Option {
	return func(s *Scheduler) {
		s.runOpts = opts
	}
}

// NewScheduler creates a scheduler over the given runner.
func NewScheduler(runner Runner, policy Policy, clk clock.Clock, logger zerolog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		runner:     runner,
		clk:        clk,
		logger:     logger.With().Str("component", "scheduler").Str("policy", policy.String()).Logger(),
		policy:     policy,
		gatePolicy: GateStopAll,
		roundDelay: constants.DefaultRoundDelay,
		maxRounds:  constants.DefaultMaxRounds,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the schedule to completion. It returns true when every
// chain run succeeded and nothing was gate-skipped. The error is nil
// unless the schedule was stopped, the gate aborted it, or no enabled
// chain was registered.
func (s *Scheduler) Run(ctx context.Context) (bool, error) {
	chains := s.enabledChains()
	if len(chains) == 0 {
		return false, questerrors.ErrNoChains
	}

	s.logger.Info().Int("chains", len(chains)).Msg("schedule started")

	switch s.policy {
	case PolicySequential:
		return s.runSequential(ctx, chains)
	case PolicyPriority:
		return s.runPriority(ctx, chains)
	case PolicyRounds:
		return s.runRounds(ctx, chains)
	default:
		return false, questerrors.Wrapf(questerrors.ErrUnknownPolicy, "%q", s.policy)
	}
}

// enabledChains returns the runner's enabled chains in registration
// order.
func (s *Scheduler) enabledChains() []*domain.Chain {
	var out []*domain.Chain
	for _, chain := range s.runner.Chains() {
		if chain.Enabled {
			out = append(out, chain)
		}
	}
	return out
}

// runSequential runs each chain once, highest priority first. Ties keep
// registration order.
func (s *Scheduler) runSequential(ctx context.Context, chains []*domain.Chain) (bool, error) {
	ordered := make([]*domain.Chain, len(chains))
	copy(ordered, chains)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	allOK := true
	for _, chain := range ordered {
		ok, err := s.runOne(ctx, chain)
		if err != nil {
			return false, err
		}
		allOK = allOK && ok
	}
	return allOK, nil
}

// runPriority repeatedly picks the highest-priority chain remaining in
// the pool. With static priorities this matches sequential order, but
// the pool model leaves room for runtime priority changes.
func (s *Scheduler) runPriority(ctx context.Context, chains []*domain.Chain) (bool, error) {
	pool := make([]*domain.Chain, len(chains))
	copy(pool, chains)

	allOK := true
	for len(pool) > 0 {
		best := 0
		for i, chain := range pool {
			if chain.Priority > pool[best].Priority {
				best = i
			}
		}
		chain := pool[best]
		pool = append(pool[:best], pool[best+1:]...)

		ok, err := s.runOne(ctx, chain)
		if err != nil {
			return false, err
		}
		allOK = allOK && ok
	}
	return allOK, nil
}

// runRounds runs every chain once per round, repeating rounds while any
// chain has its loop flag set, up to the round cap. Each chain runs
// with the single-pass override; cross-round looping belongs to the
// scheduler here.
func (s *Scheduler) runRounds(ctx context.Context, chains []*domain.Chain) (bool, error) {
	allOK := true
	round := 0
	for {
		round++
		s.logger.Info().Int("round", round).Msg("round started")
		for _, chain := range chains {
			ok, err := s.runOne(ctx, chain, quest.WithRunOnce())
			if err != nil {
				return false, err
			}
			allOK = allOK && ok
		}

		if !s.anyLooping(chains) {
			break
		}
		if round >= s.maxRounds {
			s.logger.Info().Int("rounds", round).Msg("round cap reached")
			break
		}
		if err := s.clk.Sleep(ctx, s.roundDelay); err != nil {
			return false, questerrors.Wrap(questerrors.ErrExecutionStopped, "round delay interrupted")
		}
	}
	return allOK, nil
}

// anyLooping reports whether any chain still requests another round.
func (s *Scheduler) anyLooping(chains []*domain.Chain) bool {
	for _, chain := range chains {
		if chain.Loop {
			return true
		}
	}
	return false
}

// runOne gates and runs a single chain. The returned error is non-nil
// only for cancellation or a fatal gate under GateStopAll; a gate skip
// or failed chain run resolves to ok=false.
func (s *Scheduler) runOne(ctx context.Context, chain *domain.Chain, opts ...quest.RunOption) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, questerrors.Wrapf(questerrors.ErrExecutionStopped, "schedule: %v", err)
	}

	if skip, err := s.checkGate(ctx, chain); err != nil {
		return false, err
	} else if skip {
		return false, nil
	}

	runOpts := make([]quest.RunOption, 0, len(s.runOpts)+len(opts))
	runOpts = append(runOpts, s.runOpts...)
	runOpts = append(runOpts, opts...)

	ok, err := s.runner.RunChain(ctx, chain.ID, runOpts...)
	if err != nil {
		return false, err
	}
	if !ok {
		s.logger.Warn().Str("chain_id", chain.ID).Msg("chain run failed")
	}
	return ok, nil
}

// checkGate consults the gate before a chain run. Under GateSkipChain a
// fatal condition skips the chain; under GateStopAll it aborts the
// schedule.
func (s *Scheduler) checkGate(ctx context.Context, chain *domain.Chain) (bool, error) {
	if s.gate == nil {
		return false, nil
	}
	err := s.gate.Check(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, questerrors.ErrFatalCondition) {
		err = questerrors.Wrapf(questerrors.ErrFatalCondition, "%v", err)
	}
	if s.gatePolicy == GateSkipChain {
		s.logger.Warn().Err(err).Str("chain_id", chain.ID).Msg("gate fatal, skipping chain")
		return true, nil
	}
	s.logger.Error().Err(err).Str("chain_id", chain.ID).Msg("gate fatal, stopping schedule")
	return false, err
}
