// Package quest provides chain orchestration for questline.
//
// This file implements the Orchestrator, which runs one chain to
// completion (or failure/loop exhaustion): it enforces the step state
// machine, applies retry and timeout budgets, aggregates statistics,
// and records run history.
package quest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/averlon/questline/internal/clock"
	"github.com/averlon/questline/internal/domain"
	questerrors "github.com/averlon/questline/internal/errors"
	"github.com/averlon/questline/internal/steps"
)

// currentRun tracks what the orchestrator is executing right now.
// Mutated only by the orchestration goroutine; read by StopCurrent and
// progress reporters.
type currentRun struct {
	chainID string
	stepID  string
	cancel  context.CancelFunc
}

// Orchestrator runs registered chains. One logical thread of control
// drives it: chains and steps never execute in parallel, and a step
// instance must not be shared between orchestrators.
type Orchestrator struct {
	mu      sync.RWMutex
	chains  map[string]*domain.Chain
	order   []string
	current *currentRun

	registry *steps.Registry
	clk      clock.Clock
	logger   zerolog.Logger
	metrics  Metrics
	stats    *Statistics
	history  *History
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMetrics sets the metrics collector. Default is NoopMetrics.
func WithMetrics(m Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithHistoryCapacity overrides the history ring capacity.
func WithHistoryCapacity(capacity int) Option {
	return func(o *Orchestrator) {
		o.history = NewHistory(capacity)
	}
}

// NewOrchestrator creates an orchestrator dispatching through the given
// executor registry.
func NewOrchestrator(registry *steps.Registry, clk clock.Clock, logger zerolog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		chains:   make(map[string]*domain.Chain),
		registry: registry,
		clk:      clk,
		logger:   logger.With().Str("component", "orchestrator").Logger(),
		metrics:  NoopMetrics{},
		stats:    NewStatistics(),
		history:  NewHistory(0),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Register adds a chain. The definition is validated and its id must
// not already be registered.
func (o *Orchestrator) Register(chain *domain.Chain) error {
	if chain == nil {
		return questerrors.Wrap(questerrors.ErrChainInvalid, "chain is nil")
	}
	if err := chain.Validate(); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.chains[chain.ID]; exists {
		return questerrors.Wrapf(questerrors.ErrChainExists, "%q", chain.ID)
	}
	o.chains[chain.ID] = chain
	o.order = append(o.order, chain.ID)
	return nil
}

// Unregister removes a chain by id. Unknown ids are ignored.
func (o *Orchestrator) Unregister(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.chains[id]; !exists {
		return
	}
	delete(o.chains, id)
	for i, registered := range o.order {
		if registered == id {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}

// Chain returns the registered chain with the given id.
func (o *Orchestrator) Chain(id string) (*domain.Chain, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	chain, ok := o.chains[id]
	return chain, ok
}

// Chains returns all registered chains in registration order.
func (o *Orchestrator) Chains() []*domain.Chain {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]*domain.Chain, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, o.chains[id])
	}
	return out
}

// runOptions holds per-run settings.
type runOptions struct {
	maxPasses int
	runOnce   bool
}

// RunOption configures a single RunChain invocation.
type RunOption func(*runOptions)

// WithMaxPasses bounds a looping chain to n full passes. Zero means
// unbounded (the chain loops until canceled).
func WithMaxPasses(n int) RunOption {
	return func(ro *runOptions) {
		ro.maxPasses = n
	}
}

// WithRunOnce forces a single pass regardless of the chain's loop flag.
// The rounds scheduler uses this; it owns cross-round looping itself.
func WithRunOnce() RunOption {
	return func(ro *runOptions) {
		ro.runOnce = true
	}
}

// RunChain runs the chain with the given id to completion. It returns
// true when no step of the final pass ended failed. The error is nil
// except for an unknown chain or a stopped/canceled run; step failures
// never surface as errors.
func (o *Orchestrator) RunChain(ctx context.Context, chainID string, opts ...RunOption) (bool, error) {
	var ro runOptions
	for _, opt := range opts {
		opt(&ro)
	}

	chain, ok := o.Chain(chainID)
	if !ok {
		o.logger.Error().Str("chain_id", chainID).Msg("chain not registered")
		return false, questerrors.Wrapf(questerrors.ErrChainNotFound, "%q", chainID)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.setCurrent(&currentRun{chainID: chainID, cancel: cancel})
	defer o.setCurrent(nil)

	// Fresh pass state, once per RunChain invocation.
	chain.ResetSteps()

	startedAt := o.clk.Now()
	o.metrics.ChainStarted(chain.ID, chain.Name)
	o.logger.Info().Str("chain_id", chain.ID).Str("chain", chain.Name).Int("steps", len(chain.Steps)).Msg("chain run started")

	passes := 0
	var runErr error
	for {
		passes++
		passStart := o.clk.Now()
		if err := o.runPass(runCtx, chain, passes); err != nil {
			runErr = err
			break
		}
		o.metrics.PassCompleted(chain.ID, passes, o.clk.Since(passStart))

		if !chain.Loop || ro.runOnce {
			break
		}
		if ro.maxPasses > 0 && passes >= ro.maxPasses {
			o.logger.Info().Str("chain_id", chain.ID).Int("passes", passes).Msg("loop pass cap reached")
			break
		}
		if err := o.clk.Sleep(runCtx, chain.LoopDelay); err != nil {
			runErr = questerrors.Wrap(questerrors.ErrExecutionStopped, "loop delay interrupted")
			break
		}
		o.resetForNextPass(chain)
	}

	status := o.runStatus(chain, runErr)
	success := status == domain.RunStatusSucceeded
	record := domain.HistoryRecord{
		ID:          uuid.NewString(),
		ChainID:     chain.ID,
		ChainName:   chain.Name,
		StartedAt:   startedAt,
		CompletedAt: o.clk.Now(),
		Passes:      passes,
		Status:      status,
		Success:     success,
		Stats:       o.stats.Snapshot(),
	}
	o.history.Append(record)
	o.metrics.ChainCompleted(chain.ID, passes, o.clk.Since(startedAt), status)

	o.logger.Info().
		Str("chain_id", chain.ID).
		Str("status", status.String()).
		Int("passes", passes).
		Int("attempted", record.Stats.Attempted).
		Int("completed", record.Stats.Completed).
		Int("failed", record.Stats.Failed).
		Int("skipped", record.Stats.Skipped).
		Msg("chain run finished")

	return success, runErr
}

// runPass executes every step of the chain in order. It returns an
// error only when the run was stopped or canceled; step failures are
// recorded and the pass continues (best-effort chain policy).
func (o *Orchestrator) runPass(ctx context.Context, chain *domain.Chain, pass int) error {
	for _, step := range chain.Steps {
		if err := ctx.Err(); err != nil {
			return questerrors.Wrapf(questerrors.ErrExecutionStopped, "pass %d: %v", pass, err)
		}
		// Keep-state passes leave failed-out steps terminal; they are
		// not re-attempted and not re-counted.
		if step.Terminal() {
			continue
		}

		o.setCurrentStep(step.ID)
		stepStart := o.clk.Now()
		status, err := o.executeStep(ctx, step, pass)
		o.setCurrentStep("")
		if err != nil {
			return err
		}
		o.stats.Record(status)
		o.metrics.StepExecuted(chain.ID, step.ID, step.Type, o.clk.Since(stepStart), status)
	}
	return nil
}

// executeStep drives one step through the state machine:
// precondition → run → postcondition → retry/advance. Every retry
// re-enters from the precondition check. The returned error is non-nil
// only for cancellation; executor faults resolve to a failed status.
func (o *Orchestrator) executeStep(ctx context.Context, step *domain.Step, pass int) (domain.StepStatus, error) {
	logger := o.logger.With().Str("step_id", step.ID).Str("step", step.Name).Str("type", step.Type.String()).Logger()

	for {
		if err := ctx.Err(); err != nil {
			return step.Status, questerrors.Wrapf(questerrors.ErrExecutionStopped, "step %q: %v", step.ID, err)
		}
		attemptCtx := domain.WithRunFacts(ctx, domain.RunFacts{Pass: pass, Retry: step.RetryCount})

		if step.Precondition != nil {
			met, err := step.Precondition(attemptCtx)
			if err != nil {
				logger.Debug().Err(err).Msg("precondition errored, treating as unmet")
				met = false
			}
			if !met {
				o.transition(logger, step, domain.StepStatusSkipped)
				logger.Info().Int("retry", step.RetryCount).Msg("step skipped, precondition unmet")
				return step.Status, nil
			}
		}

		if step.OnStart != nil {
			step.OnStart(attemptCtx)
		}
		if step.Status == domain.StepStatusPending {
			o.transition(logger, step, domain.StepStatusInProgress)
		}
		logger.Info().Int("retry", step.RetryCount).Int("max_retry", step.MaxRetry).Msg("step attempt started")

		outcome, err := o.dispatch(attemptCtx, step)
		success := err == nil && outcome != nil && outcome.Success
		if err != nil {
			// Faults stay local to the step; they count as a failed
			// attempt and never propagate past the orchestrator.
			logger.Warn().Err(err).Msg("step execution fault")
		}

		if success && step.Postcondition != nil {
			confirmed, postErr := step.Postcondition(attemptCtx)
			if postErr != nil {
				logger.Debug().Err(postErr).Msg("postcondition errored, treating as unmet")
				confirmed = false
			}
			if !confirmed {
				logger.Warn().Msg("postcondition unmet, forcing failure")
				success = false
			}
		}

		if success {
			o.transition(logger, step, domain.StepStatusCompleted)
			if outcome != nil && outcome.Output != "" {
				logger.Info().Str("output", outcome.Output).Msg("step completed")
			} else {
				logger.Info().Msg("step completed")
			}
			if step.OnComplete != nil {
				step.OnComplete(attemptCtx)
			}
			return step.Status, nil
		}

		if step.RetryCount < step.MaxRetry {
			step.RetryCount++
			logger.Info().Int("retry", step.RetryCount).Int("max_retry", step.MaxRetry).Msg("step failed, retrying")
			continue
		}

		o.transition(logger, step, domain.StepStatusFailed)
		logger.Warn().Int("retries", step.RetryCount).Msg("step failed, retry budget exhausted")
		if step.OnFail != nil {
			step.OnFail(attemptCtx)
		}
		return step.Status, nil
	}
}

// transition applies a status change through the state machine. The
// orchestrator only drives legal paths, so a rejection indicates a
// corrupted step and is logged rather than aborting the run.
func (o *Orchestrator) transition(logger zerolog.Logger, step *domain.Step, to domain.StepStatus) {
	if err := Transition(step, to); err != nil {
		logger.Warn().Err(err).Msg("status transition rejected")
		step.Status = to
	}
}

// dispatch resolves the executor and runs it, converting panics into
// execution faults at the step boundary.
func (o *Orchestrator) dispatch(ctx context.Context, step *domain.Step) (outcome *domain.StepOutcome, err error) {
	executor, err := o.registry.Get(step.Type)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			outcome = nil
			err = fmt.Errorf("%w: panic in %s executor: %v", questerrors.ErrExecutionFault, step.Type, r)
		}
	}()
	return executor.Execute(ctx, step)
}

// resetForNextPass applies the chain's loop reset policy between
// passes. Fresh-state resets everything; keep-state re-arms every step
// except those that exhausted their retry budget, which stay failed for
// the rest of the run.
func (o *Orchestrator) resetForNextPass(chain *domain.Chain) {
	if chain.ResetPolicy() == domain.LoopFreshState {
		chain.ResetSteps()
		return
	}
	for _, step := range chain.Steps {
		if step.Status == domain.StepStatusFailed && step.RetryCount >= step.MaxRetry {
			continue
		}
		step.Reset()
	}
}

// runStatus derives the run's final disposition from the final pass.
func (o *Orchestrator) runStatus(chain *domain.Chain, runErr error) domain.RunStatus {
	if runErr != nil {
		return domain.RunStatusStopped
	}
	for _, step := range chain.Steps {
		if step.Status == domain.StepStatusFailed {
			return domain.RunStatusFailed
		}
	}
	return domain.RunStatusSucceeded
}

// Statistics returns a snapshot of the process-lifetime counters.
func (o *Orchestrator) Statistics() domain.StatsSnapshot {
	return o.stats.Snapshot()
}

// ResetStatistics zeroes the counters.
func (o *Orchestrator) ResetStatistics() {
	o.stats.Reset()
}

// History returns the retained run records, oldest first.
func (o *Orchestrator) History() []domain.HistoryRecord {
	return o.history.Records()
}

// CurrentChain returns the id of the chain currently running, if any.
func (o *Orchestrator) CurrentChain() (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.current == nil {
		return "", false
	}
	return o.current.chainID, true
}

// CurrentStep returns the id of the step currently running, if any.
func (o *Orchestrator) CurrentStep() (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.current == nil || o.current.stepID == "" {
		return "", false
	}
	return o.current.stepID, true
}

// StopCurrent requests cooperative cancellation of the running chain
// and clears the current references. The run observes the request at
// the next loop boundary; in-flight primitives are not interrupted.
func (o *Orchestrator) StopCurrent() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return
	}
	o.logger.Info().Str("chain_id", o.current.chainID).Msg("stop requested")
	o.current.cancel()
	o.current = nil
}

// setCurrent swaps the current-run reference.
func (o *Orchestrator) setCurrent(run *currentRun) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = run
}

// setCurrentStep updates the current-step reference, keeping the run
// reference intact. No-op when the run was already cleared by a stop.
func (o *Orchestrator) setCurrentStep(stepID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return
	}
	o.current.stepID = stepID
}

// RunSummary formats a short human-readable summary of a history
// record for end-of-run logging.
func RunSummary(record domain.HistoryRecord) string {
	return fmt.Sprintf("%s: %s after %d pass(es) in %s (attempted %d, completed %d, failed %d, skipped %d)",
		record.ChainName, record.Status, record.Passes,
		record.CompletedAt.Sub(record.StartedAt).Round(time.Millisecond),
		record.Stats.Attempted, record.Stats.Completed, record.Stats.Failed, record.Stats.Skipped)
}
