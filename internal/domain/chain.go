package domain

import (
	"time"

	"github.com/averlon/questline/internal/errors"
)

// LoopResetPolicy controls what happens to step state between passes of
// a looping chain. The original behavior carried statuses across passes,
// so a step that exhausted its retries in pass one never ran again; the
// policy makes that choice explicit and testable per chain.
type LoopResetPolicy string

// Loop reset policy constants.
const (
	// LoopKeepState carries step statuses and retry counts across loop
	// passes. A step that failed out stays failed for the rest of the
	// run ("give up permanently").
	LoopKeepState LoopResetPolicy = "keep_state"

	// LoopFreshState resets every step to pending with a zero retry
	// count before each pass, so each pass starts clean.
	LoopFreshState LoopResetPolicy = "fresh_state"
)

// String returns the string representation of the LoopResetPolicy.
func (p LoopResetPolicy) String() string {
	return string(p)
}

// Chain is a named, ordered sequence of steps. Steps execute in list
// order; the Priority field orders chains relative to each other at
// schedule time and never reorders steps within the chain.
//
// A chain retains its step list across runs. The orchestrator resets
// step state at the top of each run, so the same chain value can be
// run repeatedly, but a single step instance must never be shared
// between chains that may run concurrently.
type Chain struct {
	// ID uniquely identifies the chain within the orchestrator.
	ID string `json:"id"`

	// Name is the display name used in logs and summaries.
	Name string `json:"name"`

	// Description explains what the chain accomplishes.
	Description string `json:"description,omitempty"`

	// Enabled marks the chain as runnable. Disabled chains are ignored
	// by the scheduler.
	Enabled bool `json:"enabled"`

	// Loop requests another pass after each completed pass.
	Loop bool `json:"loop"`

	// LoopDelay is the pause between passes when Loop is set.
	LoopDelay time.Duration `json:"loop_delay,omitempty"`

	// LoopReset selects the between-pass step state policy when Loop is
	// set. Empty defaults to LoopKeepState.
	LoopReset LoopResetPolicy `json:"loop_reset,omitempty"`

	// Priority orders chains at schedule time; higher runs first.
	Priority int `json:"priority"`

	// Steps is the ordered work list. Order is execution order.
	Steps []*Step `json:"steps"`
}

// ResetPolicy returns the chain's loop reset policy, defaulting to
// LoopKeepState when unset.
func (c *Chain) ResetPolicy() LoopResetPolicy {
	if c.LoopReset == "" {
		return LoopKeepState
	}
	return c.LoopReset
}

// ResetSteps returns every step to pending with a zero retry count.
func (c *Chain) ResetSteps() {
	for _, step := range c.Steps {
		step.Reset()
	}
}

// Step returns the step with the given id, or nil if absent.
func (c *Chain) Step(id string) *Step {
	for _, step := range c.Steps {
		if step.ID == id {
			return step
		}
	}
	return nil
}

// Validate checks the chain definition for structural problems:
// required identity fields, valid steps, and step id uniqueness.
func (c *Chain) Validate() error {
	if c.ID == "" {
		return errors.Wrap(errors.ErrChainInvalid, "chain id is required")
	}
	if c.Name == "" {
		return errors.Wrapf(errors.ErrChainInvalid, "chain %q has no name", c.ID)
	}
	if c.LoopDelay < 0 {
		return errors.Wrapf(errors.ErrChainInvalid, "chain %q has negative loop_delay", c.ID)
	}
	switch c.LoopReset {
	case "", LoopKeepState, LoopFreshState:
	default:
		return errors.Wrapf(errors.ErrChainInvalid, "chain %q has unknown loop_reset %q", c.ID, c.LoopReset)
	}
	seen := make(map[string]struct{}, len(c.Steps))
	for _, step := range c.Steps {
		if err := step.Validate(); err != nil {
			return errors.Wrapf(err, "chain %q", c.ID)
		}
		if _, dup := seen[step.ID]; dup {
			return errors.Wrapf(errors.ErrChainInvalid, "chain %q has duplicate step id %q", c.ID, step.ID)
		}
		seen[step.ID] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy of the chain, including cloned steps.
func (c *Chain) Clone() *Chain {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Steps != nil {
		clone.Steps = make([]*Step, len(c.Steps))
		for i, step := range c.Steps {
			clone.Steps[i] = step.Clone()
		}
	}
	return &clone
}
