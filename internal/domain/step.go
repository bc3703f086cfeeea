// Package domain provides shared domain types for questline.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case.
package domain

import (
	"context"
	"time"

	"github.com/averlon/questline/internal/errors"
)

// StepType identifies which executor performs a step's work.
// Step kinds are a closed tagged set dispatched through the executor
// registry; new behavior is added by registering a custom callable,
// not by adding types.
type StepType string

// Step type constants define the closed set of built-in step kinds.
const (
	// StepTypeGather collects a resource: navigate, locate the node,
	// trigger the gather action, repeat until a count target or timeout.
	StepTypeGather StepType = "gather"

	// StepTypeCombat engages enemies: locate, attack, run the skill
	// rotation while in combat, count kills until a target or timeout.
	StepTypeCombat StepType = "combat"

	// StepTypeInteract performs a single interaction with an on-screen
	// target (NPC, door, quest item).
	StepTypeInteract StepType = "interact"

	// StepTypeMoveTo issues movement toward a tracked objective for a
	// fixed duration. Best-effort, no arrival detection.
	StepTypeMoveTo StepType = "move_to"

	// StepTypeWait pauses for a configured duration.
	StepTypeWait StepType = "wait"

	// StepTypeCustom invokes a callable registered by name, letting
	// embedders plug arbitrary logic into a chain.
	StepTypeCustom StepType = "custom"
)

// String returns the string representation of the StepType.
func (t StepType) String() string {
	return string(t)
}

// ValidStepTypes returns all built-in step types.
func ValidStepTypes() []StepType {
	return []StepType{
		StepTypeGather,
		StepTypeCombat,
		StepTypeInteract,
		StepTypeMoveTo,
		StepTypeWait,
		StepTypeCustom,
	}
}

// IsValidStepType reports whether t is one of the built-in step types.
func IsValidStepType(t StepType) bool {
	for _, valid := range ValidStepTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// Condition is a predicate consulted around step execution. Used for
// preconditions (gate execution), postconditions (confirm world state),
// and custom step callables. A nil Condition means always-pass.
// Implementations must honor ctx cancellation.
type Condition func(ctx context.Context) (bool, error)

// Hook is a side-effecting lifecycle callback with no return value.
// A nil Hook is a no-op. Hooks run on the orchestration goroutine and
// should return promptly.
type Hook func(ctx context.Context)

// Step is the atomic unit of orchestrated work within a chain.
// The orchestrator mutates Status and RetryCount during a run; all
// other fields are fixed at construction.
//
// Example JSON representation:
//
//	{
//	  "id": "mine-iron",
//	  "name": "Mine iron ore",
//	  "type": "gather",
//	  "config": {"target": "iron_vein", "count": 5, "gather_key": "f"},
//	  "max_retry": 2,
//	  "timeout": 120000000000,
//	  "status": "pending",
//	  "retry_count": 0
//	}
type Step struct {
	// ID uniquely identifies the step within its chain.
	ID string `json:"id"`

	// Name is the human-readable step name used in logs and summaries.
	Name string `json:"name"`

	// Type selects the executor that performs this step.
	Type StepType `json:"type"`

	// Config is the opaque configuration mapping interpreted by the
	// matching executor. Values are normalized into typed executor
	// configs at dispatch time.
	Config map[string]any `json:"config,omitempty"`

	// Priority orders chains at schedule time; within a single chain's
	// sequential run it is inert (steps execute in list order).
	Priority int `json:"priority,omitempty"`

	// MaxRetry is the retry budget after the first failed attempt.
	// A step with MaxRetry 2 executes at most 3 times.
	MaxRetry int `json:"max_retry"`

	// Timeout bounds a single execution attempt. Zero means the
	// runtime default applies.
	Timeout time.Duration `json:"timeout,omitempty"`

	// Status is the step's position in the state machine for the
	// current pass.
	Status StepStatus `json:"status"`

	// RetryCount is the number of retries consumed in the current pass.
	// Never exceeds MaxRetry; stays zero for skipped steps.
	RetryCount int `json:"retry_count"`

	// Precondition gates execution. False yields Skipped without
	// invoking the executor. Nil means always run.
	Precondition Condition `json:"-"`

	// Postcondition confirms the intended world-state effect after the
	// executor reports. False forces failure regardless of the
	// executor's own signal. Nil means trust the executor.
	Postcondition Condition `json:"-"`

	// OnStart runs just before the executor, after the precondition
	// passes.
	OnStart Hook `json:"-"`

	// OnComplete runs after the step reaches Completed.
	OnComplete Hook `json:"-"`

	// OnFail runs once the step's retry budget is exhausted and it is
	// left Failed.
	OnFail Hook `json:"-"`
}

// Reset returns the step to its pre-run state: Pending with a zero
// retry count. Called once per chain pass setup.
func (s *Step) Reset() {
	s.Status = StepStatusPending
	s.RetryCount = 0
}

// Terminal reports whether the step has reached a terminal status.
func (s *Step) Terminal() bool {
	switch s.Status {
	case StepStatusCompleted, StepStatusFailed, StepStatusSkipped:
		return true
	case StepStatusPending, StepStatusInProgress:
		return false
	default:
		return false
	}
}

// Validate checks the step definition for structural problems.
func (s *Step) Validate() error {
	if s.ID == "" {
		return errors.Wrap(errors.ErrStepInvalid, "step id is required")
	}
	if !IsValidStepType(s.Type) {
		return errors.Wrapf(errors.ErrStepInvalid, "step %q has unknown type %q", s.ID, s.Type)
	}
	if s.MaxRetry < 0 {
		return errors.Wrapf(errors.ErrStepInvalid, "step %q has negative max_retry", s.ID)
	}
	if s.Timeout < 0 {
		return errors.Wrapf(errors.ErrStepInvalid, "step %q has negative timeout", s.ID)
	}
	return nil
}

// Clone returns a deep copy of the step. Hook and condition references
// are shared (they are immutable funcs); the config map is copied.
func (s *Step) Clone() *Step {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Config != nil {
		clone.Config = make(map[string]any, len(s.Config))
		for k, v := range s.Config {
			clone.Config[k] = v
		}
	}
	return &clone
}
