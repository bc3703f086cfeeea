// Package quest provides chain orchestration for questline.
//
// This file implements the step state machine, which enforces valid
// status transitions during a chain pass.
//
// Import rules:
//   - CAN import: internal/clock, internal/constants, internal/domain, internal/errors, internal/steps, std lib
//   - MUST NOT import: internal/schedule, internal/cli
package quest

import (
	"fmt"

	"github.com/averlon/questline/internal/domain"
	questerrors "github.com/averlon/questline/internal/errors"
)

// ValidTransitions defines all allowed step status transitions.
// Format: from_status -> []to_statuses
//
// The state machine follows this flow per attempt:
//
//	Pending → InProgress, Skipped
//	InProgress → Completed, Failed, Skipped
//	Completed, Failed, Skipped → (terminal)
//
// Retry re-entry does not appear here: a retried attempt stays
// InProgress until the budget resolves it. InProgress → Skipped covers
// a retry whose re-checked precondition went unmet.
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[domain.StepStatus][]domain.StepStatus{
	domain.StepStatusPending:    {domain.StepStatusInProgress, domain.StepStatusSkipped},
	domain.StepStatusInProgress: {domain.StepStatusCompleted, domain.StepStatusFailed, domain.StepStatusSkipped},
}

// IsValidTransition checks if a transition from one status to another is allowed.
// Returns false for transitions from terminal states or to the same state.
func IsValidTransition(from, to domain.StepStatus) bool {
	if from == to {
		return false
	}
	validTargets, exists := ValidTransitions[from]
	if !exists {
		return false // Terminal state or unknown state
	}
	for _, target := range validTargets {
		if target == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus returns true for states where no further transitions
// are allowed. Terminal states: Completed, Failed, Skipped.
func IsTerminalStatus(status domain.StepStatus) bool {
	_, exists := ValidTransitions[status]
	return !exists
}

// Transition validates and applies a status change to the step.
// Returns a wrapped ErrInvalidTransition when the change is not allowed
// by the state machine.
func Transition(step *domain.Step, to domain.StepStatus) error {
	if step == nil {
		return fmt.Errorf("%w: step is nil", questerrors.ErrInvalidTransition)
	}
	if !IsValidTransition(step.Status, to) {
		return fmt.Errorf("%w: step %q cannot transition from %s to %s",
			questerrors.ErrInvalidTransition, step.ID, step.Status, to)
	}
	step.Status = to
	return nil
}
