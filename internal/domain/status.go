package domain

import "github.com/averlon/questline/internal/constants"

// Re-export StepStatus and RunStatus from constants package.
// This allows consumers to import domain types and status types together,
// providing a unified API for working with questline domain objects.
//
// Example usage:
//
//	import "github.com/averlon/questline/internal/domain"
//
//	step := domain.Step{
//	    Status: domain.StepStatusPending,
//	}
type (
	// StepStatus represents the state of a step in the questline state machine.
	StepStatus = constants.StepStatus

	// RunStatus represents the outcome of a whole chain run.
	RunStatus = constants.RunStatus
)

// Re-export StepStatus constants for convenience.
// These mirror the values in internal/constants/status.go.
const (
	// StepStatusPending indicates a step has not yet begun its first
	// attempt in the current chain pass.
	StepStatusPending = constants.StepStatusPending

	// StepStatusInProgress indicates an executor is actively working the step.
	StepStatusInProgress = constants.StepStatusInProgress

	// StepStatusCompleted indicates the step finished successfully.
	StepStatusCompleted = constants.StepStatusCompleted

	// StepStatusFailed indicates the step exhausted its retry budget.
	StepStatusFailed = constants.StepStatusFailed

	// StepStatusSkipped indicates the step's precondition returned false.
	StepStatusSkipped = constants.StepStatusSkipped
)

// Re-export RunStatus constants for convenience.
// These mirror the values in internal/constants/status.go.
const (
	// RunStatusSucceeded indicates every step of the final pass ended
	// completed or skipped.
	RunStatusSucceeded = constants.RunStatusSucceeded

	// RunStatusFailed indicates at least one step of the final pass
	// ended failed.
	RunStatusFailed = constants.RunStatusFailed

	// RunStatusStopped indicates the run ended early through cancellation
	// or a stop request.
	RunStatusStopped = constants.RunStatusStopped
)
