package constants

// StepStatus represents the state of a step in the questline state machine.
// Status values use snake_case for JSON serialization compatibility.
type StepStatus string

// Step status constants define the valid states a step can be in.
// These follow the per-attempt state machine:
//
//	Pending → InProgress, Skipped
//	InProgress → Completed, Failed, InProgress (retry re-entry)
//	Completed, Failed, Skipped → (terminal)
const (
	// StepStatusPending indicates a step has not yet begun its first
	// attempt in the current chain pass.
	StepStatusPending StepStatus = "pending"

	// StepStatusInProgress indicates an executor is actively working the step.
	StepStatusInProgress StepStatus = "in_progress"

	// StepStatusCompleted indicates the step finished successfully and,
	// when a postcondition was present, the world state confirmed it.
	StepStatusCompleted StepStatus = "completed"

	// StepStatusFailed indicates the step exhausted its retry budget
	// without success. The owning chain pass continues past it.
	StepStatusFailed StepStatus = "failed"

	// StepStatusSkipped indicates the step's precondition returned false
	// before any attempt. Skips never enter the retry loop.
	StepStatusSkipped StepStatus = "skipped"
)

// String returns the string representation of the StepStatus.
// This implements fmt.Stringer for convenient logging and debugging.
func (s StepStatus) String() string {
	return string(s)
}

// RunStatus represents the outcome of a whole chain run.
type RunStatus string

// Run status constants define the states a chain run can end in.
const (
	// RunStatusSucceeded indicates every step of the final pass ended
	// completed or skipped.
	RunStatusSucceeded RunStatus = "succeeded"

	// RunStatusFailed indicates at least one step of the final pass
	// ended failed.
	RunStatusFailed RunStatus = "failed"

	// RunStatusStopped indicates the run ended early through cancellation
	// or a stop request.
	RunStatusStopped RunStatus = "stopped"
)

// String returns the string representation of the RunStatus.
func (s RunStatus) String() string {
	return string(s)
}
