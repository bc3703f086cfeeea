// Package errors provides centralized error handling for questline.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrPerceptionMiss indicates a perception target or text pattern was
	// not found within its timeout budget. Expected during polling and
	// retried per policy; never logged above debug level.
	ErrPerceptionMiss = errors.New("perception target not found")

	// ErrPreconditionUnmet indicates a step's precondition returned false.
	// Expected; the step is skipped, not failed.
	ErrPreconditionUnmet = errors.New("precondition unmet")

	// ErrPostconditionUnmet indicates an executor reported success but the
	// step's postcondition could not confirm the effect in world state.
	// Treated as a step failure.
	ErrPostconditionUnmet = errors.New("postcondition unmet")

	// ErrExecutionFault indicates an unexpected fault inside an executor.
	// Caught at the step boundary, logged, and treated as a failure; never
	// escalated past the orchestrator.
	ErrExecutionFault = errors.New("execution fault")

	// ErrFatalCondition indicates an externally observed terminal condition
	// (e.g. the character is dead). The only condition permitted to abort
	// a running chain or the whole schedule.
	ErrFatalCondition = errors.New("fatal condition")

	// ErrExecutionStopped indicates a run ended early because of an
	// explicit stop request or context cancellation.
	ErrExecutionStopped = errors.New("execution stopped")

	// ErrChainNotFound indicates the requested chain is not registered
	// with the orchestrator.
	ErrChainNotFound = errors.New("chain not found")

	// ErrExecutorNotFound indicates no executor is registered for the
	// given step type.
	ErrExecutorNotFound = errors.New("executor not found for step type")

	// ErrInvalidTransition indicates an attempt to make an invalid step
	// status transition.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNoCallable indicates a custom step did not name a callable, or
	// named one that is not registered.
	ErrNoCallable = errors.New("no callable configured for custom step")

	// ErrStepInvalid indicates a step definition failed validation.
	ErrStepInvalid = errors.New("invalid step definition")

	// ErrChainInvalid indicates a chain definition failed validation.
	ErrChainInvalid = errors.New("invalid chain definition")

	// ErrChainExists indicates an attempt to register a chain id that is
	// already registered.
	ErrChainExists = errors.New("chain already registered")

	// ErrConditionInvalid indicates a condition expression failed to
	// compile or does not evaluate to a boolean.
	ErrConditionInvalid = errors.New("invalid condition expression")

	// ErrTargetUnknown indicates a step references a catalog target that
	// the chain file does not declare.
	ErrTargetUnknown = errors.New("unknown catalog target")

	// ErrChainFileMissing indicates the chain definition file does not exist.
	ErrChainFileMissing = errors.New("chain file not found")

	// ErrChainFileParse indicates the chain definition file has invalid
	// YAML syntax.
	ErrChainFileParse = errors.New("chain file parse error")

	// ErrBoardUnreadable indicates quest board text yielded no
	// recognizable objectives.
	ErrBoardUnreadable = errors.New("no objectives recognized on quest board")

	// ErrUnknownPolicy indicates an unrecognized schedule policy name.
	ErrUnknownPolicy = errors.New("unknown schedule policy")

	// ErrUnknownBackend indicates an unrecognized capability backend name.
	ErrUnknownBackend = errors.New("unknown capability backend")

	// ErrNoChains indicates a schedule was started with no runnable chains.
	ErrNoChains = errors.New("no chains to run")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigNotFound indicates that the configuration file was not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrInvalidDuration indicates that a duration format is invalid.
	ErrInvalidDuration = errors.New("invalid duration format")

	// ErrValueOutOfRange indicates that a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrInvalidArgument indicates that an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
