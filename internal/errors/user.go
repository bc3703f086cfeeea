package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries is the pre-built mapping of sentinel errors to their user-facing messages.
// This single source of truth ensures UserMessage and Actionable stay in sync.
// Using a slice (not a map) because errors.Is() requires proper error chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Execution
	// ===================
	{
		err: ErrFatalCondition,
		info: ErrorInfo{
			Message: "A fatal condition stopped the schedule.",
			Action:  "Resolve the in-game condition (e.g. revive) before restarting, or run with --on-fatal skip.",
		},
	},
	{
		err: ErrExecutionStopped,
		info: ErrorInfo{
			Message: "Execution was stopped before the run finished.",
			Action:  "",
		},
	},
	{
		err: ErrChainNotFound,
		info: ErrorInfo{
			Message: "The requested chain is not registered.",
			Action:  "Check the chain id against the loaded chain files.",
		},
	},
	{
		err: ErrExecutorNotFound,
		info: ErrorInfo{
			Message: "No executor is registered for this step type.",
			Action:  "Use one of the built-in step types or register a custom callable.",
		},
	},
	{
		err: ErrNoCallable,
		info: ErrorInfo{
			Message: "A custom step has no registered callable.",
			Action:  "Register the callable by name before running, or fix the step's 'callable' key.",
		},
	},
	{
		err: ErrNoChains,
		info: ErrorInfo{
			Message: "No enabled chains were found to run.",
			Action:  "Enable at least one chain in the chain file or pass a file that defines one.",
		},
	},
	{
		err: ErrUnknownPolicy,
		info: ErrorInfo{
			Message: "The schedule policy is not recognized.",
			Action:  "Use one of: sequential, priority, rounds.",
		},
	},
	{
		err: ErrUnknownBackend,
		info: ErrorInfo{
			Message: "The capability backend is not recognized.",
			Action:  "Use --dry-run for the built-in scripted backend.",
		},
	},

	// ===================
	// Chain files
	// ===================
	{
		err: ErrChainFileMissing,
		info: ErrorInfo{
			Message: "The chain file does not exist.",
			Action:  "Check the file path.",
		},
	},
	{
		err: ErrChainFileParse,
		info: ErrorInfo{
			Message: "The chain file has invalid YAML syntax.",
			Action:  "Run 'questline validate <file>' to see parse details.",
		},
	},
	{
		err: ErrChainInvalid,
		info: ErrorInfo{
			Message: "The chain definition failed validation.",
			Action:  "Run 'questline validate <file>' to see what is wrong.",
		},
	},
	{
		err: ErrStepInvalid,
		info: ErrorInfo{
			Message: "A step definition failed validation.",
			Action:  "Run 'questline validate <file>' to see what is wrong.",
		},
	},
	{
		err: ErrConditionInvalid,
		info: ErrorInfo{
			Message: "A condition expression failed to compile.",
			Action:  "Check the expression syntax; conditions must evaluate to a boolean.",
		},
	},
	{
		err: ErrTargetUnknown,
		info: ErrorInfo{
			Message: "A step references a target the chain file does not declare.",
			Action:  "Add the target to the 'targets' catalog or fix the reference.",
		},
	},

	// ===================
	// Configuration
	// ===================
	{
		err: ErrConfigNotFound,
		info: ErrorInfo{
			Message: "Configuration file not found.",
			Action:  "Create ~/.questline/config.yaml or a project .questline.yaml.",
		},
	},
	{
		err: ErrConfigNil,
		info: ErrorInfo{
			Message: "Configuration is not loaded.",
			Action:  "Ensure the configuration file exists and is valid YAML.",
		},
	},
	{
		err: ErrInvalidDuration,
		info: ErrorInfo{
			Message: "Invalid duration format.",
			Action:  "Use formats like '30s', '5m', '1h' for durations.",
		},
	},
	{
		err: ErrValueOutOfRange,
		info: ErrorInfo{
			Message: "Value is outside the allowed range.",
			Action:  "Check the documentation for valid value ranges.",
		},
	},
	{
		err: ErrEmptyValue,
		info: ErrorInfo{
			Message: "A required value was not provided.",
			Action:  "Provide the required value and try again.",
		},
	},
	{
		err: ErrInvalidArgument,
		info: ErrorInfo{
			Message: "An invalid argument was provided.",
			Action:  "Check the command help for valid arguments.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
// Built once from errorInfoEntries during package initialization.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

// buildErrorInfoMap creates a map from the errorInfoEntries slice.
// This is called once during package init for O(1) direct lookups.
func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// It first tries O(1) direct map lookup for unwrapped sentinel errors,
// then falls back to errors.Is() traversal for wrapped errors.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	// Fast path: O(1) lookup for direct sentinel errors
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	// Slow path: errors.Is() for wrapped errors
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// This function maps sentinel errors to helpful, actionable messages
// that are suitable for display to end users.
//
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
//
// For errors that are not recoverable or have no clear action, the action
// string will be empty.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
