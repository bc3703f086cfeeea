package domain

// StepOutcome is what an executor reports back to the orchestrator
// after working a step. Success is the executor's own signal; a
// postcondition on the step may still override it.
type StepOutcome struct {
	// Success reports whether the executor achieved the step's goal
	// within its timeout budget.
	Success bool `json:"success"`

	// Output is a short human-readable summary for logs and history.
	Output string `json:"output,omitempty"`

	// Count is the number of work units completed (nodes gathered,
	// kills confirmed). Zero when the step type has no natural count.
	Count int `json:"count,omitempty"`

	// Detail carries executor-specific extras (e.g. which skill
	// rotation entries fired). Optional.
	Detail map[string]any `json:"detail,omitempty"`
}

// SuccessOutcome builds a successful outcome with the given summary.
func SuccessOutcome(output string) *StepOutcome {
	return &StepOutcome{Success: true, Output: output}
}

// FailureOutcome builds a failed outcome with the given summary.
func FailureOutcome(output string) *StepOutcome {
	return &StepOutcome{Success: false, Output: output}
}
