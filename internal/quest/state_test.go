package quest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averlon/questline/internal/domain"
	questerrors "github.com/averlon/questline/internal/errors"
)

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		name string
		from domain.StepStatus
		to   domain.StepStatus
		want bool
	}{
		{"pending to in_progress", domain.StepStatusPending, domain.StepStatusInProgress, true},
		{"pending to skipped", domain.StepStatusPending, domain.StepStatusSkipped, true},
		{"pending to completed", domain.StepStatusPending, domain.StepStatusCompleted, false},
		{"pending to failed", domain.StepStatusPending, domain.StepStatusFailed, false},
		{"in_progress to completed", domain.StepStatusInProgress, domain.StepStatusCompleted, true},
		{"in_progress to failed", domain.StepStatusInProgress, domain.StepStatusFailed, true},
		{"in_progress to skipped", domain.StepStatusInProgress, domain.StepStatusSkipped, true},
		{"in_progress to pending", domain.StepStatusInProgress, domain.StepStatusPending, false},
		{"completed is terminal", domain.StepStatusCompleted, domain.StepStatusPending, false},
		{"failed is terminal", domain.StepStatusFailed, domain.StepStatusInProgress, false},
		{"skipped is terminal", domain.StepStatusSkipped, domain.StepStatusInProgress, false},
		{"self transition", domain.StepStatusPending, domain.StepStatusPending, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidTransition(tt.from, tt.to))
		})
	}
}

func TestIsTerminalStatus(t *testing.T) {
	assert.False(t, IsTerminalStatus(domain.StepStatusPending))
	assert.False(t, IsTerminalStatus(domain.StepStatusInProgress))
	assert.True(t, IsTerminalStatus(domain.StepStatusCompleted))
	assert.True(t, IsTerminalStatus(domain.StepStatusFailed))
	assert.True(t, IsTerminalStatus(domain.StepStatusSkipped))
}

func TestTransition(t *testing.T) {
	step := &domain.Step{ID: "s1", Type: domain.StepTypeWait}
	require.NoError(t, Transition(step, domain.StepStatusInProgress))
	assert.Equal(t, domain.StepStatusInProgress, step.Status)

	require.NoError(t, Transition(step, domain.StepStatusCompleted))
	assert.Equal(t, domain.StepStatusCompleted, step.Status)

	err := Transition(step, domain.StepStatusInProgress)
	require.Error(t, err)
	assert.ErrorIs(t, err, questerrors.ErrInvalidTransition)
	assert.Equal(t, domain.StepStatusCompleted, step.Status, "rejected transition leaves status untouched")
}

func TestTransition_NilStep(t *testing.T) {
	err := Transition(nil, domain.StepStatusInProgress)
	require.Error(t, err)
	assert.ErrorIs(t, err, questerrors.ErrInvalidTransition)
}
