package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averlon/questline/internal/errors"
)

func TestIsValidStepType(t *testing.T) {
	for _, st := range ValidStepTypes() {
		assert.True(t, IsValidStepType(st), "expected %q to be valid", st)
	}
	assert.False(t, IsValidStepType("teleport"))
	assert.False(t, IsValidStepType(""))
}

func TestStep_Reset(t *testing.T) {
	step := &Step{
		ID:         "s1",
		Type:       StepTypeWait,
		Status:     StepStatusFailed,
		RetryCount: 2,
	}

	step.Reset()

	assert.Equal(t, StepStatusPending, step.Status)
	assert.Zero(t, step.RetryCount)
}

func TestStep_Terminal(t *testing.T) {
	tests := []struct {
		status StepStatus
		want   bool
	}{
		{StepStatusPending, false},
		{StepStatusInProgress, false},
		{StepStatusCompleted, true},
		{StepStatusFailed, true},
		{StepStatusSkipped, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			step := &Step{Status: tt.status}
			assert.Equal(t, tt.want, step.Terminal())
		})
	}
}

func TestStep_Validate(t *testing.T) {
	valid := func() *Step {
		return &Step{ID: "s1", Name: "wait", Type: StepTypeWait, MaxRetry: 1, Timeout: time.Second}
	}

	t.Run("valid step passes", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("missing id", func(t *testing.T) {
		step := valid()
		step.ID = ""
		assert.ErrorIs(t, step.Validate(), errors.ErrStepInvalid)
	})

	t.Run("unknown type", func(t *testing.T) {
		step := valid()
		step.Type = "teleport"
		assert.ErrorIs(t, step.Validate(), errors.ErrStepInvalid)
	})

	t.Run("negative max retry", func(t *testing.T) {
		step := valid()
		step.MaxRetry = -1
		assert.ErrorIs(t, step.Validate(), errors.ErrStepInvalid)
	})

	t.Run("negative timeout", func(t *testing.T) {
		step := valid()
		step.Timeout = -time.Second
		assert.ErrorIs(t, step.Validate(), errors.ErrStepInvalid)
	})
}

func TestStep_Clone(t *testing.T) {
	t.Run("nil step", func(t *testing.T) {
		var step *Step
		assert.Nil(t, step.Clone())
	})

	t.Run("config is deep copied", func(t *testing.T) {
		step := &Step{
			ID:     "s1",
			Type:   StepTypeGather,
			Config: map[string]any{"target": "iron_vein", "count": 5},
		}

		clone := step.Clone()
		clone.Config["count"] = 99

		assert.Equal(t, 5, step.Config["count"])
		assert.Equal(t, "iron_vein", clone.Config["target"])
	})
}
