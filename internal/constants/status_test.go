package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepStatusString(t *testing.T) {
	tests := []struct {
		name   string
		status StepStatus
		want   string
	}{
		{name: "pending", status: StepStatusPending, want: "pending"},
		{name: "in progress", status: StepStatusInProgress, want: "in_progress"},
		{name: "completed", status: StepStatusCompleted, want: "completed"},
		{name: "failed", status: StepStatusFailed, want: "failed"},
		{name: "skipped", status: StepStatusSkipped, want: "skipped"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.String())
		})
	}
}

func TestRunStatusString(t *testing.T) {
	assert.Equal(t, "succeeded", RunStatusSucceeded.String())
	assert.Equal(t, "failed", RunStatusFailed.String())
	assert.Equal(t, "stopped", RunStatusStopped.String())
}
