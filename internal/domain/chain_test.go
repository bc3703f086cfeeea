package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averlon/questline/internal/errors"
)

func testChain() *Chain {
	return &Chain{
		ID:      "mining",
		Name:    "Mining route",
		Enabled: true,
		Steps: []*Step{
			{ID: "move", Name: "Move to field", Type: StepTypeMoveTo},
			{ID: "mine", Name: "Mine ore", Type: StepTypeGather},
		},
	}
}

func TestChain_ResetPolicy(t *testing.T) {
	c := testChain()
	assert.Equal(t, LoopKeepState, c.ResetPolicy())

	c.LoopReset = LoopFreshState
	assert.Equal(t, LoopFreshState, c.ResetPolicy())
}

func TestChain_ResetSteps(t *testing.T) {
	c := testChain()
	c.Steps[0].Status = StepStatusFailed
	c.Steps[0].RetryCount = 3
	c.Steps[1].Status = StepStatusCompleted

	c.ResetSteps()

	for _, step := range c.Steps {
		assert.Equal(t, StepStatusPending, step.Status)
		assert.Zero(t, step.RetryCount)
	}
}

func TestChain_StepLookup(t *testing.T) {
	c := testChain()

	require.NotNil(t, c.Step("mine"))
	assert.Equal(t, "Mine ore", c.Step("mine").Name)
	assert.Nil(t, c.Step("absent"))
}

func TestChain_Validate(t *testing.T) {
	t.Run("valid chain passes", func(t *testing.T) {
		require.NoError(t, testChain().Validate())
	})

	t.Run("missing id", func(t *testing.T) {
		c := testChain()
		c.ID = ""
		assert.ErrorIs(t, c.Validate(), errors.ErrChainInvalid)
	})

	t.Run("missing name", func(t *testing.T) {
		c := testChain()
		c.Name = ""
		assert.ErrorIs(t, c.Validate(), errors.ErrChainInvalid)
	})

	t.Run("negative loop delay", func(t *testing.T) {
		c := testChain()
		c.LoopDelay = -time.Second
		assert.ErrorIs(t, c.Validate(), errors.ErrChainInvalid)
	})

	t.Run("unknown loop reset policy", func(t *testing.T) {
		c := testChain()
		c.LoopReset = "sometimes"
		assert.ErrorIs(t, c.Validate(), errors.ErrChainInvalid)
	})

	t.Run("duplicate step ids", func(t *testing.T) {
		c := testChain()
		c.Steps = append(c.Steps, &Step{ID: "mine", Name: "Mine again", Type: StepTypeGather})
		assert.ErrorIs(t, c.Validate(), errors.ErrChainInvalid)
	})

	t.Run("invalid step surfaces", func(t *testing.T) {
		c := testChain()
		c.Steps[0].Type = "teleport"
		assert.ErrorIs(t, c.Validate(), errors.ErrStepInvalid)
	})
}

func TestChain_Clone(t *testing.T) {
	c := testChain()
	c.ResetSteps()
	c.Steps[0].Config = map[string]any{"duration": "5s"}

	clone := c.Clone()
	clone.Steps[0].Status = StepStatusFailed
	clone.Steps[0].Config["duration"] = "9s"
	clone.Steps = append(clone.Steps, &Step{ID: "extra", Type: StepTypeWait})

	assert.Equal(t, StepStatusPending, c.Steps[0].Status)
	assert.Equal(t, "5s", c.Steps[0].Config["duration"])
	assert.Len(t, c.Steps, 2)
}
