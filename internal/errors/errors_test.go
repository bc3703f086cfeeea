package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qerrors "github.com/averlon/questline/internal/errors"
)

func TestWrap(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		assert.NoError(t, qerrors.Wrap(nil, "context"))
	})

	t.Run("preserves sentinel through chain", func(t *testing.T) {
		err := qerrors.Wrap(qerrors.ErrChainNotFound, "running schedule")
		require.Error(t, err)
		assert.ErrorIs(t, err, qerrors.ErrChainNotFound)
		assert.Equal(t, "running schedule: chain not found", err.Error())
	})

	t.Run("double wrap preserves sentinel", func(t *testing.T) {
		err := qerrors.Wrap(qerrors.Wrap(qerrors.ErrExecutionFault, "inner"), "outer")
		assert.ErrorIs(t, err, qerrors.ErrExecutionFault)
	})
}

func TestWrapf(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		assert.NoError(t, qerrors.Wrapf(nil, "chain %s", "mining"))
	})

	t.Run("formats message", func(t *testing.T) {
		err := qerrors.Wrapf(qerrors.ErrChainNotFound, "chain %q", "mining")
		require.Error(t, err)
		assert.Equal(t, `chain "mining": chain not found`, err.Error())
		assert.ErrorIs(t, err, qerrors.ErrChainNotFound)
	})
}

func TestExitCode2Error(t *testing.T) {
	base := stderrors.New("bad flag")
	err := qerrors.NewExitCode2Error(base)

	assert.Equal(t, "bad flag", err.Error())
	assert.ErrorIs(t, err, base)
	assert.True(t, qerrors.IsExitCode2Error(err))
	assert.True(t, qerrors.IsExitCode2Error(qerrors.Wrap(err, "parsing")))
	assert.False(t, qerrors.IsExitCode2Error(base))
	assert.False(t, qerrors.IsExitCode2Error(nil))
}

func TestUserMessage(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Empty(t, qerrors.UserMessage(nil))
	})

	t.Run("known sentinel", func(t *testing.T) {
		assert.Equal(t, "The requested chain is not registered.", qerrors.UserMessage(qerrors.ErrChainNotFound))
	})

	t.Run("wrapped sentinel", func(t *testing.T) {
		err := qerrors.Wrap(qerrors.ErrFatalCondition, "gate check")
		assert.Equal(t, "A fatal condition stopped the schedule.", qerrors.UserMessage(err))
	})

	t.Run("unknown error falls back to message", func(t *testing.T) {
		err := stderrors.New("something odd")
		assert.Equal(t, "something odd", qerrors.UserMessage(err))
	})
}

func TestActionable(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		msg, action := qerrors.Actionable(nil)
		assert.Empty(t, msg)
		assert.Empty(t, action)
	})

	t.Run("sentinel with action", func(t *testing.T) {
		msg, action := qerrors.Actionable(qerrors.ErrNoCallable)
		assert.Equal(t, "A custom step has no registered callable.", msg)
		assert.Contains(t, action, "Register the callable")
	})

	t.Run("sentinel without action", func(t *testing.T) {
		msg, action := qerrors.Actionable(qerrors.ErrExecutionStopped)
		assert.NotEmpty(t, msg)
		assert.Empty(t, action)
	})
}
