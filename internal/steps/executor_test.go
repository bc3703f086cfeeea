package steps

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averlon/questline/internal/clock"
	"github.com/averlon/questline/internal/domain"
	questerrors "github.com/averlon/questline/internal/errors"
	"github.com/averlon/questline/internal/game/sim"
)

// testLogger returns a silent logger for tests.
func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// testDeps builds executor deps over a fresh scripted world.
func testDeps(t *testing.T) (ExecutorDeps, *sim.World, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Date(2026, 1, 9, 8, 0, 0, 0, time.UTC))
	world := sim.NewWorld(clk)
	return ExecutorDeps{
		Ports:  world,
		Clock:  clk,
		Logger: testLogger(),
	}, world, clk
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	deps, _, _ := testDeps(t)
	r := NewRegistry()
	r.Register(NewWaitExecutor(deps))

	e, err := r.Get(domain.StepTypeWait)
	require.NoError(t, err)
	assert.Equal(t, domain.StepTypeWait, e.Type())

	assert.True(t, r.Has(domain.StepTypeWait))
	assert.False(t, r.Has(domain.StepTypeGather))
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get(domain.StepTypeCombat)
	require.Error(t, err)
	assert.ErrorIs(t, err, questerrors.ErrExecutorNotFound)
}

func TestRegistry_Replace(t *testing.T) {
	deps, _, _ := testDeps(t)
	r := NewRegistry()
	first := NewWaitExecutor(deps)
	second := NewWaitExecutor(deps)
	r.Register(first)
	r.Register(second)

	e, err := r.Get(domain.StepTypeWait)
	require.NoError(t, err)
	assert.Same(t, second, e)
}

func TestNewDefaultRegistry_AllTypes(t *testing.T) {
	deps, _, _ := testDeps(t)
	r := NewDefaultRegistry(deps)

	for _, st := range domain.ValidStepTypes() {
		assert.True(t, r.Has(st), "missing executor for %s", st)
	}
	assert.Len(t, r.Types(), len(domain.ValidStepTypes()))
}

func TestDecodeConfig_Durations(t *testing.T) {
	var cfg waitConfig

	// Go duration string.
	require.NoError(t, decodeConfig(map[string]any{"duration": "2s"}, &cfg))
	assert.Equal(t, 2*time.Second, cfg.Duration)

	// Bare number of seconds.
	cfg = waitConfig{}
	require.NoError(t, decodeConfig(map[string]any{"duration": 3}, &cfg))
	assert.Equal(t, 3*time.Second, cfg.Duration)

	// Fractional seconds.
	cfg = waitConfig{}
	require.NoError(t, decodeConfig(map[string]any{"duration": 0.5}, &cfg))
	assert.Equal(t, 500*time.Millisecond, cfg.Duration)
}

func TestDecodeConfig_Region(t *testing.T) {
	var cfg gatherConfig
	raw := map[string]any{
		"target":    "iron_vein",
		"count":     float64(2), // JSON numbers arrive as float64
		"region":    map[string]any{"left": 10, "top": 20, "right": 200, "bottom": 220},
		"threshold": 0.8,
	}

	require.NoError(t, decodeConfig(raw, &cfg))
	assert.Equal(t, "iron_vein", cfg.Target)
	assert.Equal(t, 2, cfg.Count)
	require.NotNil(t, cfg.Region)
	assert.Equal(t, 200, cfg.Region.Right)
	assert.InDelta(t, 0.8, cfg.Threshold, 1e-9)
}

func TestStepTimeout_Default(t *testing.T) {
	step := &domain.Step{ID: "s", Type: domain.StepTypeWait}
	assert.Equal(t, 60*time.Second, stepTimeout(step))

	step.Timeout = 5 * time.Second
	assert.Equal(t, 5*time.Second, stepTimeout(step))
}

func TestCustomExecutor(t *testing.T) {
	deps, _, _ := testDeps(t)
	called := 0
	deps.Callables = map[string]domain.Condition{
		"greet": func(ctx context.Context) (bool, error) {
			called++
			return true, nil
		},
		"refuse": func(ctx context.Context) (bool, error) {
			return false, nil
		},
	}
	e := NewCustomExecutor(deps)

	out, err := e.Execute(context.Background(), &domain.Step{
		ID:     "c1",
		Type:   domain.StepTypeCustom,
		Config: map[string]any{"callable": "greet"},
	})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, 1, called)

	out, err = e.Execute(context.Background(), &domain.Step{
		ID:     "c2",
		Type:   domain.StepTypeCustom,
		Config: map[string]any{"callable": "refuse"},
	})
	require.NoError(t, err)
	assert.False(t, out.Success)
}

func TestCustomExecutor_MissingCallable(t *testing.T) {
	deps, _, _ := testDeps(t)
	e := NewCustomExecutor(deps)

	// No callable named at all.
	out, err := e.Execute(context.Background(), &domain.Step{
		ID:   "c1",
		Type: domain.StepTypeCustom,
	})
	require.NoError(t, err)
	assert.False(t, out.Success)

	// Named but not registered.
	out, err = e.Execute(context.Background(), &domain.Step{
		ID:     "c2",
		Type:   domain.StepTypeCustom,
		Config: map[string]any{"callable": "ghost"},
	})
	require.NoError(t, err)
	assert.False(t, out.Success)
}

func TestCustomExecutor_CallableError(t *testing.T) {
	deps, _, _ := testDeps(t)
	deps.Callables = map[string]domain.Condition{
		"boom": func(ctx context.Context) (bool, error) {
			return false, assert.AnError
		},
	}
	e := NewCustomExecutor(deps)

	_, err := e.Execute(context.Background(), &domain.Step{
		ID:     "c1",
		Type:   domain.StepTypeCustom,
		Config: map[string]any{"callable": "boom"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestWaitExecutor(t *testing.T) {
	deps, _, clk := testDeps(t)
	e := NewWaitExecutor(deps)

	out, err := e.Execute(context.Background(), &domain.Step{
		ID:     "w1",
		Type:   domain.StepTypeWait,
		Config: map[string]any{"duration": "2s"},
	})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Contains(t, clk.Sleeps(), 2*time.Second)
}

func TestWaitExecutor_ZeroDuration(t *testing.T) {
	deps, _, _ := testDeps(t)
	e := NewWaitExecutor(deps)

	out, err := e.Execute(context.Background(), &domain.Step{ID: "w1", Type: domain.StepTypeWait})
	require.NoError(t, err)
	assert.True(t, out.Success)
}

func TestWaitExecutor_Canceled(t *testing.T) {
	deps, _, _ := testDeps(t)
	e := NewWaitExecutor(deps)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := e.Execute(ctx, &domain.Step{
		ID:     "w1",
		Type:   domain.StepTypeWait,
		Config: map[string]any{"duration": "2s"},
	})
	require.NoError(t, err)
	assert.False(t, out.Success)
}
