package steps

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averlon/questline/internal/domain"
	"github.com/averlon/questline/internal/game/sim"
)

func TestGatherExecutor_ReachesCount(t *testing.T) {
	deps, world, _ := testDeps(t)
	world.PlaceTarget("iron_vein", sim.At(500, 400), sim.Hits(1), sim.Respawn(2*time.Second))
	e := NewGatherExecutor(deps)

	out, err := e.Execute(context.Background(), &domain.Step{
		ID:      "g1",
		Type:    domain.StepTypeGather,
		Timeout: 2 * time.Minute,
		Config:  map[string]any{"target": "iron_vein", "count": 3},
	})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, 3, out.Count)
	assert.Equal(t, []string{"f", "f", "f"}, world.Presses())
}

func TestGatherExecutor_TimesOut(t *testing.T) {
	deps, _, _ := testDeps(t)
	e := NewGatherExecutor(deps)

	// No target placed: every locate misses until the budget runs out.
	out, err := e.Execute(context.Background(), &domain.Step{
		ID:      "g1",
		Type:    domain.StepTypeGather,
		Timeout: 5 * time.Second,
		Config:  map[string]any{"target": "gold_vein", "count": 1},
	})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Zero(t, out.Count)
}

func TestGatherExecutor_PartialCount(t *testing.T) {
	deps, world, _ := testDeps(t)
	// One node, no respawn: only a single gather can ever land.
	world.PlaceTarget("iron_vein", sim.At(500, 400), sim.Hits(1))
	e := NewGatherExecutor(deps)

	out, err := e.Execute(context.Background(), &domain.Step{
		ID:      "g1",
		Type:    domain.StepTypeGather,
		Timeout: 30 * time.Second,
		Config:  map[string]any{"target": "iron_vein", "count": 5},
	})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, 1, out.Count)
}

func TestGatherExecutor_MarkerNavigation(t *testing.T) {
	deps, world, _ := testDeps(t)
	world.PlaceTarget("mine_marker", sim.At(100, 100))
	world.PlaceTarget("iron_vein", sim.At(500, 400), sim.Hits(1))
	e := NewGatherExecutor(deps)

	out, err := e.Execute(context.Background(), &domain.Step{
		ID:      "g1",
		Type:    domain.StepTypeGather,
		Timeout: time.Minute,
		Config: map[string]any{
			"target": "iron_vein",
			"count":  1,
			"marker": "mine_marker",
			"travel": "2s",
		},
	})
	require.NoError(t, err)
	assert.True(t, out.Success)

	journal := world.Journal()
	require.NotEmpty(t, journal)
	// Travel leg first: marker click, then held movement.
	assert.Equal(t, "click", journal[0].Kind)
	assert.Equal(t, "key_down", journal[1].Kind)
	assert.Equal(t, "w", journal[1].Key)
	assert.Equal(t, "key_up", journal[2].Kind)
}

func TestGatherExecutor_MissingTarget(t *testing.T) {
	deps, _, _ := testDeps(t)
	e := NewGatherExecutor(deps)

	out, err := e.Execute(context.Background(), &domain.Step{
		ID:   "g1",
		Type: domain.StepTypeGather,
	})
	require.NoError(t, err)
	assert.False(t, out.Success)
}

func TestGatherExecutor_Canceled(t *testing.T) {
	deps, world, _ := testDeps(t)
	world.PlaceTarget("iron_vein", sim.At(500, 400), sim.Hits(1), sim.Respawn(time.Second))
	e := NewGatherExecutor(deps)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := e.Execute(ctx, &domain.Step{
		ID:      "g1",
		Type:    domain.StepTypeGather,
		Timeout: time.Minute,
		Config:  map[string]any{"target": "iron_vein", "count": 10},
	})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Zero(t, out.Count, "canceled before any gather")
}
