package vitals

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averlon/questline/internal/clock"
	questerrors "github.com/averlon/questline/internal/errors"
	"github.com/averlon/questline/internal/game/sim"
)

func testWorld(t *testing.T) (*sim.World, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Date(2026, 1, 9, 8, 0, 0, 0, time.UTC))
	return sim.NewWorld(clk), clk
}

func TestReader_HPAndMP(t *testing.T) {
	world, _ := testWorld(t)
	cfg := DefaultConfig()
	world.SetText(cfg.HPRegion, "80/200")
	world.SetText(cfg.MPRegion, "150 / 200")

	reader := NewReader(world, cfg, zerolog.Nop())

	hp, ok := reader.HP(context.Background())
	require.True(t, ok)
	assert.InDelta(t, 0.4, hp, 0.001)

	mp, ok := reader.MP(context.Background())
	require.True(t, ok, "spaces around the slash still parse")
	assert.InDelta(t, 0.75, mp, 0.001)
}

func TestReader_UnreadableBar(t *testing.T) {
	world, _ := testWorld(t)
	reader := NewReader(world, DefaultConfig(), zerolog.Nop())

	_, ok := reader.HP(context.Background())
	assert.False(t, ok, "blank region is unreadable, not zero")

	cfg := DefaultConfig()
	world.SetText(cfg.HPRegion, "loading...")
	_, ok = reader.HP(context.Background())
	assert.False(t, ok)
}

func TestReader_DeadAndInCombat(t *testing.T) {
	world, _ := testWorld(t)
	cfg := DefaultConfig()
	reader := NewReader(world, cfg, zerolog.Nop())

	ctx := context.Background()
	assert.False(t, reader.Dead(ctx))
	assert.False(t, reader.InCombat(ctx))

	world.PlaceTarget(cfg.ReviveMarker)
	world.PlaceTarget(cfg.CombatMarker)
	assert.True(t, reader.Dead(ctx))
	assert.True(t, reader.InCombat(ctx))
}

func TestParseRatio_Clamped(t *testing.T) {
	reader := NewReader(nil, Config{}, zerolog.Nop())

	ratio, ok := parseRatio(reader.barRe, "250/200")
	require.True(t, ok)
	assert.Equal(t, 1.0, ratio, "overheal clamps to full")

	_, ok = parseRatio(reader.barRe, "10/0")
	assert.False(t, ok, "zero max is unreadable")
}

func TestGuard_DeadIsFatal(t *testing.T) {
	world, clk := testWorld(t)
	cfg := DefaultConfig()
	world.PlaceTarget(cfg.ReviveMarker)

	guard := NewGuard(world, clk, cfg, zerolog.Nop())

	err := guard.Check(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, questerrors.ErrFatalCondition)
}

func TestGuard_LowVitalsRecover(t *testing.T) {
	world, clk := testWorld(t)
	cfg := DefaultConfig()
	// HP 0.2 is below the 0.5 threshold, MP 0.9 is fine.
	world.SetText(cfg.HPRegion, "40/200")
	world.SetText(cfg.MPRegion, "180/200")

	guard := NewGuard(world, clk, cfg, zerolog.Nop())

	require.NoError(t, guard.Check(context.Background()))
	assert.Equal(t, []string{cfg.HPPotionKey}, world.Presses())

	// The settle pause ran on the clock.
	assert.Contains(t, clk.Sleeps(), cfg.PotionSettle)
}

func TestGuard_BothVitalsLow(t *testing.T) {
	world, clk := testWorld(t)
	cfg := DefaultConfig()
	world.SetText(cfg.HPRegion, "10/200")
	world.SetText(cfg.MPRegion, "10/200")

	guard := NewGuard(world, clk, cfg, zerolog.Nop())

	require.NoError(t, guard.Check(context.Background()))
	assert.Equal(t, []string{cfg.HPPotionKey, cfg.MPPotionKey}, world.Presses())
}

func TestGuard_HealthyNoAction(t *testing.T) {
	world, clk := testWorld(t)
	cfg := DefaultConfig()
	world.SetText(cfg.HPRegion, "200/200")
	world.SetText(cfg.MPRegion, "200/200")

	guard := NewGuard(world, clk, cfg, zerolog.Nop())

	require.NoError(t, guard.Check(context.Background()))
	assert.Empty(t, world.Presses())
}

func TestGuard_ActuationFaultIsNotFatal(t *testing.T) {
	world, clk := testWorld(t)
	cfg := DefaultConfig()
	world.SetText(cfg.HPRegion, "10/200")
	world.FailActuation(assert.AnError)

	guard := NewGuard(world, clk, cfg, zerolog.Nop())

	assert.NoError(t, guard.Check(context.Background()), "broken input must not abort the schedule")
}

func TestGuard_ContextCanceled(t *testing.T) {
	world, clk := testWorld(t)
	guard := NewGuard(world, clk, DefaultConfig(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, guard.Check(ctx))
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{HPThreshold: 0.7}.withDefaults()
	def := DefaultConfig()

	assert.Equal(t, 0.7, cfg.HPThreshold, "explicit values survive")
	assert.Equal(t, def.MPThreshold, cfg.MPThreshold)
	assert.Equal(t, def.BarPattern, cfg.BarPattern)
	assert.Equal(t, def.ReviveMarker, cfg.ReviveMarker)
	assert.Equal(t, def.PotionSettle, cfg.PotionSettle)
}
