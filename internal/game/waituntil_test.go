package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/averlon/questline/internal/clock"
)

func TestWaitUntil_ImmediateSuccess(t *testing.T) {
	clk := clock.NewFake(time.Now())

	calls := 0
	ok := WaitUntil(context.Background(), clk, time.Second, 100*time.Millisecond, func(context.Context) bool {
		calls++
		return true
	})

	assert.True(t, ok)
	assert.Equal(t, 1, calls)
	assert.Empty(t, clk.Sleeps(), "no polling sleep expected on first success")
}

func TestWaitUntil_SucceedsAfterPolls(t *testing.T) {
	clk := clock.NewFake(time.Now())

	calls := 0
	ok := WaitUntil(context.Background(), clk, 10*time.Second, 500*time.Millisecond, func(context.Context) bool {
		calls++
		return calls >= 4
	})

	assert.True(t, ok)
	assert.Equal(t, 4, calls)
	assert.Len(t, clk.Sleeps(), 3)
}

func TestWaitUntil_TimesOut(t *testing.T) {
	clk := clock.NewFake(time.Now())

	ok := WaitUntil(context.Background(), clk, 2*time.Second, 500*time.Millisecond, func(context.Context) bool {
		return false
	})

	assert.False(t, ok)
	// Budget of 2s at 500ms intervals: polls at 0, 0.5, 1.0, 1.5, 2.0.
	assert.Len(t, clk.Sleeps(), 4)
}

func TestWaitUntil_PredicateTriedOnceWithZeroTimeout(t *testing.T) {
	clk := clock.NewFake(time.Now())

	calls := 0
	ok := WaitUntil(context.Background(), clk, 0, 100*time.Millisecond, func(context.Context) bool {
		calls++
		return false
	})

	assert.False(t, ok)
	assert.Equal(t, 1, calls)
}

func TestWaitUntil_CanceledContext(t *testing.T) {
	clk := clock.NewFake(time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	ok := WaitUntil(ctx, clk, time.Second, 100*time.Millisecond, func(context.Context) bool {
		calls++
		return true
	})

	assert.False(t, ok)
	assert.Zero(t, calls, "predicate must not run after cancellation")
}

func TestRegion_ContainsAndOverlaps(t *testing.T) {
	r := Region{Left: 10, Top: 10, Right: 20, Bottom: 20}

	assert.True(t, r.Contains(Position{X: 10, Y: 10}))
	assert.True(t, r.Contains(Position{X: 19, Y: 19}))
	assert.False(t, r.Contains(Position{X: 20, Y: 20}))

	assert.True(t, r.Overlaps(Region{Left: 15, Top: 15, Right: 30, Bottom: 30}))
	assert.False(t, r.Overlaps(Region{Left: 20, Top: 10, Right: 30, Bottom: 20}))
}
