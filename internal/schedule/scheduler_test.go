package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averlon/questline/internal/clock"
	"github.com/averlon/questline/internal/domain"
	questerrors "github.com/averlon/questline/internal/errors"
	"github.com/averlon/questline/internal/quest"
)

// fakeRunner records chain runs in order and returns scripted results.
type fakeRunner struct {
	chains  []*domain.Chain
	runs    []string
	results map[string]bool
	errs    map[string]error
	onceRun []bool
}

func (f *fakeRunner) Chains() []*domain.Chain {
	return f.chains
}

func (f *fakeRunner) RunChain(_ context.Context, chainID string, opts ...quest.RunOption) (bool, error) {
	f.runs = append(f.runs, chainID)
	f.onceRun = append(f.onceRun, len(opts) > 0)
	if err := f.errs[chainID]; err != nil {
		return false, err
	}
	if f.results == nil {
		return true, nil
	}
	ok, scripted := f.results[chainID]
	if !scripted {
		return true, nil
	}
	return ok, nil
}

func testChain(id string, priority int) *domain.Chain {
	return &domain.Chain{ID: id, Name: id, Enabled: true, Priority: priority}
}

func newTestScheduler(runner Runner, policy Policy, opts ...Option) (*Scheduler, *clock.Fake) {
	clk := clock.NewFake(time.Date(2026, 1, 9, 8, 0, 0, 0, time.UTC))
	return NewScheduler(runner, policy, clk, zerolog.Nop(), opts...), clk
}

func TestParsePolicy(t *testing.T) {
	for _, valid := range []string{"sequential", "Priority", " rounds "} {
		policy, err := ParsePolicy(valid)
		require.NoError(t, err, valid)
		assert.NotEmpty(t, policy)
	}

	_, err := ParsePolicy("fifo")
	require.Error(t, err)
	assert.ErrorIs(t, err, questerrors.ErrUnknownPolicy)
}

func TestRun_NoChains(t *testing.T) {
	s, _ := newTestScheduler(&fakeRunner{}, PolicySequential)
	_, err := s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, questerrors.ErrNoChains)
}

func TestRun_DisabledChainsIgnored(t *testing.T) {
	disabled := testChain("off", 9)
	disabled.Enabled = false
	runner := &fakeRunner{chains: []*domain.Chain{disabled, testChain("on", 1)}}
	s, _ := newTestScheduler(runner, PolicySequential)

	ok, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"on"}, runner.runs)
}

func TestRun_SequentialPriorityOrder(t *testing.T) {
	// Chains A(1), B(5), C(5) registered in that order run as B, C, A:
	// highest priority first, ties in registration order.
	runner := &fakeRunner{chains: []*domain.Chain{
		testChain("A", 1),
		testChain("B", 5),
		testChain("C", 5),
	}}
	s, _ := newTestScheduler(runner, PolicySequential)

	ok, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"B", "C", "A"}, runner.runs)
}

func TestRun_PriorityPoolOrder(t *testing.T) {
	runner := &fakeRunner{chains: []*domain.Chain{
		testChain("A", 1),
		testChain("B", 5),
		testChain("C", 5),
	}}
	s, _ := newTestScheduler(runner, PolicyPriority)

	ok, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"B", "C", "A"}, runner.runs)
}

func TestRun_FailedChainDoesNotAbort(t *testing.T) {
	runner := &fakeRunner{
		chains:  []*domain.Chain{testChain("A", 2), testChain("B", 1)},
		results: map[string]bool{"A": false},
	}
	s, _ := newTestScheduler(runner, PolicySequential)

	ok, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"A", "B"}, runner.runs, "failure does not stop the schedule")
}

func TestRun_ChainErrorAborts(t *testing.T) {
	stopErr := questerrors.Wrap(questerrors.ErrExecutionStopped, "stopped")
	runner := &fakeRunner{
		chains: []*domain.Chain{testChain("A", 2), testChain("B", 1)},
		errs:   map[string]error{"A": stopErr},
	}
	s, _ := newTestScheduler(runner, PolicySequential)

	ok, err := s.Run(context.Background())
	assert.False(t, ok)
	require.Error(t, err)
	assert.ErrorIs(t, err, questerrors.ErrExecutionStopped)
	assert.Equal(t, []string{"A"}, runner.runs)
}

func TestRun_RoundsBoundedByCap(t *testing.T) {
	// One looping and one single-shot chain under a three round cap:
	// exactly three rounds, both chains run every round.
	looper := testChain("loop", 1)
	looper.Loop = true
	runner := &fakeRunner{chains: []*domain.Chain{looper, testChain("once", 1)}}
	s, clk := newTestScheduler(runner, PolicyRounds,
		WithMaxRounds(3), WithRoundDelay(4*time.Second))

	ok, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"loop", "once", "loop", "once", "loop", "once"}, runner.runs)

	for _, once := range runner.onceRun {
		assert.True(t, once, "rounds always force single-pass runs")
	}

	// Two inter-round delays for three rounds.
	assert.Equal(t, []time.Duration{4 * time.Second, 4 * time.Second}, clk.Sleeps())
}

func TestRun_RoundsStopWhenNothingLoops(t *testing.T) {
	runner := &fakeRunner{chains: []*domain.Chain{testChain("A", 1), testChain("B", 1)}}
	s, _ := newTestScheduler(runner, PolicyRounds, WithMaxRounds(10))

	ok, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, runner.runs, "no looping chain means one round")
}

func TestRun_GateStopAll(t *testing.T) {
	gateErr := errors.New("character is dead")
	runner := &fakeRunner{chains: []*domain.Chain{testChain("A", 2), testChain("B", 1)}}
	s, _ := newTestScheduler(runner, PolicySequential,
		WithGate(GateFunc(func(ctx context.Context) error { return gateErr }), GateStopAll))

	ok, err := s.Run(context.Background())
	assert.False(t, ok)
	require.Error(t, err)
	assert.ErrorIs(t, err, questerrors.ErrFatalCondition)
	assert.Empty(t, runner.runs, "nothing runs past a fatal gate")
}

func TestRun_GateSkipChain(t *testing.T) {
	// The gate trips only for the first check; under skip policy the
	// schedule continues with the next chain.
	calls := 0
	gate := GateFunc(func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return questerrors.Wrap(questerrors.ErrFatalCondition, "low vitals")
		}
		return nil
	})
	runner := &fakeRunner{chains: []*domain.Chain{testChain("A", 2), testChain("B", 1)}}
	s, _ := newTestScheduler(runner, PolicySequential, WithGate(gate, GateSkipChain))

	ok, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "a skipped chain is not a clean schedule")
	assert.Equal(t, []string{"B"}, runner.runs)
	assert.Equal(t, 2, calls)
}

func TestRun_ContextCanceled(t *testing.T) {
	runner := &fakeRunner{chains: []*domain.Chain{testChain("A", 1)}}
	s, _ := newTestScheduler(runner, PolicySequential)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := s.Run(ctx)
	assert.False(t, ok)
	require.Error(t, err)
	assert.ErrorIs(t, err, questerrors.ErrExecutionStopped)
	assert.Empty(t, runner.runs)
}

func TestRun_ForwardsChainRunOptions(t *testing.T) {
	runner := &fakeRunner{chains: []*domain.Chain{testChain("A", 1), testChain("B", 1)}}
	s, _ := newTestScheduler(runner, PolicySequential,
		WithChainRunOptions(quest.WithMaxPasses(2)))

	ok, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	for _, forwarded := range runner.onceRun {
		assert.True(t, forwarded, "every run carries the schedule-wide options")
	}
}

func TestRun_UnknownPolicy(t *testing.T) {
	runner := &fakeRunner{chains: []*domain.Chain{testChain("A", 1)}}
	s, _ := newTestScheduler(runner, Policy("fifo"))

	_, err := s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, questerrors.ErrUnknownPolicy)
}
