package schedule

import (
	"context"
	"strings"

	questerrors "github.com/averlon/questline/internal/errors"
)

// Gate is checked before each chain run. A non-nil error reports a
// fatal condition (character dead, client gone); how the scheduler
// reacts is decided by the GatePolicy. Implementations may perform
// recovery actions internally and still return nil.
type Gate interface {
	Check(ctx context.Context) error
}

// GateFunc adapts a plain function to the Gate interface.
type GateFunc func(ctx context.Context) error

// Check implements Gate.
func (f GateFunc) Check(ctx context.Context) error {
	return f(ctx)
}

// GatePolicy selects how a fatal gate error is handled.
type GatePolicy string

// Gate policy constants.
const (
	// GateStopAll aborts the whole schedule on a fatal gate error.
	GateStopAll GatePolicy = "stop_all"

	// GateSkipChain skips only the chain the gate was protecting and
	// continues with the rest of the schedule.
	GateSkipChain GatePolicy = "skip_chain"
)

// Policy selects the chain ordering strategy for a schedule run.
type Policy string

// Scheduling policy constants.
const (
	// PolicySequential runs every enabled chain once, highest priority
	// first, ties in registration order.
	PolicySequential Policy = "sequential"

	// PolicyPriority repeatedly picks the highest-priority chain from
	// the remaining pool until the pool drains.
	PolicyPriority Policy = "priority"

	// PolicyRounds runs every enabled chain once per round, looping
	// rounds while any chain requests it, up to the round cap.
	PolicyRounds Policy = "rounds"
)

// String returns the string representation of the Policy.
func (p Policy) String() string {
	return string(p)
}

// ParsePolicy converts a string into a Policy, case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicySequential:
		return PolicySequential, nil
	case PolicyPriority:
		return PolicyPriority, nil
	case PolicyRounds:
		return PolicyRounds, nil
	default:
		return "", questerrors.Wrapf(questerrors.ErrUnknownPolicy, "%q", s)
	}
}
