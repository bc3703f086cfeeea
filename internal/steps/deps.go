package steps

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/averlon/questline/internal/clock"
	"github.com/averlon/questline/internal/domain"
	"github.com/averlon/questline/internal/game"
)

// ExecutorDeps holds dependencies for creating the built-in executors.
// Use this to inject dependencies when creating the default registry.
type ExecutorDeps struct {
	// Ports is the capability surface executors drive. Required.
	Ports game.Ports

	// Clock supplies time for timeout budgets, polling, and settle
	// pauses. If nil, the real clock is used.
	Clock clock.Clock

	// Logger is used for structured logging.
	// If nil, a no-op logger is used.
	Logger zerolog.Logger

	// Callables backs custom steps: a custom step's config names one of
	// these by key. If nil, every custom step fails.
	Callables map[string]domain.Condition

	// InCombat reports whether the character is currently fighting.
	// The combat executor's rotation loop runs while it holds. If nil,
	// the executor falls back to locating the step's combat marker.
	InCombat func(ctx context.Context) bool
}

// withDefaults fills optional dependencies.
func (d ExecutorDeps) withDefaults() ExecutorDeps {
	if d.Clock == nil {
		d.Clock = clock.RealClock{}
	}
	return d
}

// NewDefaultRegistry creates a registry with all six built-in executors
// wired to the given dependencies.
func NewDefaultRegistry(deps ExecutorDeps) *Registry {
	deps = deps.withDefaults()
	r := NewRegistry()

	r.Register(NewGatherExecutor(deps))
	r.Register(NewCombatExecutor(deps))
	r.Register(NewInteractExecutor(deps))
	r.Register(NewMoveToExecutor(deps))
	r.Register(NewWaitExecutor(deps))
	r.Register(NewCustomExecutor(deps))

	return r
}
