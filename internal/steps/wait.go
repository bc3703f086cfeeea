package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/averlon/questline/internal/clock"
	"github.com/averlon/questline/internal/domain"
)

// waitConfig is the typed form of a wait step's config map.
type waitConfig struct {
	// Duration is how long to pause. Zero completes immediately.
	Duration time.Duration `mapstructure:"duration"`
}

// WaitExecutor pauses for a configured duration. Always succeeds unless
// the pause is canceled.
type WaitExecutor struct {
	clk    clock.Clock
	logger zerolog.Logger
}

// NewWaitExecutor creates a WaitExecutor from the shared deps.
func NewWaitExecutor(deps ExecutorDeps) *WaitExecutor {
	return &WaitExecutor{
		clk:    deps.Clock,
		logger: deps.Logger.With().Str("executor", "wait").Logger(),
	}
}

// Type implements Executor.
func (e *WaitExecutor) Type() domain.StepType {
	return domain.StepTypeWait
}

// Execute implements Executor.
func (e *WaitExecutor) Execute(ctx context.Context, step *domain.Step) (*domain.StepOutcome, error) {
	var cfg waitConfig
	if err := decodeConfig(step.Config, &cfg); err != nil {
		return nil, err
	}

	if err := e.clk.Sleep(ctx, cfg.Duration); err != nil {
		return domain.FailureOutcome("wait interrupted"), nil
	}
	return domain.SuccessOutcome(fmt.Sprintf("waited %s", cfg.Duration)), nil
}
