package steps

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/averlon/questline/internal/domain"
	questerrors "github.com/averlon/questline/internal/errors"
)

// customConfig is the typed form of a custom step's config map.
type customConfig struct {
	// Callable names the registered callable to invoke.
	Callable string `mapstructure:"callable"`
}

// CustomExecutor invokes a callable registered by name in the executor
// deps. A missing name or unregistered callable is a step failure, not
// a fault; a callable error is a fault caught at the step boundary.
type CustomExecutor struct {
	callables map[string]domain.Condition
	logger    zerolog.Logger
}

// NewCustomExecutor creates a CustomExecutor from the shared deps.
func NewCustomExecutor(deps ExecutorDeps) *CustomExecutor {
	return &CustomExecutor{
		callables: deps.Callables,
		logger:    deps.Logger.With().Str("executor", "custom").Logger(),
	}
}

// Type implements Executor.
func (e *CustomExecutor) Type() domain.StepType {
	return domain.StepTypeCustom
}

// Execute implements Executor.
func (e *CustomExecutor) Execute(ctx context.Context, step *domain.Step) (*domain.StepOutcome, error) {
	var cfg customConfig
	if err := decodeConfig(step.Config, &cfg); err != nil {
		return nil, err
	}
	if cfg.Callable == "" {
		e.logger.Warn().Str("step", step.ID).Msg("custom step names no callable")
		return domain.FailureOutcome(questerrors.ErrNoCallable.Error()), nil
	}
	callable, ok := e.callables[cfg.Callable]
	if !ok {
		e.logger.Warn().Str("step", step.ID).Str("callable", cfg.Callable).Msg("callable not registered")
		return domain.FailureOutcome(fmt.Sprintf("%s: %q", questerrors.ErrNoCallable, cfg.Callable)), nil
	}

	success, err := callable(ctx)
	if err != nil {
		return nil, questerrors.Wrapf(err, "callable %q", cfg.Callable)
	}
	if !success {
		return domain.FailureOutcome(fmt.Sprintf("callable %q reported failure", cfg.Callable)), nil
	}
	return domain.SuccessOutcome(fmt.Sprintf("callable %q succeeded", cfg.Callable)), nil
}
