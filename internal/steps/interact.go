package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/averlon/questline/internal/clock"
	"github.com/averlon/questline/internal/constants"
	"github.com/averlon/questline/internal/domain"
	"github.com/averlon/questline/internal/game"
)

// interactConfig is the typed form of an interact step's config map.
type interactConfig struct {
	targetConfig `mapstructure:",squash"`

	// InteractKey is pressed once the target has been clicked.
	InteractKey string `mapstructure:"interact_key"`

	// Settle is the pause after the interaction primitive.
	Settle time.Duration `mapstructure:"settle"`
}

// withDefaults fills zero-valued fields.
func (c interactConfig) withDefaults() interactConfig {
	c.targetConfig = c.targetConfig.withDefaults()
	if c.InteractKey == "" {
		c.InteractKey = "f"
	}
	if c.Settle == 0 {
		c.Settle = constants.DefaultSettleDelay
	}
	return c
}

// InteractExecutor performs a single interaction with an on-screen
// target: an NPC, a door, a quest item. Success iff the target was
// found within the step budget.
type InteractExecutor struct {
	ports  game.Ports
	clk    clock.Clock
	logger zerolog.Logger
}

// NewInteractExecutor creates an InteractExecutor from the shared deps.
func NewInteractExecutor(deps ExecutorDeps) *InteractExecutor {
	return &InteractExecutor{
		ports:  deps.Ports,
		clk:    deps.Clock,
		logger: deps.Logger.With().Str("executor", "interact").Logger(),
	}
}

// Type implements Executor.
func (e *InteractExecutor) Type() domain.StepType {
	return domain.StepTypeInteract
}

// Execute implements Executor.
func (e *InteractExecutor) Execute(ctx context.Context, step *domain.Step) (*domain.StepOutcome, error) {
	var cfg interactConfig
	if err := decodeConfig(step.Config, &cfg); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if cfg.Target == "" {
		return domain.FailureOutcome("interact step has no target"), nil
	}

	budget := stepTimeout(step)
	var pos game.Position
	found := game.WaitUntil(ctx, e.clk, budget, cfg.PollInterval, func(ctx context.Context) bool {
		p, ok, err := e.ports.Locate(ctx, cfg.Target, locateOptions(cfg.Region, cfg.Threshold))
		if err != nil {
			e.logger.Debug().Err(err).Str("target", cfg.Target).Msg("locate failed")
			return false
		}
		if ok {
			pos = p
		}
		return ok
	})
	if !found {
		return domain.FailureOutcome(fmt.Sprintf("%s not found within budget", cfg.Target)), nil
	}

	if err := e.ports.Click(ctx, pos); err != nil {
		e.logger.Debug().Err(err).Msg("interact click failed")
		return domain.FailureOutcome("interact click failed"), nil
	}
	if err := e.ports.PressKey(ctx, cfg.InteractKey); err != nil {
		e.logger.Debug().Err(err).Msg("interact key failed")
		return domain.FailureOutcome("interact key failed"), nil
	}
	if err := e.clk.Sleep(ctx, cfg.Settle); err != nil {
		return domain.FailureOutcome("interrupted"), nil
	}

	return domain.SuccessOutcome(fmt.Sprintf("interacted with %s", cfg.Target)), nil
}
