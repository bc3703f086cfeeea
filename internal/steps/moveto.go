package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/averlon/questline/internal/clock"
	"github.com/averlon/questline/internal/domain"
	"github.com/averlon/questline/internal/game"
)

// moveToConfig is the typed form of a move_to step's config map.
type moveToConfig struct {
	// Objective is an optional template for the tracked objective entry
	// (quest tracker row); when visible it is clicked first so the game
	// orients the camera toward it.
	Objective string `mapstructure:"objective"`

	// MoveKey is held for the travel duration.
	MoveKey string `mapstructure:"move_key"`

	// Duration is how long the move key is held.
	Duration time.Duration `mapstructure:"duration"`

	// Drag holds the right mouse button during travel to steer the
	// camera along with the movement.
	Drag bool `mapstructure:"drag"`
}

// withDefaults fills zero-valued fields.
func (c moveToConfig) withDefaults() moveToConfig {
	if c.MoveKey == "" {
		c.MoveKey = "w"
	}
	if c.Duration == 0 {
		c.Duration = 5 * time.Second
	}
	return c
}

// MoveToExecutor issues movement toward a tracked objective for a
// fixed duration. There is no arrival detection: the step always
// succeeds once the duration elapses. A best-effort proxy, not a
// positional guarantee.
type MoveToExecutor struct {
	ports  game.Ports
	clk    clock.Clock
	logger zerolog.Logger
}

// NewMoveToExecutor creates a MoveToExecutor from the shared deps.
func NewMoveToExecutor(deps ExecutorDeps) *MoveToExecutor {
	return &MoveToExecutor{
		ports:  deps.Ports,
		clk:    deps.Clock,
		logger: deps.Logger.With().Str("executor", "move_to").Logger(),
	}
}

// Type implements Executor.
func (e *MoveToExecutor) Type() domain.StepType {
	return domain.StepTypeMoveTo
}

// Execute implements Executor.
func (e *MoveToExecutor) Execute(ctx context.Context, step *domain.Step) (*domain.StepOutcome, error) {
	var cfg moveToConfig
	if err := decodeConfig(step.Config, &cfg); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	if cfg.Objective != "" {
		if pos, found, err := e.ports.Locate(ctx, cfg.Objective, game.LocateOptions{}); err == nil && found {
			if clickErr := e.ports.Click(ctx, pos); clickErr != nil {
				e.logger.Debug().Err(clickErr).Msg("objective click failed")
			}
		}
	}

	if err := e.ports.KeyDown(ctx, cfg.MoveKey); err != nil {
		e.logger.Debug().Err(err).Msg("move key down failed")
		return domain.FailureOutcome("movement input failed"), nil
	}
	if cfg.Drag {
		if err := e.ports.MouseDown(ctx, game.ButtonRight); err != nil {
			e.logger.Debug().Err(err).Msg("camera drag failed")
		}
	}

	sleepErr := e.clk.Sleep(ctx, cfg.Duration)

	// Always release held inputs, even when the travel was canceled.
	release := context.WithoutCancel(ctx)
	if cfg.Drag {
		if err := e.ports.MouseUp(release, game.ButtonRight); err != nil {
			e.logger.Debug().Err(err).Msg("camera release failed")
		}
	}
	if err := e.ports.KeyUp(release, cfg.MoveKey); err != nil {
		e.logger.Debug().Err(err).Msg("move key release failed")
	}

	if sleepErr != nil {
		return domain.FailureOutcome("travel interrupted"), nil
	}
	return domain.SuccessOutcome(fmt.Sprintf("moved for %s", cfg.Duration)), nil
}
