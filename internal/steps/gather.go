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

// targetConfig holds the perception fields shared by every executor
// that searches the screen for a template.
type targetConfig struct {
	// Target is the template id to locate. Required.
	Target string `mapstructure:"target"`

	// Region restricts the search area. Nil searches the whole screen.
	Region *game.Region `mapstructure:"region"`

	// Threshold is the minimum match confidence; zero uses the backend
	// default.
	Threshold float64 `mapstructure:"threshold"`

	// LocateTimeout bounds one wait for the target to appear. Defaults
	// to the runtime locate timeout, clamped to the step budget.
	LocateTimeout time.Duration `mapstructure:"locate_timeout"`

	// PollInterval is the perception re-sample interval.
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// withDefaults fills zero-valued polling fields.
func (c targetConfig) withDefaults() targetConfig {
	if c.LocateTimeout == 0 {
		c.LocateTimeout = constants.DefaultLocateTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = constants.DefaultPollInterval
	}
	return c
}

// gatherConfig is the typed form of a gather step's config map.
type gatherConfig struct {
	targetConfig `mapstructure:",squash"`

	// Count is the number of nodes to gather. Defaults to 1.
	Count int `mapstructure:"count"`

	// GatherKey triggers the gather action once the node is clicked.
	GatherKey string `mapstructure:"gather_key"`

	// Settle is the pause after each gather action while the animation
	// plays out.
	Settle time.Duration `mapstructure:"settle"`

	// Marker is an optional map marker template; when set the executor
	// navigates toward it before polling for nodes.
	Marker string `mapstructure:"marker"`

	// MoveKey is held during marker navigation.
	MoveKey string `mapstructure:"move_key"`

	// Travel is how long MoveKey is held toward the marker.
	Travel time.Duration `mapstructure:"travel"`
}

// withDefaults fills zero-valued fields.
func (c gatherConfig) withDefaults() gatherConfig {
	c.targetConfig = c.targetConfig.withDefaults()
	if c.Count <= 0 {
		c.Count = 1
	}
	if c.GatherKey == "" {
		c.GatherKey = "f"
	}
	if c.Settle == 0 {
		c.Settle = constants.DefaultSettleDelay
	}
	if c.MoveKey == "" {
		c.MoveKey = "w"
	}
	if c.Travel == 0 {
		c.Travel = 3 * time.Second
	}
	return c
}

// GatherExecutor collects resource nodes: optionally navigate toward a
// map marker, then locate-click-trigger-settle until the configured
// count is reached or the step budget runs out.
type GatherExecutor struct {
	ports  game.Ports
	clk    clock.Clock
	logger zerolog.Logger
}

// NewGatherExecutor creates a GatherExecutor from the shared deps.
func NewGatherExecutor(deps ExecutorDeps) *GatherExecutor {
	return &GatherExecutor{
		ports:  deps.Ports,
		clk:    deps.Clock,
		logger: deps.Logger.With().Str("executor", "gather").Logger(),
	}
}

// Type implements Executor.
func (e *GatherExecutor) Type() domain.StepType {
	return domain.StepTypeGather
}

// Execute implements Executor. Success iff the count target was reached
// before the timeout.
func (e *GatherExecutor) Execute(ctx context.Context, step *domain.Step) (*domain.StepOutcome, error) {
	var cfg gatherConfig
	if err := decodeConfig(step.Config, &cfg); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if cfg.Target == "" {
		return domain.FailureOutcome("gather step has no target"), nil
	}

	budget := stepTimeout(step)
	start := e.clk.Now()

	if cfg.Marker != "" {
		if err := e.navigate(ctx, cfg); err != nil {
			return nil, err
		}
	}

	gathered := 0
	for gathered < cfg.Count {
		if ctx.Err() != nil {
			break
		}
		remaining := budget - e.clk.Since(start)
		if remaining <= 0 {
			break
		}

		pos, found := e.awaitTarget(ctx, cfg, minDuration(cfg.LocateTimeout, remaining))
		if !found {
			e.logger.Debug().Str("target", cfg.Target).Int("gathered", gathered).Msg("gather target not found")
			continue
		}

		if err := e.ports.Click(ctx, pos); err != nil {
			e.logger.Debug().Err(err).Msg("gather click failed")
			continue
		}
		if err := e.ports.PressKey(ctx, cfg.GatherKey); err != nil {
			e.logger.Debug().Err(err).Msg("gather key failed")
			continue
		}
		if err := e.clk.Sleep(ctx, cfg.Settle); err != nil {
			break
		}
		gathered++
		e.logger.Info().Str("target", cfg.Target).Int("gathered", gathered).Int("count", cfg.Count).Msg("gathered node")
	}

	outcome := &domain.StepOutcome{
		Success: gathered >= cfg.Count,
		Count:   gathered,
		Output:  fmt.Sprintf("gathered %d/%d %s", gathered, cfg.Count, cfg.Target),
	}
	return outcome, nil
}

// navigate clicks the map marker if visible and holds the move key for
// the travel duration. Best effort; a missing marker just skips the
// travel leg.
func (e *GatherExecutor) navigate(ctx context.Context, cfg gatherConfig) error {
	pos, found, err := e.ports.Locate(ctx, cfg.Marker, game.LocateOptions{})
	if err != nil {
		e.logger.Debug().Err(err).Str("marker", cfg.Marker).Msg("marker lookup failed")
		return nil
	}
	if !found {
		e.logger.Debug().Str("marker", cfg.Marker).Msg("marker not visible, skipping travel")
		return nil
	}
	if err := e.ports.Click(ctx, pos); err != nil {
		e.logger.Debug().Err(err).Msg("marker click failed")
		return nil
	}
	if err := e.ports.KeyDown(ctx, cfg.MoveKey); err != nil {
		return nil
	}
	sleepErr := e.clk.Sleep(ctx, cfg.Travel)
	// Release the key even when the travel sleep was canceled.
	if err := e.ports.KeyUp(context.WithoutCancel(ctx), cfg.MoveKey); err != nil {
		e.logger.Debug().Err(err).Msg("move key release failed")
	}
	return sleepErr
}

// awaitTarget polls for the target within the given budget slice.
func (e *GatherExecutor) awaitTarget(ctx context.Context, cfg gatherConfig, budget time.Duration) (game.Position, bool) {
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
	return pos, found
}

// minDuration returns the smaller of two durations.
func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
