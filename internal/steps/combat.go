package steps

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/averlon/questline/internal/clock"
	"github.com/averlon/questline/internal/constants"
	"github.com/averlon/questline/internal/domain"
	"github.com/averlon/questline/internal/game"
)

// skillConfig is one rotation entry: a key to cast, a priority, and a
// cooldown tracked against the clock.
type skillConfig struct {
	// Key is pressed to cast the skill.
	Key string `mapstructure:"key"`

	// Priority orders the rotation; the highest-priority ready skill
	// casts each tick.
	Priority int `mapstructure:"priority"`

	// Cooldown is the minimum time between casts of this skill.
	Cooldown time.Duration `mapstructure:"cooldown"`
}

// combatConfig is the typed form of a combat step's config map.
type combatConfig struct {
	targetConfig `mapstructure:",squash"`

	// Kills is the number of confirmed kills to reach. Defaults to 1.
	Kills int `mapstructure:"kills"`

	// Skills is the rotation. Empty falls back to spamming AttackKey.
	Skills []skillConfig `mapstructure:"skills"`

	// AttackKey is the basic attack used when no rotation is configured.
	AttackKey string `mapstructure:"attack_key"`

	// CombatMarker is the template visible while fighting, used to
	// detect combat when no predicate was injected.
	CombatMarker string `mapstructure:"combat_marker"`

	// CastInterval is the pause between rotation ticks.
	CastInterval time.Duration `mapstructure:"cast_interval"`

	// Settle is the pause after combat ends before re-polling for the
	// target to confirm the kill.
	Settle time.Duration `mapstructure:"settle"`
}

// withDefaults fills zero-valued fields and sorts the rotation.
func (c combatConfig) withDefaults() combatConfig {
	c.targetConfig = c.targetConfig.withDefaults()
	if c.Kills <= 0 {
		c.Kills = 1
	}
	if c.AttackKey == "" {
		c.AttackKey = "1"
	}
	if c.CombatMarker == "" {
		c.CombatMarker = "combat_hp_bar"
	}
	if c.CastInterval == 0 {
		c.CastInterval = 500 * time.Millisecond
	}
	if c.Settle == 0 {
		c.Settle = constants.DefaultSettleDelay
	}
	sort.SliceStable(c.Skills, func(i, j int) bool {
		return c.Skills[i].Priority > c.Skills[j].Priority
	})
	return c
}

// CombatExecutor engages enemies: locate, click to engage, run the
// skill rotation while in combat, then re-poll for the target to infer
// a kill, until the kill count or the step budget is reached.
type CombatExecutor struct {
	ports    game.Ports
	clk      clock.Clock
	inCombat func(ctx context.Context) bool
	logger   zerolog.Logger
}

// NewCombatExecutor creates a CombatExecutor from the shared deps.
func NewCombatExecutor(deps ExecutorDeps) *CombatExecutor {
	return &CombatExecutor{
		ports:    deps.Ports,
		clk:      deps.Clock,
		inCombat: deps.InCombat,
		logger:   deps.Logger.With().Str("executor", "combat").Logger(),
	}
}

// Type implements Executor.
func (e *CombatExecutor) Type() domain.StepType {
	return domain.StepTypeCombat
}

// Execute implements Executor. Success iff the kill target was reached
// before the timeout.
func (e *CombatExecutor) Execute(ctx context.Context, step *domain.Step) (*domain.StepOutcome, error) {
	var cfg combatConfig
	if err := decodeConfig(step.Config, &cfg); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if cfg.Target == "" {
		return domain.FailureOutcome("combat step has no target"), nil
	}

	budget := stepTimeout(step)
	start := e.clk.Now()
	cooldowns := make([]time.Time, len(cfg.Skills))

	kills := 0
	for kills < cfg.Kills {
		if ctx.Err() != nil {
			break
		}
		remaining := budget - e.clk.Since(start)
		if remaining <= 0 {
			break
		}

		pos, found := e.awaitEnemy(ctx, cfg, minDuration(cfg.LocateTimeout, remaining))
		if !found {
			e.logger.Debug().Str("target", cfg.Target).Int("kills", kills).Msg("enemy not found")
			continue
		}

		if err := e.ports.Click(ctx, pos); err != nil {
			e.logger.Debug().Err(err).Msg("engage click failed")
			continue
		}

		if err := e.fight(ctx, cfg, cooldowns, start, budget); err != nil {
			break
		}
		if err := e.clk.Sleep(ctx, cfg.Settle); err != nil {
			break
		}

		// The enemy no longer being on screen after combat is the kill
		// signal; persistence means the fight is not over yet.
		if _, still, err := e.ports.Locate(ctx, cfg.Target, locateOptions(cfg.Region, cfg.Threshold)); err == nil && !still {
			kills++
			e.logger.Info().Str("target", cfg.Target).Int("kills", kills).Int("goal", cfg.Kills).Msg("kill confirmed")
		}
	}

	outcome := &domain.StepOutcome{
		Success: kills >= cfg.Kills,
		Count:   kills,
		Output:  fmt.Sprintf("killed %d/%d %s", kills, cfg.Kills, cfg.Target),
	}
	return outcome, nil
}

// fight runs the rotation while the in-combat predicate holds, casting
// the highest-priority ready skill each tick.
func (e *CombatExecutor) fight(ctx context.Context, cfg combatConfig, cooldowns []time.Time, start time.Time, budget time.Duration) error {
	for e.fighting(ctx, cfg) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if e.clk.Since(start) >= budget {
			return nil
		}
		if err := e.cast(ctx, cfg, cooldowns); err != nil {
			e.logger.Debug().Err(err).Msg("cast failed")
		}
		if err := e.clk.Sleep(ctx, cfg.CastInterval); err != nil {
			return err
		}
	}
	return nil
}

// cast presses the best ready skill, or the basic attack when the whole
// rotation is cooling down or absent.
func (e *CombatExecutor) cast(ctx context.Context, cfg combatConfig, cooldowns []time.Time) error {
	now := e.clk.Now()
	for i, skill := range cfg.Skills {
		if now.Before(cooldowns[i]) {
			continue
		}
		cooldowns[i] = now.Add(skill.Cooldown)
		return e.ports.PressKey(ctx, skill.Key)
	}
	return e.ports.PressKey(ctx, cfg.AttackKey)
}

// fighting evaluates the in-combat predicate, falling back to the
// combat marker template when none was injected.
func (e *CombatExecutor) fighting(ctx context.Context, cfg combatConfig) bool {
	if e.inCombat != nil {
		return e.inCombat(ctx)
	}
	_, found, err := e.ports.Locate(ctx, cfg.CombatMarker, game.LocateOptions{})
	if err != nil {
		e.logger.Debug().Err(err).Msg("combat marker lookup failed")
		return false
	}
	return found
}

// awaitEnemy polls for the target within the given budget slice.
func (e *CombatExecutor) awaitEnemy(ctx context.Context, cfg combatConfig, budget time.Duration) (game.Position, bool) {
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
