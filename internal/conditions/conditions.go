// Package conditions builds step pre/postcondition predicates from
// expression strings. Expressions are compiled once at chain load time
// with expr-lang/expr against a fixed environment of world facts
// (perception lookups, vitals, run progress) and evaluated on every
// attempt, so a bad expression is a load error rather than a runtime
// surprise.
//
// Import rules:
//   - CAN import: internal/domain, internal/errors, internal/game, internal/vitals, std lib
//   - MUST NOT import: internal/steps, internal/quest, internal/schedule, internal/cli
package conditions

import (
	"context"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog"

	"github.com/averlon/questline/internal/domain"
	questerrors "github.com/averlon/questline/internal/errors"
	"github.com/averlon/questline/internal/game"
	"github.com/averlon/questline/internal/vitals"
)

// World supplies the facts condition expressions can reference.
// Vitals is optional; without it hp/mp read as 1.0 and dead/in_combat
// as false, so expressions stay evaluable against perception alone.
type World struct {
	Perception game.Perception
	Vitals     *vitals.Reader
}

// Compiler turns expression strings into domain.Condition predicates.
type Compiler struct {
	world  *World
	logger zerolog.Logger
}

// NewCompiler creates a Compiler evaluating against the given world.
func NewCompiler(world *World, logger zerolog.Logger) *Compiler {
	return &Compiler{
		world:  world,
		logger: logger.With().Str("component", "conditions").Logger(),
	}
}

// Compile compiles src into a condition. Unknown identifiers and
// non-boolean results are rejected here, at load time.
func (c *Compiler) Compile(src string) (domain.Condition, error) {
	program, err := expr.Compile(src, expr.Env(c.env(context.Background())), expr.AsBool())
	if err != nil {
		return nil, questerrors.Wrapf(questerrors.ErrConditionInvalid, "%q: %v", src, err)
	}
	return c.condition(src, program), nil
}

// condition wraps a compiled program as a domain.Condition. Evaluation
// errors are returned to the caller, which treats them as unmet.
func (c *Compiler) condition(src string, program *vm.Program) domain.Condition {
	return func(ctx context.Context) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		out, err := vm.Run(program, c.env(ctx))
		if err != nil {
			c.logger.Debug().Err(err).Str("expression", src).Msg("condition evaluation failed")
			return false, questerrors.Wrapf(questerrors.ErrConditionInvalid, "%q: %v", src, err)
		}
		result, ok := out.(bool)
		if !ok {
			return false, questerrors.Wrapf(questerrors.ErrConditionInvalid, "%q did not yield a boolean", src)
		}
		return result, nil
	}
}

// env builds the expression environment for one evaluation. The same
// shape is used at compile time, so the identifier set is closed.
func (c *Compiler) env(ctx context.Context) map[string]any {
	facts := domain.RunFactsFrom(ctx)
	return map[string]any{
		// found reports whether the named target is currently on screen.
		"found": func(target string) bool {
			_, found, err := c.world.Perception.Locate(ctx, target, game.LocateOptions{})
			if err != nil {
				c.logger.Debug().Err(err).Str("target", target).Msg("locate failed in condition")
				return false
			}
			return found
		},
		// text reports whether the pattern matches any on-screen text.
		"text": func(pattern string) bool {
			_, found, err := c.world.Perception.RecognizeText(ctx, game.TextOptions{Pattern: pattern})
			if err != nil {
				c.logger.Debug().Err(err).Str("pattern", pattern).Msg("recognize failed in condition")
				return false
			}
			return found
		},
		// hp and mp are vital ratios in [0,1]; unreadable bars read full
		// so threshold guards fail open rather than blocking a chain.
		"hp": func() float64 {
			if c.world.Vitals == nil {
				return 1.0
			}
			ratio, ok := c.world.Vitals.HP(ctx)
			if !ok {
				return 1.0
			}
			return ratio
		},
		"mp": func() float64 {
			if c.world.Vitals == nil {
				return 1.0
			}
			ratio, ok := c.world.Vitals.MP(ctx)
			if !ok {
				return 1.0
			}
			return ratio
		},
		"dead": func() bool {
			if c.world.Vitals == nil {
				return false
			}
			return c.world.Vitals.Dead(ctx)
		},
		"in_combat": func() bool {
			if c.world.Vitals == nil {
				return false
			}
			return c.world.Vitals.InCombat(ctx)
		},
		// pass and retries expose run progress: the 1-based loop pass of
		// the current chain run and the retries consumed by the current
		// step. Both read 0 outside a run.
		"pass":    func() int { return facts.Pass },
		"retries": func() int { return facts.Retry },
	}
}
