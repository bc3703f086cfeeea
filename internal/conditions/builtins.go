package conditions

import (
	"context"

	"github.com/averlon/questline/internal/domain"
	questerrors "github.com/averlon/questline/internal/errors"
)

// builtins constructs the named predicate table for the given world.
// Chain files may reference these by name instead of writing an
// expression. Each entry delegates to the same world facts the
// expression environment exposes, so "in_combat" the builtin and
// in_combat() the expression always agree.
func builtins(world *World) map[string]domain.Condition {
	return map[string]domain.Condition{
		"always": func(ctx context.Context) (bool, error) {
			return true, ctx.Err()
		},
		"never": func(ctx context.Context) (bool, error) {
			return false, ctx.Err()
		},
		"alive": func(ctx context.Context) (bool, error) {
			if world.Vitals == nil {
				return true, ctx.Err()
			}
			return !world.Vitals.Dead(ctx), ctx.Err()
		},
		"dead": func(ctx context.Context) (bool, error) {
			if world.Vitals == nil {
				return false, ctx.Err()
			}
			return world.Vitals.Dead(ctx), ctx.Err()
		},
		"in_combat": func(ctx context.Context) (bool, error) {
			if world.Vitals == nil {
				return false, ctx.Err()
			}
			return world.Vitals.InCombat(ctx), ctx.Err()
		},
		"out_of_combat": func(ctx context.Context) (bool, error) {
			if world.Vitals == nil {
				return true, ctx.Err()
			}
			return !world.Vitals.InCombat(ctx), ctx.Err()
		},
	}
}

// Builtins returns the full named predicate table for the given world.
// The CLI hands this to custom steps as their callable set.
func Builtins(world *World) map[string]domain.Condition {
	return builtins(world)
}

// Builtin resolves a named builtin predicate for the given world.
func Builtin(world *World, name string) (domain.Condition, error) {
	cond, ok := builtins(world)[name]
	if !ok {
		return nil, questerrors.Wrapf(questerrors.ErrConditionInvalid, "unknown builtin condition %q", name)
	}
	return cond, nil
}

// BuiltinNames lists the available builtin predicate names.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins(&World{})))
	for name := range builtins(&World{}) {
		names = append(names, name)
	}
	return names
}
