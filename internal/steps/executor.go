// Package steps provides step execution implementations for the
// questline orchestrator.
//
// This package contains the Executor interface and implementations for
// each step type (gather, combat, interact, move_to, wait, custom). The
// Registry maps step types to their executors; the custom slot is the
// extension point for embedder-supplied behavior.
//
// Import rules:
//   - CAN import: internal/clock, internal/constants, internal/domain, internal/errors, internal/game
//   - MUST NOT import: internal/quest, internal/schedule, internal/cli
package steps

import (
	"context"
	"fmt"
	"sync"

	"github.com/averlon/questline/internal/domain"
	questerrors "github.com/averlon/questline/internal/errors"
)

// Executor defines the interface for executing a single step type.
//
// All Execute implementations must:
//   - Check ctx.Err() at loop boundaries and during long operations
//   - Sample the clock at entry and stop with failure once the step's
//     timeout budget is exceeded, regardless of inner attempts
//   - Treat perception misses as expected (retry within budget, log at
//     debug), never as errors
//   - Return a non-nil error only for unexpected faults; the
//     orchestrator catches those at the step boundary
type Executor interface {
	// Execute runs the step and reports its outcome.
	// The context controls cancellation; the step carries the
	// configuration and timeout budget.
	Execute(ctx context.Context, step *domain.Step) (*domain.StepOutcome, error)

	// Type returns the StepType this executor handles.
	Type() domain.StepType
}

// Registry maps step types to their executors.
// It is safe for concurrent read access after initialization.
// Use NewRegistry() to create and Register() to add executors.
type Registry struct {
	mu        sync.RWMutex
	executors map[domain.StepType]Executor
}

// NewRegistry creates a new empty executor registry.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[domain.StepType]Executor),
	}
}

// Register adds an executor to the registry.
// If an executor for the same type already exists, it will be replaced.
func (r *Registry) Register(e Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[e.Type()] = e
}

// Get retrieves the executor for a step type.
// Returns ErrExecutorNotFound if no executor is registered for the type.
func (r *Registry) Get(stepType domain.StepType) (Executor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.executors[stepType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", questerrors.ErrExecutorNotFound, stepType)
	}
	return e, nil
}

// Has checks if an executor is registered for the given step type.
func (r *Registry) Has(stepType domain.StepType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.executors[stepType]
	return ok
}

// Types returns all registered step types.
func (r *Registry) Types() []domain.StepType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]domain.StepType, 0, len(r.executors))
	for t := range r.executors {
		types = append(types, t)
	}
	return types
}
