package quest

import (
	"time"

	"github.com/averlon/questline/internal/domain"
)

// Metrics collects metrics about chain and step execution.
// Implementations can send these to monitoring systems; the default is
// a no-op.
type Metrics interface {
	// ChainStarted is called when a chain run begins.
	ChainStarted(chainID, chainName string)

	// ChainCompleted is called when a chain run finishes.
	ChainCompleted(chainID string, passes int, duration time.Duration, status domain.RunStatus)

	// PassCompleted is called after each full pass over a chain.
	PassCompleted(chainID string, pass int, duration time.Duration)

	// StepExecuted is called after each step reaches a terminal status.
	StepExecuted(chainID, stepID string, stepType domain.StepType, duration time.Duration, status domain.StepStatus)
}

// NoopMetrics is a no-op implementation of Metrics for default behavior.
type NoopMetrics struct{}

// Ensure NoopMetrics implements Metrics interface.
var _ Metrics = (*NoopMetrics)(nil)

// ChainStarted implements Metrics.
func (NoopMetrics) ChainStarted(string, string) {}

// ChainCompleted implements Metrics.
func (NoopMetrics) ChainCompleted(string, int, time.Duration, domain.RunStatus) {}

// PassCompleted implements Metrics.
func (NoopMetrics) PassCompleted(string, int, time.Duration) {}

// StepExecuted implements Metrics.
func (NoopMetrics) StepExecuted(string, string, domain.StepType, time.Duration, domain.StepStatus) {}
