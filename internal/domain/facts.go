package domain

import "context"

// RunFacts describes where the current step attempt sits within its
// chain run. The orchestrator attaches them to the attempt context so
// conditions and hooks can react to loop passes and consumed retries
// without holding a reference to the orchestrator.
type RunFacts struct {
	// Pass is the 1-based loop pass of the chain run.
	Pass int

	// Retry is the number of retries the current step has consumed.
	// Zero on the first attempt.
	Retry int
}

// runFactsKey is the private context key for RunFacts.
type runFactsKey struct{}

// WithRunFacts returns a context carrying the given run facts.
func WithRunFacts(ctx context.Context, facts RunFacts) context.Context {
	return context.WithValue(ctx, runFactsKey{}, facts)
}

// RunFactsFrom extracts run facts from the context. Outside a run the
// zero value is returned.
func RunFactsFrom(ctx context.Context) RunFacts {
	facts, _ := ctx.Value(runFactsKey{}).(RunFacts)
	return facts
}
