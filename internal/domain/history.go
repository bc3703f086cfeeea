package domain

import "time"

// StatsSnapshot is a point-in-time copy of the orchestrator's
// process-lifetime step counters.
type StatsSnapshot struct {
	// Attempted counts steps processed, once per step per pass.
	Attempted int `json:"attempted"`

	// Completed counts steps that ended completed.
	Completed int `json:"completed"`

	// Failed counts steps that exhausted their retries, once per step
	// per pass regardless of how many attempts were consumed.
	Failed int `json:"failed"`

	// Skipped counts steps whose precondition gated them out.
	Skipped int `json:"skipped"`
}

// HistoryRecord captures one completed chain run. Records are appended
// when a run finishes and never mutated afterward; the orchestrator
// keeps them in a bounded in-memory ring, oldest evicted first.
//
// Example JSON representation:
//
//	{
//	  "id": "run-5f3a9c1e",
//	  "chain_id": "morning-mining",
//	  "chain_name": "Morning mining route",
//	  "started_at": "2026-01-09T08:00:00Z",
//	  "completed_at": "2026-01-09T08:12:31Z",
//	  "passes": 3,
//	  "status": "succeeded",
//	  "success": true,
//	  "stats": {"attempted": 9, "completed": 9, "failed": 0, "skipped": 0}
//	}
type HistoryRecord struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// ChainID and ChainName identify the chain that ran.
	ChainID   string `json:"chain_id"`
	ChainName string `json:"chain_name"`

	// StartedAt and CompletedAt bound the run in wall-clock time.
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	// Passes is the number of full passes the run performed (1 unless
	// the chain loops).
	Passes int `json:"passes"`

	// Status is the run's final disposition.
	Status RunStatus `json:"status"`

	// Success is true when no step of the final pass ended failed and
	// the run was not stopped.
	Success bool `json:"success"`

	// Stats is the orchestrator's counter snapshot at record time.
	Stats StatsSnapshot `json:"stats"`
}
