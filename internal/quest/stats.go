package quest

import (
	"sync"

	"github.com/averlon/questline/internal/domain"
)

// Statistics holds the orchestrator's process-lifetime step counters.
// Each step is counted once per pass by its final outcome, regardless
// of how many retry attempts were consumed. Counters reset only on
// explicit request.
//
// Counters are mutated only by the orchestration goroutine; the mutex
// exists so progress reporters can snapshot concurrently.
type Statistics struct {
	mu        sync.RWMutex
	attempted int
	completed int
	failed    int
	skipped   int
}

// NewStatistics creates zeroed statistics.
func NewStatistics() *Statistics {
	return &Statistics{}
}

// Record counts one step outcome. Non-terminal statuses are ignored.
func (s *Statistics) Record(status domain.StepStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch status {
	case domain.StepStatusCompleted:
		s.attempted++
		s.completed++
	case domain.StepStatusFailed:
		s.attempted++
		s.failed++
	case domain.StepStatusSkipped:
		s.attempted++
		s.skipped++
	case domain.StepStatusPending, domain.StepStatusInProgress:
	}
}

// Snapshot returns a point-in-time copy of the counters.
func (s *Statistics) Snapshot() domain.StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.StatsSnapshot{
		Attempted: s.attempted,
		Completed: s.completed,
		Failed:    s.failed,
		Skipped:   s.skipped,
	}
}

// Reset zeroes all counters.
func (s *Statistics) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempted = 0
	s.completed = 0
	s.failed = 0
	s.skipped = 0
}
