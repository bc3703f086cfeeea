package quest

import (
	"sync"

	"github.com/averlon/questline/internal/constants"
	"github.com/averlon/questline/internal/domain"
)

// History is a bounded in-memory ring of chain run records. Once full,
// appending evicts the oldest record first. Records are never mutated
// after append and nothing is persisted across restarts.
type History struct {
	mu       sync.RWMutex
	records  []domain.HistoryRecord
	capacity int
}

// NewHistory creates a ring with the given capacity. A non-positive
// capacity falls back to the runtime default.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = constants.HistoryCapacity
	}
	return &History{capacity: capacity}
}

// Append adds a record, evicting the oldest when the ring is full.
func (h *History) Append(record domain.HistoryRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.records) >= h.capacity {
		h.records = h.records[1:]
	}
	h.records = append(h.records, record)
}

// Records returns a copy of the retained records, oldest first.
func (h *History) Records() []domain.HistoryRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.HistoryRecord, len(h.records))
	copy(out, h.records)
	return out
}

// Len returns the number of retained records.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Capacity returns the ring's fixed capacity.
func (h *History) Capacity() int {
	return h.capacity
}
