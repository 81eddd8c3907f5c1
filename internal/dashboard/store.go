package dashboard

import (
	"sync"

	"solwatch/internal/aggregator"
)

// cycleStore retains a bounded collection of the most recent refresh cycles.
// It is safe for concurrent use.
type cycleStore struct {
	mu    sync.RWMutex
	items []aggregator.Cycle
	limit int
}

func newCycleStore(limit int) *cycleStore {
	if limit <= 0 {
		limit = 200
	}
	return &cycleStore{limit: limit}
}

func (s *cycleStore) handle(cycle aggregator.Cycle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, cycle)
	if len(s.items) > s.limit {
		// keep the most recent entries only
		s.items = append([]aggregator.Cycle(nil), s.items[len(s.items)-s.limit:]...)
	}
}

func (s *cycleStore) snapshot() []aggregator.Cycle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]aggregator.Cycle, len(s.items))
	copy(out, s.items)
	return out
}

func (s *cycleStore) latest() (aggregator.Cycle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.items) == 0 {
		return aggregator.Cycle{}, false
	}
	return s.items[len(s.items)-1], true
}
