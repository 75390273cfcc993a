// Where: internal/journal/memory.go
// What: In-process journal backend.
// Why: The default install should work with no infrastructure at all.
package journal

import (
	"context"
	"sync"
)

// Memory keeps the newest entries in a bounded ring. Oldest entries fall
// off once the capacity is reached.
type Memory struct {
	mu      sync.RWMutex
	entries []Entry
	cap     int
}

var _ Journal = (*Memory)(nil)

// NewMemory returns a memory journal holding at most capacity entries.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 500
	}
	return &Memory{cap: capacity}
}

func (m *Memory) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	if len(m.entries) > m.cap {
		m.entries = m.entries[len(m.entries)-m.cap:]
	}
	return nil
}

func (m *Memory) Recent(_ context.Context, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit > len(m.entries) {
		limit = len(m.entries)
	}
	out := make([]Entry, 0, limit)
	for i := len(m.entries) - 1; i >= len(m.entries)-limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}
