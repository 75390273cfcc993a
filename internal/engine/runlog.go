// Where: internal/engine/runlog.go
// What: Bounded in-memory record of recent action runs.
// Why: The dashboard shows what each action did lately without a storage backend.
package engine

import (
	"sync"
	"time"
)

// RunRecord captures one action run.
type RunRecord struct {
	Time    time.Time
	Event   string
	Action  string
	OK      bool
	Outcome string
}

// RunLog keeps the most recent runs per action, newest first.
type RunLog struct {
	mu    sync.RWMutex
	limit int
	runs  map[string][]RunRecord
}

// NewRunLog creates a log keeping up to limit records per action.
func NewRunLog(limit int) *RunLog {
	if limit <= 0 {
		limit = 50
	}
	return &RunLog{limit: limit, runs: map[string][]RunRecord{}}
}

// Add prepends a record, trimming the oldest past the limit.
func (l *RunLog) Add(rec RunRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	recs := append([]RunRecord{rec}, l.runs[rec.Action]...)
	if len(recs) > l.limit {
		recs = recs[:l.limit]
	}
	l.runs[rec.Action] = recs
}

// For returns the recorded runs for an action, newest first.
func (l *RunLog) For(action string) []RunRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]RunRecord(nil), l.runs[action]...)
}
