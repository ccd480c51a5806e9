package database

import (
	"sync"
	"time"
)

// QueryLogEntry is one executed statement as kept for diagnostics.
type QueryLogEntry struct {
	Endpoint  string
	SQL       string
	Success   bool
	Elapsed   time.Duration
	Timestamp time.Time
}

// QueryCallback observes every statement routed through the manager.
type QueryCallback func(QueryLogEntry)

// queryLog is a bounded ring of the most recent statements. A size of
// zero disables logging entirely.
type queryLog struct {
	mu      sync.Mutex
	entries []QueryLogEntry
	next    int
	full    bool
	cb      QueryCallback
}

func newQueryLog(size int) *queryLog {
	q := &queryLog{}
	if size > 0 {
		q.entries = make([]QueryLogEntry, size)
	}
	return q
}

func (q *queryLog) setCallback(cb QueryCallback) {
	q.mu.Lock()
	q.cb = cb
	q.mu.Unlock()
}

func (q *queryLog) record(e QueryLogEntry) {
	q.mu.Lock()
	cb := q.cb
	if len(q.entries) > 0 {
		q.entries[q.next] = e
		q.next = (q.next + 1) % len(q.entries)
		if q.next == 0 {
			q.full = true
		}
	}
	q.mu.Unlock()
	if cb != nil {
		cb(e)
	}
}

// snapshot returns the retained entries, oldest first.
func (q *queryLog) snapshot() []QueryLogEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return nil
	}
	var out []QueryLogEntry
	if q.full {
		out = append(out, q.entries[q.next:]...)
	}
	out = append(out, q.entries[:q.next]...)
	return out
}
