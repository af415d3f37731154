package coordinator

import "time"

// PendingEntry marks one command that is still keeping the overlay visible.
type PendingEntry struct {
	CommandID string
	QueuedAt  time.Time
}

// Queue is the debounce queue. Its length equals the number of hide timers
// that have been scheduled but not yet fired.
//
// Queue is not safe for concurrent use; it is only touched on the UI context.
type Queue struct {
	entries []PendingEntry
}

// Push appends an entry at the back.
func (q *Queue) Push(e PendingEntry) {
	q.entries = append(q.entries, e)
}

// PopFront removes the oldest entry. It is a no-op on an empty queue.
func (q *Queue) PopFront() (PendingEntry, bool) {
	if len(q.entries) == 0 {
		return PendingEntry{}, false
	}
	e := q.entries[0]
	q.entries[0] = PendingEntry{}
	q.entries = q.entries[1:]
	if len(q.entries) == 0 {
		q.entries = nil
	}
	return e, true
}

// IsEmpty reports whether no entries are pending.
func (q *Queue) IsEmpty() bool {
	return len(q.entries) == 0
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	return len(q.entries)
}
