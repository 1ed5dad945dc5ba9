package drill

import "github.com/verte-zerg/tuitables/internal/model"

// ScheduledRepeat is a missed item waiting to be asked again.
type ScheduledRepeat struct {
	Item      model.Item
	Remaining int
}

// RepeatQueue keeps scheduled repeats in insertion order, at most one per item.
type RepeatQueue struct {
	entries []ScheduledRepeat
}

// Len returns the number of scheduled repeats.
func (q *RepeatQueue) Len() int {
	return len(q.entries)
}

// Contains reports whether a repeat is scheduled for the item.
func (q *RepeatQueue) Contains(it model.Item) bool {
	return q.index(it) >= 0
}

// Remaining returns the countdown for the item's repeat.
func (q *RepeatQueue) Remaining(it model.Item) (int, bool) {
	idx := q.index(it)
	if idx < 0 {
		return 0, false
	}
	return q.entries[idx].Remaining, true
}

// Push appends a repeat unless one is already scheduled for the item.
func (q *RepeatQueue) Push(it model.Item, remaining int) bool {
	if q.Contains(it) {
		return false
	}
	q.entries = append(q.entries, ScheduledRepeat{Item: it, Remaining: remaining})
	return true
}

// Remove drops the item's repeat, if any.
func (q *RepeatQueue) Remove(it model.Item) bool {
	idx := q.index(it)
	if idx < 0 {
		return false
	}
	q.entries = append(q.entries[:idx], q.entries[idx+1:]...)
	return true
}

// Tick counts one presented question against every repeat.
func (q *RepeatQueue) Tick() {
	for i := range q.entries {
		q.entries[i].Remaining--
	}
}

// PopDue removes and returns the first-inserted repeat whose countdown has run out.
func (q *RepeatQueue) PopDue() (model.Item, bool) {
	for i, e := range q.entries {
		if e.Remaining <= 0 {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return e.Item, true
		}
	}
	return model.Item{}, false
}

// Entries returns a copy of the queue in insertion order.
func (q *RepeatQueue) Entries() []ScheduledRepeat {
	out := make([]ScheduledRepeat, len(q.entries))
	copy(out, q.entries)
	return out
}

func (q *RepeatQueue) index(it model.Item) int {
	for i, e := range q.entries {
		if e.Item == it {
			return i
		}
	}
	return -1
}
