package drill

import (
	"sort"

	"github.com/verte-zerg/tuitables/internal/model"
)

// BanThreshold is the wrong-attempt count that excludes an item for the rest of a session.
const BanThreshold = 2

// FailureLedger counts wrong attempts per item within a session.
type FailureLedger struct {
	counts map[model.Item]int
}

// NewFailureLedger returns an empty ledger.
func NewFailureLedger() *FailureLedger {
	return &FailureLedger{counts: map[model.Item]int{}}
}

// Record adds one wrong attempt and returns the new count.
func (l *FailureLedger) Record(it model.Item) int {
	l.counts[it]++
	return l.counts[it]
}

// Count returns the wrong attempts recorded for the item.
func (l *FailureLedger) Count(it model.Item) int {
	return l.counts[it]
}

// Banned reports whether the item reached the ban threshold.
func (l *FailureLedger) Banned(it model.Item) bool {
	return l.counts[it] >= BanThreshold
}

// ItemSet is an unordered set of items.
type ItemSet struct {
	m map[model.Item]struct{}
}

// NewItemSet returns an empty set.
func NewItemSet() ItemSet {
	return ItemSet{m: map[model.Item]struct{}{}}
}

// Add inserts the item and reports whether it was new.
func (s ItemSet) Add(it model.Item) bool {
	if _, ok := s.m[it]; ok {
		return false
	}
	s.m[it] = struct{}{}
	return true
}

// Has reports membership.
func (s ItemSet) Has(it model.Item) bool {
	_, ok := s.m[it]
	return ok
}

// Len returns the set size.
func (s ItemSet) Len() int {
	return len(s.m)
}

// Sorted returns the members ordered by A then B.
func (s ItemSet) Sorted() []model.Item {
	out := make([]model.Item, 0, len(s.m))
	for it := range s.m {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
