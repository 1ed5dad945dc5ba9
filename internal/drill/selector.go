package drill

import (
	"github.com/verte-zerg/tuitables/internal/generator"
	"github.com/verte-zerg/tuitables/internal/model"
)

// Selector decides which item is presented next.
type Selector struct {
	universe generator.Universe
	gen      *generator.Generator
	queue    *RepeatQueue
	ledger   *FailureLedger

	last    model.Item
	hasLast bool
}

// NewSelector wires a selector to the session's queue and ledger.
func NewSelector(u generator.Universe, gen *generator.Generator, queue *RepeatQueue, ledger *FailureLedger) *Selector {
	return &Selector{universe: u, gen: gen, queue: queue, ledger: ledger}
}

// Next counts one question against the repeat queue, returns the first due repeat
// if there is one, and otherwise draws a random item that is neither scheduled,
// banned, nor the item asked just before.
func (s *Selector) Next() model.Item {
	s.queue.Tick()
	it, ok := s.queue.PopDue()
	if !ok {
		it = s.gen.Draw(s.universe, s.banned, s.repeatsLast)
	}
	s.last = it
	s.hasLast = true
	return it
}

func (s *Selector) banned(it model.Item) bool {
	return s.queue.Contains(it) || s.ledger.Banned(it)
}

// repeatsLast is the weakest ban and the first one dropped when nothing else is legal.
func (s *Selector) repeatsLast(it model.Item) bool {
	return s.hasLast && it == s.last
}
