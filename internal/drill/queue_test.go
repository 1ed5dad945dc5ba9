package drill

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuitables/internal/generator"
	"github.com/verte-zerg/tuitables/internal/model"
)

func TestRepeatQueuePushIgnoresDuplicates(t *testing.T) {
	var q RepeatQueue
	it := model.Item{A: 4, B: 7}
	require.True(t, q.Push(it, 3))
	assert.False(t, q.Push(it, 2))
	assert.Equal(t, 1, q.Len())
	rem, ok := q.Remaining(it)
	require.True(t, ok)
	assert.Equal(t, 3, rem)
}

func TestRepeatQueuePopDueIsFIFO(t *testing.T) {
	var q RepeatQueue
	first := model.Item{A: 2, B: 2}
	second := model.Item{A: 3, B: 3}
	q.Push(first, 1)
	q.Push(second, 0)
	q.Tick()

	got, ok := q.PopDue()
	require.True(t, ok)
	assert.Equal(t, first, got, "first inserted due item wins over smaller remaining")
	got, ok = q.PopDue()
	require.True(t, ok)
	assert.Equal(t, second, got)
	_, ok = q.PopDue()
	assert.False(t, ok)
}

func TestSelectorDueRepeatOrdering(t *testing.T) {
	u := generator.Universe{MinTable: 2, MaxTable: 12}
	q := &RepeatQueue{}
	sel := NewSelector(u, generator.NewWithSource(rand.NewSource(1)), q, NewFailureLedger())

	twos := model.Item{A: 2, B: 2}
	threes := model.Item{A: 3, B: 3}
	q.Push(twos, 2)
	q.Push(threes, 1)

	assert.Equal(t, threes, sel.Next())
	assert.Equal(t, twos, sel.Next())
	assert.Equal(t, 0, q.Len())
}

func TestSelectorSimultaneousDueReturnsInsertionOrder(t *testing.T) {
	u := generator.Universe{MinTable: 2, MaxTable: 12}
	q := &RepeatQueue{}
	sel := NewSelector(u, generator.NewWithSource(rand.NewSource(1)), q, NewFailureLedger())

	a := model.Item{A: 8, B: 6}
	b := model.Item{A: 5, B: 5}
	q.Push(a, 1)
	q.Push(b, 1)

	assert.Equal(t, a, sel.Next())
	assert.Equal(t, b, sel.Next())
}

func TestSelectorRandomPhaseSkipsScheduledAndBanned(t *testing.T) {
	u := generator.Universe{MinTable: 5, MaxTable: 5}
	q := &RepeatQueue{}
	ledger := NewFailureLedger()
	sel := NewSelector(u, generator.NewWithSource(rand.NewSource(9)), q, ledger)

	for b := 1; b <= 10; b++ {
		it := model.Item{A: 5, B: b}
		ledger.Record(it)
		ledger.Record(it)
	}
	q.Push(model.Item{A: 5, B: 11}, 100)

	for i := 0; i < 20; i++ {
		assert.Equal(t, model.Item{A: 5, B: 12}, sel.Next())
	}
}
