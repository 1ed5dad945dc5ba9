package generator

import (
	"math/rand"
	"testing"

	"github.com/verte-zerg/tuitables/internal/model"
)

func TestUniverseItems(t *testing.T) {
	u := Universe{MinTable: 3, MaxTable: 4}
	items := u.Items()
	if len(items) != 24 || u.Size() != 24 {
		t.Fatalf("expected 24 items, got %d (size %d)", len(items), u.Size())
	}
	if items[0] != (model.Item{A: 3, B: 1}) || items[23] != (model.Item{A: 4, B: 12}) {
		t.Fatalf("unexpected enumeration bounds: %v .. %v", items[0], items[23])
	}
	if u.Contains(model.Item{A: 5, B: 1}) || u.Contains(model.Item{A: 3, B: 13}) {
		t.Fatalf("contains accepted an item outside the universe")
	}
}

func TestUniformStaysInRange(t *testing.T) {
	g := NewWithSource(rand.NewSource(1))
	u := Universe{MinTable: 2, MaxTable: 5}
	for i := 0; i < 1000; i++ {
		it := g.Uniform(u)
		if !u.Contains(it) {
			t.Fatalf("draw %v outside universe", it)
		}
	}
}

func TestDrawSkipsBanned(t *testing.T) {
	g := NewWithSource(rand.NewSource(7))
	u := Universe{MinTable: 5, MaxTable: 5}
	banned := func(it model.Item) bool { return it.B != 9 }
	for i := 0; i < 50; i++ {
		if it := g.Draw(u, banned); it != (model.Item{A: 5, B: 9}) {
			t.Fatalf("expected the only legal item 5 × 9, got %v", it)
		}
	}
}

func TestDrawFallsBackWhenEverythingBanned(t *testing.T) {
	g := NewWithSource(rand.NewSource(3))
	u := Universe{MinTable: 7, MaxTable: 7}
	it := g.Draw(u, func(model.Item) bool { return true })
	if !u.Contains(it) {
		t.Fatalf("fallback draw %v outside universe", it)
	}
}

func TestDrawRelaxesLastBanFirst(t *testing.T) {
	g := NewWithSource(rand.NewSource(4))
	u := Universe{MinTable: 5, MaxTable: 5}
	hard := func(it model.Item) bool { return it.B > 2 }
	soft := func(it model.Item) bool { return it.B == 1 }
	for i := 0; i < 20; i++ {
		if it := g.Draw(u, hard, soft); it != (model.Item{A: 5, B: 2}) {
			t.Fatalf("expected 5 × 2, got %v", it)
		}
	}
	onlySoftLeft := func(it model.Item) bool { return it.B != 1 }
	for i := 0; i < 20; i++ {
		if it := g.Draw(u, onlySoftLeft, soft); it != (model.Item{A: 5, B: 1}) {
			t.Fatalf("expected the soft-banned 5 × 1 once nothing else is legal, got %v", it)
		}
	}
}

func TestRepeatDelayRange(t *testing.T) {
	g := NewWithSource(rand.NewSource(11))
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		d := g.RepeatDelay()
		if d < 2 || d > 4 {
			t.Fatalf("repeat delay %d outside [2,4]", d)
		}
		seen[d] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected every delay in [2,4] to occur, saw %v", seen)
	}
}

func TestShuffleKeepsItems(t *testing.T) {
	g := NewWithSource(rand.NewSource(5))
	in := []model.Item{{A: 1, B: 1}, {A: 2, B: 2}, {A: 3, B: 3}}
	out := g.Shuffle(in)
	if len(out) != len(in) {
		t.Fatalf("shuffle changed length")
	}
	seen := map[model.Item]bool{}
	for _, it := range out {
		seen[it] = true
	}
	for _, it := range in {
		if !seen[it] {
			t.Fatalf("shuffle lost %v", it)
		}
	}
}
