// Package generator draws multiplication facts from the configured table range.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/tuitables/internal/model"
)

// MaxDrawAttempts bounds rejection sampling before falling back to enumeration.
const MaxDrawAttempts = 200

const (
	minRepeatDelay = 2
	maxRepeatDelay = 4
)

// Universe is the rectangle of drillable facts: MinTable..MaxTable × 1..12.
type Universe struct {
	MinTable int
	MaxTable int
}

// Size returns the number of items in the universe.
func (u Universe) Size() int {
	if u.MaxTable < u.MinTable {
		return 0
	}
	return (u.MaxTable - u.MinTable + 1) * (model.MaxMultiplier - model.MinMultiplier + 1)
}

// Contains reports whether the item lies inside the universe.
func (u Universe) Contains(it model.Item) bool {
	return it.A >= u.MinTable && it.A <= u.MaxTable &&
		it.B >= model.MinMultiplier && it.B <= model.MaxMultiplier
}

// Items enumerates the universe in row-major order.
func (u Universe) Items() []model.Item {
	items := make([]model.Item, 0, u.Size())
	for a := u.MinTable; a <= u.MaxTable; a++ {
		for b := model.MinMultiplier; b <= model.MaxMultiplier; b++ {
			items = append(items, model.Item{A: a, B: b})
		}
	}
	return items
}

// Generator produces random facts and repeat delays.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource returns a Generator backed by the given source.
func NewWithSource(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// Uniform draws any item of the universe, ignoring bans.
func (g *Generator) Uniform(u Universe) model.Item {
	span := u.MaxTable - u.MinTable + 1
	if span < 1 {
		span = 1
	}
	return model.Item{
		A: u.MinTable + g.rnd.Intn(span),
		B: model.MinMultiplier + g.rnd.Intn(model.MaxMultiplier-model.MinMultiplier+1),
	}
}

// Draw picks an item uniformly among those rejected by none of the bans.
// Rejection sampling runs first. When it is exhausted the legal complement is
// enumerated, dropping the last ban each time the complement comes up empty, and
// with no bans left the draw is unconstrained so a session never stalls.
func (g *Generator) Draw(u Universe, bans ...func(model.Item) bool) model.Item {
	if len(bans) == 0 {
		return g.Uniform(u)
	}
	for i := 0; i < MaxDrawAttempts; i++ {
		it := g.Uniform(u)
		if !rejected(it, bans) {
			return it
		}
	}
	all := u.Items()
	for n := len(bans); n > 0; n-- {
		candidates := make([]model.Item, 0, len(all))
		for _, it := range all {
			if !rejected(it, bans[:n]) {
				candidates = append(candidates, it)
			}
		}
		if len(candidates) > 0 {
			return candidates[g.rnd.Intn(len(candidates))]
		}
	}
	return g.Uniform(u)
}

func rejected(it model.Item, bans []func(model.Item) bool) bool {
	for _, ban := range bans {
		if ban(it) {
			return true
		}
	}
	return false
}

// RepeatDelay returns how many questions a missed item waits before recurring.
func (g *Generator) RepeatDelay() int {
	return minRepeatDelay + g.rnd.Intn(maxRepeatDelay-minRepeatDelay+1)
}

// Shuffle returns a shuffled copy of items.
func (g *Generator) Shuffle(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	copy(out, items)
	g.rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
