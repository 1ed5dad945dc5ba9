package stats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/tuitables/internal/model"
)

// TopFactsByFrequency returns the N most-asked facts.
func TopFactsByFrequency(aggs []model.ItemAggregate, n int) []model.Item {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := make([]model.ItemAggregate, len(aggs))
	copy(sorted, aggs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Asked == sorted[j].Asked {
			return sorted[i].Item.Less(sorted[j].Item)
		}
		return sorted[i].Asked > sorted[j].Asked
	})
	n = min(n, len(sorted))
	out := make([]model.Item, 0, n)
	for _, agg := range sorted[:n] {
		out = append(out, agg.Item)
	}
	return out
}

// SelectWeakFacts returns the lowest-accuracy facts that were missed at least once.
// A non-positive top returns all of them.
func SelectWeakFacts(aggs []model.ItemAggregate, top int) []model.Item {
	candidates := make([]model.ItemAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Wrong > 0 {
			candidates = append(candidates, agg)
		}
	}
	sortWeakestFirst(candidates)
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]model.Item, 0, top)
	for _, agg := range candidates[:top] {
		out = append(out, agg.Item)
	}
	return out
}

// ParseFacts parses a comma-separated list like "7x8, 6*9".
func ParseFacts(input string) ([]model.Item, error) {
	var facts []model.Item
	seen := map[model.Item]struct{}{}
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		it, err := parseFact(part)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		facts = append(facts, it)
	}
	return facts, nil
}

func parseFact(s string) (model.Item, error) {
	sep := strings.IndexAny(s, "x*×")
	if sep < 0 {
		return model.Item{}, fmt.Errorf("invalid fact %q: expected AxB", s)
	}
	_, sepWidth := utf8.DecodeRuneInString(s[sep:])
	a, err := strconv.Atoi(strings.TrimSpace(s[:sep]))
	if err != nil {
		return model.Item{}, fmt.Errorf("invalid fact %q: %w", s, err)
	}
	b, err := strconv.Atoi(strings.TrimSpace(s[sep+sepWidth:]))
	if err != nil {
		return model.Item{}, fmt.Errorf("invalid fact %q: %w", s, err)
	}
	if a < model.MinMultiplier || a > model.MaxMultiplier || b < model.MinMultiplier || b > model.MaxMultiplier {
		return model.Item{}, fmt.Errorf("invalid fact %q: factors must be in %d..%d", s, model.MinMultiplier, model.MaxMultiplier)
	}
	return model.Item{A: a, B: b}, nil
}
