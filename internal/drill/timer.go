package drill

import (
	"math"
	"time"

	"github.com/verte-zerg/tuitables/internal/model"
)

const (
	slowFactor = 1.10
	fastFactor = 0.90
)

// AdaptiveTimer holds the session-wide per-question budget in seconds.
type AdaptiveTimer struct {
	perQ    float64
	floor   float64
	ceiling float64
	policy  model.TimerPolicy
}

// NewAdaptiveTimer clamps the initial budget into [floor, ceiling].
func NewAdaptiveTimer(initial, floor, ceiling float64, policy model.TimerPolicy) *AdaptiveTimer {
	t := &AdaptiveTimer{floor: floor, ceiling: ceiling, policy: policy}
	t.perQ = t.clamp(initial)
	return t
}

// Seconds returns the current budget.
func (t *AdaptiveTimer) Seconds() float64 {
	return t.perQ
}

// Budget returns the current budget as a duration.
func (t *AdaptiveTimer) Budget() time.Duration {
	return time.Duration(t.perQ * float64(time.Second))
}

// Update adjusts the budget after a resolved question and returns the new value.
func (t *AdaptiveTimer) Update(correct, timedOut bool, duration time.Duration) float64 {
	took := duration.Seconds()
	next := t.perQ
	switch {
	case !correct || timedOut:
		next = t.slower()
	case t.policy == model.PolicyHalf:
		if took <= t.perQ/2 {
			next = t.faster()
		}
	case took <= t.perQ/3:
		next = t.faster()
	case took >= 2*t.perQ/3:
		next = t.slower()
	}
	t.perQ = t.clamp(next)
	return t.perQ
}

// slower and faster move the budget by at least one 0.1s display step.
func (t *AdaptiveTimer) slower() float64 {
	return math.Max(roundTenth(t.perQ*slowFactor), roundTenth(t.perQ+0.1))
}

func (t *AdaptiveTimer) faster() float64 {
	return math.Min(roundTenth(t.perQ*fastFactor), roundTenth(t.perQ-0.1))
}

func (t *AdaptiveTimer) clamp(v float64) float64 {
	if v > t.ceiling {
		v = t.ceiling
	}
	if v < t.floor {
		v = t.floor
	}
	return v
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
