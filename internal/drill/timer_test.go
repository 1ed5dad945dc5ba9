package drill

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/verte-zerg/tuitables/internal/model"
)

func TestAdaptiveTimerClampsInitial(t *testing.T) {
	assert.Equal(t, 30.0, NewAdaptiveTimer(45, 2, 30, model.PolicyBand).Seconds())
	assert.Equal(t, 2.0, NewAdaptiveTimer(0.5, 2, 30, model.PolicyBand).Seconds())
}

func TestAdaptiveTimerApproachesCeiling(t *testing.T) {
	timer := NewAdaptiveTimer(10, 2, 30, model.PolicyBand)
	prev := timer.Seconds()
	for i := 0; i < 100; i++ {
		got := timer.Update(false, i%2 == 0, 3*time.Second)
		assert.LessOrEqual(t, got, 30.0)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
	assert.Equal(t, 30.0, timer.Seconds())
}

func TestAdaptiveTimerApproachesFloor(t *testing.T) {
	timer := NewAdaptiveTimer(10, 2, 30, model.PolicyBand)
	for i := 0; i < 100; i++ {
		got := timer.Update(true, false, 0)
		assert.GreaterOrEqual(t, got, 2.0)
	}
	assert.Equal(t, 2.0, timer.Seconds())
}

func TestAdaptiveTimerBandPolicy(t *testing.T) {
	tests := []struct {
		name     string
		correct  bool
		timedOut bool
		took     time.Duration
		want     float64
	}{
		{name: "miss slows down", correct: false, took: time.Second, want: 9.9},
		{name: "timeout slows down", correct: false, timedOut: true, took: 9 * time.Second, want: 9.9},
		{name: "fast correct speeds up", correct: true, took: 2 * time.Second, want: 8.1},
		{name: "middle correct keeps budget", correct: true, took: 4500 * time.Millisecond, want: 9},
		{name: "slow correct slows down", correct: true, took: 7 * time.Second, want: 9.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timer := NewAdaptiveTimer(9, 2, 30, model.PolicyBand)
			assert.InDelta(t, tt.want, timer.Update(tt.correct, tt.timedOut, tt.took), 1e-9)
		})
	}
}

func TestAdaptiveTimerHalfPolicy(t *testing.T) {
	timer := NewAdaptiveTimer(10, 2, 30, model.PolicyHalf)
	assert.InDelta(t, 10.0, timer.Update(true, false, 8*time.Second), 1e-9, "slow correct is left alone")
	assert.InDelta(t, 9.0, timer.Update(true, false, 5*time.Second), 1e-9)
	assert.InDelta(t, 9.9, timer.Update(false, false, time.Second), 1e-9)
}

func TestAdaptiveTimerSubSecondBudgetStillMoves(t *testing.T) {
	timer := NewAdaptiveTimer(0.4, 0.1, 30, model.PolicyBand)
	prev := timer.Seconds()
	for i := 0; i < 20; i++ {
		got := timer.Update(false, true, time.Second)
		assert.Greater(t, got, prev, "timeout %d did not slow the timer", i+1)
		prev = got
	}

	timer = NewAdaptiveTimer(0.4, 0.1, 30, model.PolicyBand)
	assert.InDelta(t, 0.3, timer.Update(true, false, 0), 1e-9)
	assert.InDelta(t, 0.2, timer.Update(true, false, 0), 1e-9)
	assert.InDelta(t, 0.1, timer.Update(true, false, 0), 1e-9)
	assert.InDelta(t, 0.1, timer.Update(true, false, 0), 1e-9, "floor holds")
}
