package drill

import (
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuitables/internal/generator"
	"github.com/verte-zerg/tuitables/internal/model"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, mutate func(*model.Config)) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Grace = 0
	cfg.TotalSeconds = 3600
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewSession(cfg, generator.NewWithSource(rand.NewSource(42)))
	require.NoError(t, err)
	return s
}

// present puts it on screen as if the selector had drawn it.
func present(s *Session, it model.Item, now time.Time) {
	s.current = it
	s.clock.StartQuestion(now, s.timer.Budget())
	s.phase = PhasePresented
	s.phaseAt = now
	s.entry = ""
}

func answer(s *Session, value int, now time.Time) Resolution {
	res := ResolutionNone
	for _, d := range strconv.Itoa(value) {
		res = s.Press(d, now)
	}
	return res
}

func wrongAnswer(it model.Item) int {
	p := it.Product()
	if p%10 == 9 {
		return p - 1
	}
	return p + 1
}
