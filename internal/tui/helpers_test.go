package tui

import (
	"math/rand"
	"strconv"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuitables/internal/drill"
	"github.com/verte-zerg/tuitables/internal/generator"
	"github.com/verte-zerg/tuitables/internal/model"
	"github.com/verte-zerg/tuitables/internal/notify"
	"github.com/verte-zerg/tuitables/internal/store"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestModel(t *testing.T, mutate func(*model.Config), st *store.Store, notifier *notify.WebhookSender) (*Model, *fakeClock) {
	t.Helper()
	cfg := drill.DefaultConfig()
	cfg.Grace = 0
	if mutate != nil {
		mutate(&cfg)
	}
	session, err := drill.NewSession(cfg, generator.NewWithSource(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	m := &Model{session: session, store: st, notifier: notifier, clock: clock}
	m.loadFooterStats()
	m.start()
	return m, clock
}

// currentTick builds a tick belonging to the model's current chain.
func currentTick(m *Model) tickMsg {
	return tickMsg{gen: m.tickGen}
}

func typeKeys(m *Model, keys string) {
	for _, r := range keys {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func answerCurrent(t *testing.T, m *Model) model.Item {
	t.Helper()
	it, ok := m.session.Current()
	if !ok {
		t.Fatalf("expected a current question")
	}
	typeKeys(m, strconv.Itoa(it.Product()))
	return it
}
