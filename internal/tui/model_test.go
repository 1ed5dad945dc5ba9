package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuitables/internal/drill"
	"github.com/verte-zerg/tuitables/internal/model"
	"github.com/verte-zerg/tuitables/internal/notify"
	"github.com/verte-zerg/tuitables/internal/store"
)

func TestDigitsAnswerQuestion(t *testing.T) {
	m, clock := newTestModel(t, nil, nil, nil)
	clock.Advance(2 * time.Second)
	answerCurrent(t, m)
	if m.session.Asked() != 1 || m.session.Correct() != 1 {
		t.Fatalf("expected one correct answer, got %d/%d", m.session.Correct(), m.session.Asked())
	}
	if m.session.Entry() != "" {
		t.Fatalf("expected entry cleared after resolution, got %q", m.session.Entry())
	}
}

func TestClearAndBackspaceKeys(t *testing.T) {
	m, _ := newTestModel(t, func(cfg *model.Config) {
		cfg.MinTable = 12
		cfg.MaxTable = 12
	}, nil, nil)

	typeKeys(m, "1")
	if m.session.Entry() != "1" {
		t.Fatalf("expected entry %q, got %q", "1", m.session.Entry())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if m.session.Entry() != "" {
		t.Fatalf("expected backspace to remove the digit, got %q", m.session.Entry())
	}
	typeKeys(m, "1c")
	if m.session.Entry() != "" {
		t.Fatalf("expected clear to empty the entry, got %q", m.session.Entry())
	}
	typeKeys(m, "x")
	if m.session.Entry() != "" || m.session.Asked() != 0 {
		t.Fatalf("expected non-digit keys to be ignored")
	}
}

func TestEscShowsReportAndPersists(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "tuitables.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	m, clock := newTestModel(t, nil, st, nil)
	clock.Advance(time.Second)
	answerCurrent(t, m)
	clock.Advance(time.Second)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd != nil {
		t.Fatalf("expected no command without a webhook")
	}
	if m.screen != screenReport {
		t.Fatalf("expected report screen after stop")
	}
	if m.Summary().TotalQuestions != 1 || m.Summary().CorrectQuestions != 1 {
		t.Fatalf("unexpected summary: %+v", m.Summary())
	}

	ctx := context.Background()
	sessions, err := st.ListSessions(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Questions != 1 {
		t.Fatalf("expected the finished session to be stored, got %+v", sessions)
	}
	state, err := st.LoadDeviceState(ctx)
	if err != nil {
		t.Fatalf("load device state: %v", err)
	}
	if !state.HasPerQ || state.PerQ != m.Summary().FinalPerQ {
		t.Fatalf("expected per-question budget %.1f to be saved, got %+v", m.Summary().FinalPerQ, state)
	}
	if !m.hasLast || m.allQuestions != 1 {
		t.Fatalf("expected footer stats to include the new session")
	}
}

func TestTickFinishesSessionAtDeadline(t *testing.T) {
	m, clock := newTestModel(t, func(cfg *model.Config) {
		cfg.TotalSeconds = 5
	}, nil, nil)

	clock.Advance(time.Second)
	if _, cmd := m.Update(currentTick(m)); cmd == nil {
		t.Fatalf("expected the tick loop to continue while running")
	}
	clock.Advance(5 * time.Second)
	m.Update(currentTick(m))
	if m.screen != screenReport {
		t.Fatalf("expected report screen once the session deadline passes")
	}
	if m.session.Status() != drill.StatusFinished {
		t.Fatalf("expected finished session, got %s", m.session.Status())
	}
	if _, cmd := m.Update(currentTick(m)); cmd != nil {
		t.Fatalf("expected ticks to stop on the report screen")
	}
}

func TestAgainStartsNewSession(t *testing.T) {
	m, clock := newTestModel(t, nil, nil, nil)
	clock.Advance(time.Second)
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.screen != screenReport {
		t.Fatalf("expected report screen")
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	if cmd == nil {
		t.Fatalf("expected the tick loop to restart")
	}
	if m.screen != screenPractice || m.session.Status() != drill.StatusRunning {
		t.Fatalf("expected a running practice session after again")
	}
	if m.session.Asked() != 0 {
		t.Fatalf("expected fresh counters, got %d", m.session.Asked())
	}
}

func TestReportQuitKey(t *testing.T) {
	m, _ := newTestModel(t, nil, nil, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestCarryOverFeedsNextRound(t *testing.T) {
	m, clock := newTestModel(t, nil, nil, nil)
	missed, _ := m.session.Current()
	clock.Advance(11 * time.Second)
	m.Update(currentTick(m))
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if m.carry == nil || len(m.carry.Items) != 1 || m.carry.Items[0] != missed {
		t.Fatalf("expected %v to carry over, got %+v", missed, m.carry)
	}
	if m.carry.MinTable != m.session.Config().MinTable || m.carry.MaxTable != m.session.Config().MaxTable {
		t.Fatalf("expected carry-over range to match the session")
	}
}

func TestCarryOverDisabled(t *testing.T) {
	m, clock := newTestModel(t, func(cfg *model.Config) {
		cfg.CarryOver = false
	}, nil, nil)
	clock.Advance(11 * time.Second)
	m.Update(currentTick(m))
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.carry != nil {
		t.Fatalf("expected no carry-over when disabled, got %+v", m.carry)
	}
}

func TestWebhookCommandSendsSummary(t *testing.T) {
	received := make(chan notify.Payload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload notify.Payload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		received <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := notify.NewWebhookSender(notify.WebhookConfig{URL: server.URL})
	m, clock := newTestModel(t, nil, nil, sender)
	clock.Advance(time.Second)
	answerCurrent(t, m)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("expected a webhook command")
	}
	msg, ok := cmd().(notifyResultMsg)
	if !ok {
		t.Fatalf("expected notifyResultMsg")
	}
	if msg.err != nil {
		t.Fatalf("webhook failed: %v", msg.err)
	}
	payload := <-received
	if payload.Summary.TotalQuestions != 1 {
		t.Fatalf("unexpected payload summary: %+v", payload.Summary)
	}
}

func TestRestartDropsStaleTicks(t *testing.T) {
	m, _ := newTestModel(t, nil, nil, nil)
	stale := currentTick(m)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected the restart to schedule a tick")
	}
	if _, cmd := m.Update(stale); cmd != nil {
		t.Fatalf("expected the tick from the finished session to be dropped")
	}
	if _, cmd := m.Update(currentTick(m)); cmd == nil {
		t.Fatalf("expected the current tick chain to continue")
	}
}
