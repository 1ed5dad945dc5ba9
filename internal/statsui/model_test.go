package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuitables/internal/model"
	"github.com/verte-zerg/tuitables/internal/store"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tuitables.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	start := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	sum := model.Summary{
		User:             "ana",
		StartedAt:        start,
		EndedAt:          start.Add(3 * time.Minute),
		MinTable:         2,
		MaxTable:         12,
		TotalSeconds:     180,
		TotalQuestions:   3,
		CorrectQuestions: 2,
		TotalTimeSpent:   12,
		FinalPerQ:        9,
		Items: []model.ItemStats{
			{Item: model.Item{A: 7, B: 8}, Asked: 2, Correct: 1, Wrong: 1, TimeSpentMs: 8000},
			{Item: model.Item{A: 2, B: 3}, Asked: 1, Correct: 1, TimeSpentMs: 4000},
		},
	}
	if _, err := st.InsertSession(context.Background(), sum); err != nil {
		t.Fatalf("insert session: %v", err)
	}
	m := NewModel(st, model.StatsConfig{CurveWindow: 5})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func TestCurveWindowSteps(t *testing.T) {
	next := map[int]int{1: 5, 4: 5, 5: 10, 7: 10, 10: 15}
	for in, want := range next {
		if got := nextCurveWindow(in); got != want {
			t.Fatalf("nextCurveWindow(%d) = %d, want %d", in, got, want)
		}
	}
	prev := map[int]int{1: 1, 5: 1, 7: 5, 10: 5, 15: 10}
	for in, want := range prev {
		if got := prevCurveWindow(in); got != want {
			t.Fatalf("prevCurveWindow(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("abcdef", 10); got != "abcdef" {
		t.Fatalf("unexpected %q", got)
	}
	if got := truncateLine("abcdef", 5); got != "ab..." {
		t.Fatalf("unexpected %q", got)
	}
	if got := truncateLine("abcdef", 2); got != "ab" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestFitLines(t *testing.T) {
	got := fitLines("a\nb\nc", 2, 2)
	if got != "a \nb " {
		t.Fatalf("unexpected %q", got)
	}
	got = fitLines("a", 1, 3)
	if got != "a\n \n " {
		t.Fatalf("unexpected %q", got)
	}
}

func TestNewModelLoadsReport(t *testing.T) {
	m := newTestModel(t)
	if m.errMsg != "" {
		t.Fatalf("unexpected error: %s", m.errMsg)
	}
	if len(m.report.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(m.report.Sessions))
	}
	if len(m.factSelection) != 2 || m.factSelection[0] != (model.Item{A: 7, B: 8}) {
		t.Fatalf("unexpected default facts: %v", m.factSelection)
	}
	rows := m.factTable.Rows()
	if len(rows) != 2 || rows[0][0] != "7 × 8" {
		t.Fatalf("expected weakest fact first, got %v", rows)
	}
	if !strings.Contains(m.View(), "Overview") {
		t.Fatalf("expected tabs in view")
	}
}

func TestFilterAppliesUser(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[fieldUser].SetValue("ben")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter mode to close")
	}
	if m.cfg.User != "ben" || len(m.report.Sessions) != 0 {
		t.Fatalf("expected empty report for ben, got %d sessions", len(m.report.Sessions))
	}
}

func TestFilterRejectsBadDate(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m.filterInputs[fieldSince].SetValue("yesterday")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || m.filterError == "" {
		t.Fatalf("expected filter error, got mode=%v err=%q", m.filterMode, m.filterError)
	}
}

func TestFactInput(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabFactCurves {
		t.Fatalf("expected fact curves tab, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.factInputMode {
		t.Fatalf("expected fact input mode")
	}

	m.factInput.SetValue("13x2")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.factInputMode || m.factInputError == "" {
		t.Fatalf("expected parse error")
	}

	m.factInput.SetValue("6x9")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.factInputMode || !m.factCustom {
		t.Fatalf("expected custom facts applied")
	}
	if len(m.factSelection) != 1 || m.factSelection[0] != (model.Item{A: 6, B: 9}) {
		t.Fatalf("unexpected facts: %v", m.factSelection)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.factInput.SetValue("")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.factCustom || len(m.factSelection) != 2 {
		t.Fatalf("expected default facts restored, got %v", m.factSelection)
	}
}
