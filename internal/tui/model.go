// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuitables/internal/drill"
	"github.com/verte-zerg/tuitables/internal/model"
	"github.com/verte-zerg/tuitables/internal/notify"
	statsPkg "github.com/verte-zerg/tuitables/internal/stats"
	"github.com/verte-zerg/tuitables/internal/store"
)

const tickInterval = 100 * time.Millisecond

type screen int

const (
	screenPractice screen = iota
	screenReport
)

// tickMsg carries the generation of the chain that scheduled it; a restart
// starts a new generation and older ticks are dropped.
type tickMsg struct {
	gen int
}

type notifyResultMsg struct {
	err error
}

// Model implements the Bubble Tea practice UI.
type Model struct {
	session  *drill.Session
	store    *store.Store
	notifier *notify.WebhookSender
	carry    *model.CarryOver
	clock    drill.Clock

	width  int
	height int

	screen  screen
	summary model.Summary
	tickGen int

	lastAcc      float64
	hasLast      bool
	allAcc       float64
	allQuestions int
	allCorrect   int
}

// NewModel constructs a practice model and starts the first session.
// The store and notifier may be nil.
func NewModel(session *drill.Session, st *store.Store, notifier *notify.WebhookSender, carry *model.CarryOver) *Model {
	m := &Model{
		session:  session,
		store:    st,
		notifier: notifier,
		carry:    carry,
		clock:    drill.SystemClock{},
	}
	m.loadFooterStats()
	m.start()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if msg.gen != m.tickGen || m.screen != screenPractice {
			return m, nil
		}
		m.session.Tick(m.clock.Now())
		if m.session.Status() == drill.StatusFinished {
			return m, m.finishSession()
		}
		return m, m.tick()
	case notifyResultMsg:
		if msg.err != nil {
			logErrf("failed to send webhook: %v\n", msg.err)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.screen == screenReport {
			return m.handleReportKey(msg)
		}
		return m.handlePracticeKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handlePracticeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.session.Stop(m.clock.Now())
		return m, m.finishSession()
	case tea.KeyBackspace, tea.KeyDelete:
		m.session.Backspace()
		return m, nil
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			switch {
			case r >= '0' && r <= '9':
				m.session.Press(r, m.clock.Now())
			case r == 'c':
				m.session.Clear()
			}
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) handleReportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		m.start()
		return m, m.tick()
	case tea.KeyRunes:
		switch string(msg.Runes) {
		case "a":
			m.start()
			return m, m.tick()
		case "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) start() {
	m.session.Start(m.clock.Now(), m.carry)
	m.tickGen++
	m.screen = screenPractice
	m.summary = model.Summary{}
}

func (m *Model) tick() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// finishSession moves to the report screen, persists the session, and
// returns the webhook command when one is configured.
func (m *Model) finishSession() tea.Cmd {
	m.screen = screenReport
	m.summary = m.session.Summary()
	sum := m.summary

	if m.session.Config().CarryOver {
		m.carry = &model.CarryOver{MinTable: sum.MinTable, MaxTable: sum.MaxTable, Items: sum.WrongOnce}
	}

	if m.store != nil {
		ctx := context.Background()
		if sum.TotalQuestions > 0 {
			if _, err := m.store.InsertSession(ctx, sum); err != nil {
				logErrf("failed to save session: %v\n", err)
			}
		}
		if err := m.store.SavePerQuestion(ctx, sum.FinalPerQ); err != nil {
			logErrf("failed to save per-question budget: %v\n", err)
		}
	}
	if sum.TotalQuestions > 0 {
		m.lastAcc = sum.Accuracy()
		m.hasLast = true
		m.allQuestions += sum.TotalQuestions
		m.allCorrect += sum.CorrectQuestions
		m.recomputeAllTime()
	}

	if !m.notifier.Enabled() {
		return nil
	}
	notifier := m.notifier
	return func() tea.Msg {
		return notifyResultMsg{err: notifier.Send(context.Background(), sum)}
	}
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	sessions, err := m.store.ListSessions(context.Background(), model.StatsConfig{User: m.session.Config().User})
	if err != nil {
		logErrf("failed to load session stats: %v\n", err)
		return
	}
	if len(sessions) == 0 {
		return
	}
	last := sessions[len(sessions)-1]
	m.lastAcc, _, _ = statsPkg.SessionMetrics(last.Correct, last.Questions, last.TimeSpentMs)
	m.hasLast = true
	for _, s := range sessions {
		m.allQuestions += s.Questions
		m.allCorrect += s.Correct
	}
	m.recomputeAllTime()
}

func (m *Model) recomputeAllTime() {
	m.allAcc, _, _ = statsPkg.SessionMetrics(m.allCorrect, m.allQuestions, 0)
}

// Summary returns the report of the most recently finished session.
func (m *Model) Summary() model.Summary {
	return m.summary
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
