package statsui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuitables/internal/model"
	"github.com/verte-zerg/tuitables/internal/stats"
)

const dateLayout = "2006-01-02"

const (
	fieldUser = iota
	fieldSince
	fieldLast
	fieldWindow
)

func newInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		fieldUser:   newInput("User: "),
		fieldSince:  newInput("Since (YYYY-MM-DD): "),
		fieldLast:   newInput("Last: "),
		fieldWindow: newInput("Curve window: "),
	}
	m.factInput = newInput("Facts: ")
	m.factInput.Placeholder = "7x8, 6x9"
	m.setInputsFromConfig()
}

func (m *Model) setInputsFromConfig() {
	m.filterInputs[fieldUser].SetValue(strings.TrimSpace(m.cfg.User))
	since := ""
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format(dateLayout)
	}
	m.filterInputs[fieldSince].SetValue(since)
	last := ""
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	m.filterInputs[fieldLast].SetValue(last)
	m.filterInputs[fieldWindow].SetValue(strconv.Itoa(m.cfg.CurveWindow))
}

func (m *Model) renderFilterSummary() string {
	user := m.cfg.User
	if user == "" {
		user = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format(dateLayout)
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: user=%s  since=%s  last=%s  window=%d", user, since, last, m.cfg.CurveWindow)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		cfg, err := m.parseFilter()
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	m.filterIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) parseFilter() (model.StatsConfig, error) {
	cfg := m.cfg
	cfg.User = strings.TrimSpace(m.filterInputs[fieldUser].Value())

	cfg.Since = nil
	if raw := strings.TrimSpace(m.filterInputs[fieldSince].Value()); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return cfg, errors.New("invalid since date (expected YYYY-MM-DD)")
		}
		cfg.Since = &parsed
	}

	cfg.Last = 0
	if raw := strings.TrimSpace(m.filterInputs[fieldLast].Value()); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return cfg, errors.New("invalid last value (use 0 or positive integer)")
		}
		cfg.Last = parsed
	}

	if raw := strings.TrimSpace(m.filterInputs[fieldWindow].Value()); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return cfg, errors.New("invalid curve window (use integer >= 1)")
		}
		cfg.CurveWindow = parsed
	}
	return cfg, nil
}

func (m *Model) startFactInput() (tea.Model, tea.Cmd) {
	m.factInputMode = true
	m.factInputError = ""
	m.factInput.SetValue(formatFacts(m.factSelection))
	return m, m.factInput.Focus()
}

func (m *Model) updateFactInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.factInputMode = false
		m.factInputError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFactInput(); err != nil {
			m.factInputError = err.Error()
			return m, nil
		}
		m.factInputMode = false
		m.factInputError = ""
		m.loadFactPerSession()
		m.renderTabContents()
		return m, nil
	}
	var cmd tea.Cmd
	m.factInput, cmd = m.factInput.Update(msg)
	return m, cmd
}

// applyFactInput sets the curve facts; an empty input falls back to the most-asked facts.
func (m *Model) applyFactInput() error {
	facts, err := stats.ParseFacts(m.factInput.Value())
	if err != nil {
		return err
	}
	if len(facts) == 0 {
		m.factCustom = false
		m.factSelection = stats.TopFactsByFrequency(m.report.ItemAggsAll, defaultFactCount)
		return nil
	}
	m.factCustom = true
	m.factSelection = facts
	return nil
}

func (m *Model) renderFactModal() string {
	body := []string{
		cardValueStyle.Render("Select Facts"),
		m.factInput.View(),
		headerStyle.Render("Comma-separated, e.g. 7x8, 6x9. Empty uses the most-asked facts."),
		headerStyle.Render("Enter to apply / Esc to cancel"),
	}
	if m.factInputError != "" {
		body = append(body, errorStyle.Render(m.factInputError))
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}
