package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuitables/internal/drill"
	"github.com/verte-zerg/tuitables/internal/model"
)

const timerBarWidth = 24

var (
	questionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	chipStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	chipTwiceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.screen {
	case screenReport:
		content = m.renderReport()
	default:
		content = m.renderPractice(m.clock.Now())
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderPractice(now time.Time) string {
	it, ok := m.session.Current()
	if !ok {
		return ""
	}
	lines := []string{
		renderQuestion(it, m.session.Entry(), m.session.Accepted(), m.session.Feedback(now)),
		"",
		m.renderTimers(now),
		"",
		pendingStyle.Render("digits answer · backspace · c clear · esc stop"),
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func renderQuestion(it model.Item, entry, accepted string, feedback drill.Feedback) string {
	prompt := questionStyle.Render(it.String() + " = ")
	switch feedback {
	case drill.FeedbackCorrect:
		return prompt + correctStyle.Render(accepted)
	case drill.FeedbackWrong:
		return incorrectStyle.Render(it.String()+" = ") + entrySlots(entry, it.Digits())
	default:
		return prompt + entrySlots(entry, it.Digits())
	}
}

// entrySlots shows typed digits followed by one placeholder per missing digit.
func entrySlots(entry string, digits int) string {
	missing := max(digits-len(entry), 0)
	return questionStyle.Render(entry) + pendingStyle.Render(strings.Repeat("_", missing))
}

func (m *Model) renderTimers(now time.Time) string {
	budget := m.session.PerQuestion()
	left := m.session.QuestionRemaining(now).Seconds()
	return fmt.Sprintf("%s %4.1fs / %.1fs   Session %s",
		timerBar(left, budget, timerBarWidth),
		left,
		budget,
		formatClock(m.session.SessionRemaining(now)),
	)
}

func timerBar(left, total float64, width int) string {
	filled := 0
	if total > 0 {
		filled = int(left / total * float64(width))
	}
	filled = max(0, min(filled, width))
	style := accentStyle
	if filled*3 < width {
		style = incorrectStyle
	}
	return style.Render(strings.Repeat("█", filled)) + pendingStyle.Render(strings.Repeat("░", width-filled))
}

func formatClock(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func (m *Model) renderReport() string {
	sum := m.summary
	lines := []string{
		accentStyle.Render("Session complete"),
		"",
		fmt.Sprintf("Correct %.1f%% (%d/%d)", sum.Accuracy()*100, sum.CorrectQuestions, sum.TotalQuestions),
		fmt.Sprintf("Average time %.1fs · Time spent %.1fs", sum.AverageTime(), sum.TotalTimeSpent),
		fmt.Sprintf("Next per-question budget %.1fs", sum.FinalPerQ),
		"",
	}
	chips := revisitChips(sum)
	if len(chips) == 0 {
		lines = append(lines, correctStyle.Render("Nothing to revisit."))
	} else {
		width := 40
		if m.width > 0 {
			width = max(int(float64(m.width)*0.70), 1)
		}
		lines = append(lines, "Items to revisit:", wrapChips(chips, width))
	}
	lines = append(lines, "", pendingStyle.Render("a again · q quit"))
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

// revisitChips lists WrongOnce items, items that hit the two-strike ban first.
func revisitChips(sum model.Summary) []chip {
	twice := make(map[model.Item]bool, len(sum.WrongTwice))
	for _, it := range sum.WrongTwice {
		twice[it] = true
	}
	timedOut := make(map[model.Item]bool, len(sum.TimedOut))
	for _, it := range sum.TimedOut {
		timedOut[it] = true
	}
	items := make([]model.Item, len(sum.WrongOnce))
	copy(items, sum.WrongOnce)
	sort.SliceStable(items, func(i, j int) bool {
		if twice[items[i]] != twice[items[j]] {
			return twice[items[i]]
		}
		return items[i].Less(items[j])
	})
	chips := make([]chip, 0, len(items))
	for _, it := range items {
		label := it.String()
		if timedOut[it] {
			label += " ⏱"
		}
		style := chipStyle
		if twice[it] {
			label += " ×2"
			style = chipTwiceStyle
		}
		chips = append(chips, newChip("["+label+"]", style))
	}
	return chips
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.screen == screenPractice {
		segments = append(segments, fmt.Sprintf("Asked %d · Correct %d", m.session.Asked(), m.session.Correct()))
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f%%", m.lastAcc*100))
	}
	if m.allQuestions > 0 {
		segments = append(segments, fmt.Sprintf("All-time %.1f%% of %d", m.allAcc*100, m.allQuestions))
	}
	if len(segments) == 0 {
		return ""
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
