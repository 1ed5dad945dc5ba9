package statsui

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuitables/internal/model"
	"github.com/verte-zerg/tuitables/internal/stats"
)

func renderOverview(sessions []model.SessionAggregate, window, width int) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}
	summary := renderSummaryCards(sessions, width)
	curves := renderCurves(sessions, window, width)
	return strings.TrimRight(summary+"\n\n"+curves, "\n")
}

func renderSummaryCards(sessions []model.SessionAggregate, width int) string {
	var (
		totalAcc  float64
		totalAvg  float64
		bestAcc   float64
		questions int
	)
	for _, s := range sessions {
		acc, avg, _ := stats.SessionMetrics(s.Correct, s.Questions, s.TimeSpentMs)
		totalAcc += acc
		totalAvg += avg
		bestAcc = max(bestAcc, acc)
		questions += s.Questions
	}
	count := float64(len(sessions))
	cards := []string{
		metricCard("Sessions", fmt.Sprintf("%d", len(sessions))),
		metricCard("Questions", fmt.Sprintf("%d", questions)),
		metricCard("Per-Question", fmt.Sprintf("%.1fs", sessions[len(sessions)-1].FinalPerQ)),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", totalAcc/count*100)),
		metricCard("Best Acc", fmt.Sprintf("%.1f%%", bestAcc*100)),
		metricCard("Avg Time", fmt.Sprintf("%.2fs", totalAvg/count)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...)
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func renderCurves(sessions []model.SessionAggregate, window, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderCurvesWithSize(&buf, sessions, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderGrid(aggs []model.ItemAggregate) string {
	if len(aggs) == 0 {
		return "No fact stats found."
	}
	lines := append([]string{headerStyle.Render("Accuracy % per fact (rows: table, columns: multiplier)")}, stats.GridLines(aggs)...)
	return strings.Join(lines, "\n")
}

func renderFactCurves(sessions []model.SessionAggregate, facts []model.Item, perSession map[int64]map[model.Item]model.ItemAggregate, window, width int, errMsg string) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}
	if errMsg != "" {
		return fmt.Sprintf("Failed to load fact curves: %s", errMsg)
	}
	if len(facts) == 0 {
		return "No facts selected. Press Enter to choose facts."
	}
	header := headerStyle.Render("Facts: " + formatFacts(facts))
	var buf bytes.Buffer
	if err := stats.RenderFactCurvesWithSize(&buf, sessions, perSession, facts, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render fact curves: %v", err)
	}
	return strings.TrimRight(header+"\n"+buf.String(), "\n")
}

func formatFacts(facts []model.Item) string {
	parts := make([]string, len(facts))
	for i, it := range facts {
		parts[i] = fmt.Sprintf("%dx%d", it.A, it.B)
	}
	return strings.Join(parts, ", ")
}

func factColumns() []table.Column {
	return []table.Column{
		{Title: "Fact", Width: 8},
		{Title: "Accuracy", Width: 9},
		{Title: "Avg Time (s)", Width: 12},
		{Title: "Asked", Width: 6},
		{Title: "Wrong", Width: 6},
		{Title: "Timeouts", Width: 8},
	}
}

func newFactTable() table.Model {
	t := table.New(
		table.WithColumns(factColumns()),
		table.WithHeight(1),
	)
	t.SetStyles(factTableStyles())
	return t
}

// factRows orders facts weakest first: lowest accuracy, then slowest.
func factRows(aggs []model.ItemAggregate) []table.Row {
	sorted := append([]model.ItemAggregate(nil), aggs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ai, aj := stats.ItemAccuracy(sorted[i]), stats.ItemAccuracy(sorted[j])
		if ai != aj {
			return ai < aj
		}
		ti, tj := stats.ItemAverageSeconds(sorted[i]), stats.ItemAverageSeconds(sorted[j])
		if ti != tj {
			return ti > tj
		}
		return sorted[i].Item.Less(sorted[j].Item)
	})
	rows := make([]table.Row, 0, len(sorted))
	for _, agg := range sorted {
		rows = append(rows, table.Row{
			agg.Item.String(),
			fmt.Sprintf("%.2f%%", stats.ItemAccuracy(agg)*100),
			fmt.Sprintf("%.2f", stats.ItemAverageSeconds(agg)),
			fmt.Sprintf("%d", agg.Asked),
			fmt.Sprintf("%d", agg.Wrong),
			fmt.Sprintf("%d", agg.TimedOut),
		})
	}
	return rows
}

func factTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}
