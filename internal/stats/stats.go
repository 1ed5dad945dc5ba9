// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/tuitables/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes accuracy, mean answer time, and pace for a session.
func SessionMetrics(correct, questions int, timeSpentMs int64) (accuracy, avgSeconds, perMinute float64) {
	if questions <= 0 {
		return 0, 0, 0
	}
	accuracy = float64(correct) / float64(questions)
	if timeSpentMs <= 0 {
		return accuracy, 0, 0
	}
	seconds := float64(timeSpentMs) / 1000.0
	avgSeconds = seconds / float64(questions)
	perMinute = float64(questions) / (seconds / 60.0)
	return accuracy, avgSeconds, perMinute
}

// ItemAccuracy returns the share of correct answers for an item, or 1 when never asked.
func ItemAccuracy(agg model.ItemAggregate) float64 {
	if agg.Asked == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(agg.Asked)
}

// ItemAverageSeconds returns the mean answer time for an item.
func ItemAverageSeconds(agg model.ItemAggregate) float64 {
	if agg.Asked == 0 {
		return 0
	}
	return float64(agg.TimeSpentMs) / 1000.0 / float64(agg.Asked)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := seriesBounds(values)
	if math.Abs(hi-lo) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	last := len(sparkChars) - 1
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		idx = max(0, min(idx, last))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary block for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var (
		totalAcc  float64
		totalAvg  float64
		bestAcc   float64
		questions int
	)
	for _, s := range sessions {
		acc, avg, _ := SessionMetrics(s.Correct, s.Questions, s.TimeSpentMs)
		totalAcc += acc
		totalAvg += avg
		bestAcc = math.Max(bestAcc, acc)
		questions += s.Questions
	}
	count := float64(len(sessions))
	latest := sessions[len(sessions)-1]
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Questions: %d", questions),
		fmt.Sprintf("Avg Accuracy: %.2f%%", totalAcc/count*100),
		fmt.Sprintf("Best Accuracy: %.2f%%", bestAcc*100),
		fmt.Sprintf("Avg Answer Time: %.2fs", totalAvg/count),
		fmt.Sprintf("Latest Per-Question: %.1fs", latest.FinalPerQ),
		"",
	}
	return writeLines(w, lines)
}

// RenderCurves prints learning curves for accuracy, answer time, and timer budget.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	return RenderCurvesWithSize(w, sessions, window, 0, 10, false)
}

// RenderCurvesWithSize prints learning curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	accs := make([]float64, len(sessions))
	avgs := make([]float64, len(sessions))
	budgets := make([]float64, len(sessions))
	for i, s := range sessions {
		acc, avg, _ := SessionMetrics(s.Correct, s.Questions, s.TimeSpentMs)
		accs[i] = acc * 100
		avgs[i] = avg
		budgets[i] = s.FinalPerQ
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Learning Curves", []Series{
		{Name: "Accuracy", Values: MovingAverage(accs, window)},
		{Name: "Answer Time", Values: MovingAverage(avgs, window)},
		{Name: "Per-Question", Values: MovingAverage(budgets, window)},
	}, width, height, useColor)
}

// RenderFactTable prints per-fact aggregates, weakest first.
func RenderFactTable(w io.Writer, aggs []model.ItemAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No fact stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Fact (Windowed)"); err != nil {
		return err
	}
	lines := FactTableLines(aggs)
	lines = append(lines, "")
	return writeLines(w, lines)
}

// FactTableLines formats per-fact aggregates as aligned rows, weakest first.
func FactTableLines(aggs []model.ItemAggregate) []string {
	rows := make([]model.ItemAggregate, len(aggs))
	copy(rows, aggs)
	sortWeakestFirst(rows)

	headers := []string{"Fact", "Accuracy", "Avg Time (s)", "Asked", "Wrong", "Timeouts"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.Item.String(),
			fmt.Sprintf("%.2f%%", ItemAccuracy(r)*100),
			fmt.Sprintf("%.2f", ItemAverageSeconds(r)),
			fmt.Sprintf("%d", r.Asked),
			fmt.Sprintf("%d", r.Wrong),
			fmt.Sprintf("%d", r.TimedOut),
		})
	}
	return formatTable(headers, tableRows, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true})
}

// RenderGrid prints an accuracy grid with one row per table.
func RenderGrid(w io.Writer, aggs []model.ItemAggregate) error {
	if len(aggs) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Accuracy Grid (%)"); err != nil {
		return err
	}
	lines := GridLines(aggs)
	lines = append(lines, "")
	return writeLines(w, lines)
}

// GridLines lays out accuracy per a × b cell. Unseen facts render as a dot.
func GridLines(aggs []model.ItemAggregate) []string {
	byItem := make(map[model.Item]model.ItemAggregate, len(aggs))
	tables := map[int]struct{}{}
	for _, agg := range aggs {
		byItem[agg.Item] = agg
		tables[agg.Item.A] = struct{}{}
	}
	rowsA := make([]int, 0, len(tables))
	for a := range tables {
		rowsA = append(rowsA, a)
	}
	sort.Ints(rowsA)

	headers := []string{"a\\b"}
	for b := model.MinMultiplier; b <= model.MaxMultiplier; b++ {
		headers = append(headers, fmt.Sprintf("%d", b))
	}
	rows := make([][]string, 0, len(rowsA))
	for _, a := range rowsA {
		row := []string{fmt.Sprintf("%d", a)}
		for b := model.MinMultiplier; b <= model.MaxMultiplier; b++ {
			agg, ok := byItem[model.Item{A: a, B: b}]
			if !ok || agg.Asked == 0 {
				row = append(row, "·")
				continue
			}
			row = append(row, fmt.Sprintf("%.0f", ItemAccuracy(agg)*100))
		}
		rows = append(rows, row)
	}
	rightAlign := map[int]bool{}
	for i := range headers {
		rightAlign[i] = true
	}
	return formatTable(headers, rows, rightAlign)
}

// RenderFactCurves prints per-fact learning curves.
func RenderFactCurves(w io.Writer, sessions []model.SessionAggregate, perSession map[int64]map[model.Item]model.ItemAggregate, facts []model.Item, window int) error {
	return RenderFactCurvesWithSize(w, sessions, perSession, facts, window, 0, 10, false)
}

// RenderFactCurvesWithSize prints per-fact learning curves sized to a given total width.
func RenderFactCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, perSession map[int64]map[model.Item]model.ItemAggregate, facts []model.Item, window, totalWidth, height int, useColor bool) error {
	if len(facts) == 0 || len(sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Per-Fact Curves"); err != nil {
		return err
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	for _, fact := range facts {
		accSeries := make([]float64, len(sessions))
		timeSeries := make([]float64, len(sessions))
		for i, s := range sessions {
			agg, ok := perSession[s.SessionID][fact]
			if !ok || agg.Asked == 0 {
				continue
			}
			accSeries[i] = ItemAccuracy(agg) * 100
			timeSeries[i] = ItemAverageSeconds(agg)
		}
		if err := PlotSeriesWithColor(w, fmt.Sprintf("Fact %s", fact), []Series{
			{Name: "Accuracy", Values: MovingAverage(accSeries, window)},
			{Name: "Answer Time", Values: MovingAverage(timeSeries, window)},
		}, width, height, useColor); err != nil {
			return err
		}
	}
	return nil
}

func sortWeakestFirst(aggs []model.ItemAggregate) {
	sort.SliceStable(aggs, func(i, j int) bool {
		ai, aj := ItemAccuracy(aggs[i]), ItemAccuracy(aggs[j])
		if ai != aj {
			return ai < aj
		}
		ti, tj := ItemAverageSeconds(aggs[i]), ItemAverageSeconds(aggs[j])
		if ti != tj {
			return ti > tj
		}
		return aggs[i].Item.Less(aggs[j].Item)
	})
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
