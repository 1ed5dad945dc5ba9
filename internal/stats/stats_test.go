package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuitables/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	acc, avg, pace := SessionMetrics(8, 10, 30000)
	if math.Abs(acc-0.8) > 1e-9 {
		t.Fatalf("unexpected accuracy %v", acc)
	}
	if math.Abs(avg-3) > 1e-9 {
		t.Fatalf("unexpected average %v", avg)
	}
	if math.Abs(pace-20) > 1e-9 {
		t.Fatalf("unexpected pace %v", pace)
	}
	if acc, avg, pace := SessionMetrics(0, 0, 1000); acc != 0 || avg != 0 || pace != 0 {
		t.Fatalf("expected zeros for an empty session")
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	same := MovingAverage([]float64{1, 5}, 1)
	if same[0] != 1 || same[1] != 5 {
		t.Fatalf("window 1 should copy values, got %v", same)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No sessions found.") {
		t.Fatalf("expected empty message, got %q", buf.String())
	}

	buf.Reset()
	sessions := []model.SessionAggregate{
		{SessionID: 1, EndedAt: time.Unix(0, 0), Questions: 10, Correct: 5, TimeSpentMs: 40000, FinalPerQ: 10},
		{SessionID: 2, EndedAt: time.Unix(60, 0), Questions: 10, Correct: 10, TimeSpentMs: 20000, FinalPerQ: 7.3},
	}
	if err := RenderSummary(&buf, sessions); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Sessions: 2", "Questions: 20", "Avg Accuracy: 75.00%", "Best Accuracy: 100.00%", "Avg Answer Time: 3.00s", "Latest Per-Question: 7.3s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestFactTableWeakestFirst(t *testing.T) {
	lines := FactTableLines([]model.ItemAggregate{
		{Item: model.Item{A: 2, B: 2}, Asked: 4, Correct: 4, TimeSpentMs: 4000},
		{Item: model.Item{A: 7, B: 8}, Asked: 4, Correct: 1, Wrong: 3, TimedOut: 1, TimeSpentMs: 20000},
	})
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[1], "7 × 8") {
		t.Fatalf("expected the weakest fact first, got %q", lines[1])
	}
	if !strings.Contains(lines[1], "25.00%") {
		t.Fatalf("expected accuracy in row, got %q", lines[1])
	}
}

func TestGridLines(t *testing.T) {
	lines := GridLines([]model.ItemAggregate{
		{Item: model.Item{A: 3, B: 1}, Asked: 2, Correct: 1},
		{Item: model.Item{A: 3, B: 12}, Asked: 1, Correct: 1},
	})
	if len(lines) != 2 {
		t.Fatalf("expected header and one table row, got %d", len(lines))
	}
	fields := strings.Fields(lines[1])
	if len(fields) != 13 {
		t.Fatalf("expected 13 cells, got %d: %q", len(fields), lines[1])
	}
	if fields[0] != "3" || fields[1] != "50" || fields[12] != "100" || fields[5] != "·" {
		t.Fatalf("unexpected grid row %q", lines[1])
	}
}
