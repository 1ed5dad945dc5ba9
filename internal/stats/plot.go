package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

type dashPattern struct {
	name   string
	period int
	on     int
}

func (p dashPattern) covers(x int) bool {
	if p.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%p.period < p.on
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelTop        = "max"
	axisLabelMid        = "mid"
	axisLabelBottom     = "min"
	axisSeparator       = " │ "
	scaleNote           = "Each series is scaled to its own min/max."
	colorReset          = "\x1b[0m"
	fallbackTermColumns = 80
)

var dashPatterns = []dashPattern{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
	{name: "dashdot", period: 8, on: 3},
}

var seriesColors = []string{
	"\x1b[36m", // cyan
	"\x1b[35m", // magenta
	"\x1b[33m", // yellow
	"\x1b[32m", // green
	"\x1b[34m", // blue
}

// canvas is a grid of braille cells, each holding a 2x4 dot mask.
type canvas struct {
	cells [][]uint8
}

func newCanvas(width, height int) *canvas {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return &canvas{cells: cells}
}

func (c *canvas) set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	row, col := y/4, x/2
	if row >= len(c.cells) || col >= len(c.cells[row]) {
		return
	}
	c.cells[row][col] |= brailleBit(x%2, y%4)
}

func (c *canvas) at(col, row int) uint8 {
	if row < 0 || row >= len(c.cells) || col < 0 || col >= len(c.cells[row]) {
		return 0
	}
	return c.cells[row][col]
}

// brailleBit maps a dot position inside a cell to its bit in the U+2800 block.
func brailleBit(dx, dy int) uint8 {
	if dy == 3 {
		return 0x40 << dx
	}
	return 1 << (dy + 3*dx)
}

func brailleRune(mask uint8) rune {
	return rune(0x2800 + int(mask))
}

// PlotSeries renders a multi-line text plot for the provided series.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	return plotSeries(w, title, series, width, height, false)
}

// PlotSeriesWithColor renders a multi-line text plot with optional forced color output.
func PlotSeriesWithColor(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	return plotSeries(w, title, series, width, height, forceColor)
}

func plotSeries(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	series = nonEmptySeries(series)
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalColumns())
	}
	width = max(width, minPlotWidth)

	dotRows := height * 4
	resampled := make([]Series, len(series))
	bounds := make([][2]float64, len(series))
	canvases := make([]*canvas, len(series))
	for i, s := range series {
		values := resample(s.Values, width)
		lo, hi := seriesBounds(values)
		if math.Abs(hi-lo) < 1e-9 {
			lo--
			hi++
		}
		resampled[i] = Series{Name: s.Name, Values: values}
		bounds[i] = [2]float64{lo, hi}

		c := newCanvas(width, height)
		pattern := dashPatterns[i%len(dashPatterns)]
		prevX, prevY := -1, -1
		for x, v := range values {
			px, py := x*2, valueToDotRow(v, lo, hi, dotRows)
			if prevX < 0 {
				if pattern.covers(px) {
					c.set(px, py)
				}
			} else {
				bresenham(prevX, prevY, px, py, func(dx, dy int) {
					if pattern.covers(dx) {
						c.set(dx, dy)
					}
				})
			}
			prevX, prevY = px, py
		}
		canvases[i] = c
	}

	useColor := colorEnabled(w, forceColor)
	labelWidth := runewidth.StringWidth(axisLabelTop)
	labels := axisLabels(height)

	lines := make([]string, 0, height+len(series)+4)
	if title != "" {
		lines = append(lines, title)
	}
	lines = append(lines, scaleNote)
	for i, s := range resampled {
		lines = append(lines, fmt.Sprintf("%s: min=%.2f max=%.2f", s.Name, bounds[i][0], bounds[i][1]))
	}
	for row := 0; row < height; row++ {
		var b strings.Builder
		b.WriteString(runewidth.FillLeft(labels[row], labelWidth))
		b.WriteString(axisSeparator)
		for col := 0; col < width; col++ {
			mask, owner := mergeCell(canvases, col, row)
			if useColor && owner >= 0 {
				b.WriteString(seriesColors[owner%len(seriesColors)])
				b.WriteRune(brailleRune(mask))
				b.WriteString(colorReset)
				continue
			}
			b.WriteRune(brailleRune(mask))
		}
		lines = append(lines, b.String())
	}
	lines = append(lines, legend(resampled, useColor), "")
	return writeLines(w, lines)
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axisWidth := runewidth.StringWidth(axisLabelTop) + runewidth.StringWidth(axisSeparator)
	return max(totalWidth-axisWidth, minPlotWidth)
}

func nonEmptySeries(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func terminalColumns() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackTermColumns
	}
	return width
}

func colorEnabled(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func axisLabels(height int) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = axisLabelTop
	if height > 2 {
		labels[height/2] = axisLabelMid
	}
	if height > 1 {
		labels[height-1] = axisLabelBottom
	}
	return labels
}

// mergeCell ORs the masks of every canvas; the first contributing series owns the color.
func mergeCell(canvases []*canvas, col, row int) (uint8, int) {
	var mask uint8
	owner := -1
	for i, c := range canvases {
		m := c.at(col, row)
		if m == 0 {
			continue
		}
		if owner < 0 {
			owner = i
		}
		mask |= m
	}
	return mask, owner
}

// resample stretches or averages values to exactly width points.
func resample(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	out := make([]float64, width)
	switch {
	case len(values) == width:
		copy(out, values)
	case len(values) > width:
		for i := range out {
			start := i * len(values) / width
			end := max((i+1)*len(values)/width, start+1)
			end = min(end, len(values))
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case len(values) == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		last := len(values) - 1
		for i := range out {
			pos := float64(i) * float64(last) / float64(width-1)
			idx := int(math.Floor(pos))
			if idx >= last {
				out[i] = values[last]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func seriesBounds(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func valueToDotRow(v, lo, hi float64, rows int) int {
	if rows <= 1 {
		return 0
	}
	pos := (v - lo) / (hi - lo)
	row := int(math.Round((1 - pos) * float64(rows-1)))
	return max(0, min(row, rows-1))
}

func legend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	marker := brailleRune(0x01)
	for i, s := range series {
		label := fmt.Sprintf("%c %s (%s)", marker, s.Name, dashPatterns[i%len(dashPatterns)].name)
		if useColor {
			label = seriesColors[i%len(seriesColors)] + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	errTerm := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * errTerm
		if e2 >= dy {
			errTerm += dy
			x0 += sx
		}
		if e2 <= dx {
			errTerm += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
