package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// chip is a pre-rendered label with its display width.
type chip struct {
	s     string
	width int
}

func newChip(label string, style lipgloss.Style) chip {
	return chip{s: style.Render(label), width: runewidth.StringWidth(label)}
}

func renderChips(chips []chip) string {
	parts := make([]string, len(chips))
	for i, c := range chips {
		parts[i] = c.s
	}
	return strings.Join(parts, " ")
}

// wrapChips lays chips out on lines no wider than width, one space apart.
// A chip wider than the line gets a line of its own.
func wrapChips(chips []chip, width int) string {
	if width <= 0 {
		return renderChips(chips)
	}
	var lines []string
	line := make([]chip, 0, len(chips))
	lineWidth := 0
	for _, c := range chips {
		need := c.width
		if len(line) > 0 {
			need++
		}
		if lineWidth+need > width && len(line) > 0 {
			lines = append(lines, renderChips(line))
			line = line[:0]
			lineWidth = 0
			need = c.width
		}
		line = append(line, c)
		lineWidth += need
	}
	if len(line) > 0 {
		lines = append(lines, renderChips(line))
	}
	return strings.Join(lines, "\n")
}
