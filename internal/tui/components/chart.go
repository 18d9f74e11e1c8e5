package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cardperks/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var blocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

func peak(values []float64) float64 {
	p := 0.0
	for _, v := range values {
		p = max(p, v)
	}
	return p
}

// Sparkline renders values as a row of block characters.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	p := peak(values)
	if p == 0 {
		p = 1
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(max(v, 0) / p * float64(len(blocks)-1))
		b.WriteRune(blocks[min(max(idx, 1), len(blocks)-1)])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(b.String())
}

// ColumnChart renders one vertical bar per value, height rows tall, with
// labels under each bar. Each column is as wide as the longest label.
func ColumnChart(values []float64, labels []string, color lipgloss.Color, height int) string {
	if len(values) == 0 {
		return ""
	}
	if height < 2 {
		return Sparkline(values, color)
	}
	t := theme.Active
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	colW := 2
	for _, l := range labels {
		colW = max(colW, lipgloss.Width(l))
	}

	p := peak(values)
	if p == 0 {
		p = 1
	}
	top := formatAxis(p)
	axisW := len(top)

	var b strings.Builder
	for row := height; row >= 1; row-- {
		lo := p * float64(row-1) / float64(height)
		hi := p * float64(row) / float64(height)

		label := ""
		if row == height {
			label = top
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", axisW, label)))
		for _, v := range values {
			cell := ' '
			switch {
			case v >= hi:
				cell = blocks[len(blocks)-1]
			case v > lo:
				cell = blocks[max(int((v-lo)/(hi-lo)*8), 1)]
			}
			b.WriteString(barStyle.Render(" " + strings.Repeat(string(cell), colW-1)))
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└%s", axisW, "0", strings.Repeat("─", len(values)*colW))))
	if len(labels) == len(values) {
		b.WriteString("\n")
		b.WriteString(axisStyle.Render(strings.Repeat(" ", axisW+1)))
		for _, l := range labels {
			b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", colW, l)))
		}
	}
	return b.String()
}

func formatAxis(v float64) string {
	switch {
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.0fk", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
