package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	moneyStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	nightsStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	errStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Money styles a formatted dollar value.
func Money(s string) string { return moneyStyle.Render(s) }

// Nights styles a night count.
func Nights(s string) string { return nightsStyle.Render(s) }

// Warn styles a warning.
func Warn(s string) string { return warnStyle.Render(s) }

// Error styles an error or over-limit value.
func Error(s string) string { return errStyle.Render(s) }

// Muted styles secondary text.
func Muted(s string) string { return mutedStyle.Render(s) }

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
	// LeftCols is the number of leading left-aligned columns; the rest are
	// right-aligned. Zero means one.
	LeftCols int
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderKV renders aligned "label  value" lines.
func RenderKV(pairs [][2]string) string {
	w := 0
	for _, p := range pairs {
		w = max(w, lipgloss.Width(p[0]))
	}
	var b strings.Builder
	for _, p := range pairs {
		fill := strings.Repeat(" ", w-lipgloss.Width(p[0]))
		fmt.Fprintf(&b, "  %s%s  %s\n", mutedStyle.Render(p[0]), fill, valueStyle.Render(p[1]))
	}
	return b.String()
}

// tableBorder holds the corner and junction runes of one horizontal rule.
type tableBorder struct{ left, mid, right string }

var (
	borderTop    = tableBorder{"╭", "┬", "╮"}
	borderMiddle = tableBorder{"├", "┼", "┤"}
	borderBottom = tableBorder{"╰", "┴", "╯"}
)

func (t Table) columnWidths(cols int) []int {
	widths := make([]int, cols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	measure := func(cells []string) {
		for i := 0; i < len(cells) && i < cols; i++ {
			widths[i] = max(widths[i], lipgloss.Width(cells[i]))
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		measure(row)
	}
	return widths
}

// RenderTable renders a bordered table with headers and rows. A row holding
// the single cell "---" renders as a separator.
func RenderTable(t Table) string {
	cols := len(t.Headers)
	if cols == 0 {
		if len(t.Rows) == 0 {
			return ""
		}
		cols = len(t.Rows[0])
	}
	leftCols := max(t.LeftCols, 1)
	widths := t.columnWidths(cols)
	bar := dimStyle.Render("│")

	var b strings.Builder
	rule := func(tb tableBorder) {
		parts := make([]string, len(widths))
		for i, w := range widths {
			parts[i] = strings.Repeat("─", w+2)
		}
		b.WriteString(dimStyle.Render(tb.left + strings.Join(parts, tb.mid) + tb.right))
		b.WriteByte('\n')
	}
	line := func(cells []string, style lipgloss.Style) {
		b.WriteString(bar)
		for i := range cols {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(style.Render(pad(cell, widths[i], i < leftCols)))
			b.WriteString(bar)
		}
		b.WriteByte('\n')
	}

	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}
	rule(borderTop)
	if len(t.Headers) > 0 {
		line(t.Headers, headerStyle)
		rule(borderMiddle)
	}
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rule(borderMiddle)
			continue
		}
		line(row, valueStyle)
	}
	rule(borderBottom)
	return b.String()
}

// pad pads a possibly styled cell to w visible columns.
func pad(cell string, w int, left bool) string {
	fill := strings.Repeat(" ", max(0, w-lipgloss.Width(cell)))
	if left {
		return " " + cell + fill + " "
	}
	return " " + fill + cell + " "
}

// RenderProgressBar renders "[████░░] current/total" with the fill capped at
// width.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}
	filled := min(max(current*width/total, 0), width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return "[" + mutedStyle.Render(bar) + "] " + FormatNumber(int64(current)) + "/" + FormatNumber(int64(total))
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak <= 0 {
		peak = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		idx = max(0, min(idx, len(blocks)-1))
		b.WriteRune(blocks[idx])
	}

	return b.String()
}

// RenderHorizontalBar renders a labelled horizontal bar chart entry.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 {
		return fmt.Sprintf("  %s", label)
	}
	barLen := max(0, int(value/maxValue*float64(maxWidth)))
	return fmt.Sprintf("  %s %s", label, moneyStyle.Render(strings.Repeat("█", barLen)))
}
