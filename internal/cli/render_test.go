package cli

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Stays",
		Headers: []string{"Name", "Nights"},
		Rows:    [][]string{{"Park Hyatt", "3"}, {"---"}, {"Total", "3"}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// title, top, header, separator, row, separator, row, bottom
	if len(lines) != 8 {
		t.Fatalf("lines = %d:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "Park Hyatt") || !strings.Contains(out, "Total") {
		t.Errorf("missing cells:\n%s", out)
	}
	if RenderTable(Table{}) != "" {
		t.Error("empty table rendered")
	}
}

func TestRenderKV(t *testing.T) {
	out := RenderKV([][2]string{{"Posted", "12"}, {"Pending nights", "3"}})
	if strings.Count(out, "\n") != 2 {
		t.Errorf("out = %q", out)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 5, 10}); len([]rune(got)) != 3 {
		t.Errorf("sparkline = %q", got)
	}
	if RenderSparkline(nil) != "" {
		t.Error("empty sparkline rendered")
	}
}

func TestRenderProgressBar(t *testing.T) {
	if got := RenderProgressBar(5, 0, 10); got != "" {
		t.Errorf("zero total = %q", got)
	}
	if got := RenderProgressBar(90, 60, 10); !strings.Contains(got, "90/60") {
		t.Errorf("over total = %q", got)
	}
}
