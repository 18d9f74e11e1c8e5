package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/theirongolddev/cardperks/internal/config"
	"github.com/theirongolddev/cardperks/internal/logging"
	"github.com/theirongolddev/cardperks/internal/tui"
	"github.com/theirongolddev/cardperks/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// Ledgers load inside the TUI so the spinner shows progress.
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	theme.SetActive(a.cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	// Anything written to stderr would corrupt the alt screen.
	flagQuiet = true
	logw := tuiLogWriter()
	if c, ok := logw.(io.Closer); ok {
		defer c.Close()
	}
	level := a.cfg.General.LogLevel
	if flagVerbose {
		level = "debug"
	}
	logging.Setup(logw, logging.JSON, level)

	deps := tui.Deps{
		Config:  a.cfg,
		Store:   a.store,
		Calc:    a.calc,
		Stays:   a.stays,
		Summary: a.svc,
	}
	if flagNoCache {
		deps.Store = nil
	}
	p := tea.NewProgram(tui.NewApp(deps), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// tuiLogWriter appends to tui.log in the state directory, or discards logs
// when the file cannot be opened.
func tuiLogWriter() io.Writer {
	dir := config.StateDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return io.Discard
	}
	f, err := os.OpenFile(filepath.Join(dir, "tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return io.Discard
	}
	return f
}
