// Package tui provides the interactive Bubble Tea dashboard for cardperks.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/cardperks/internal/benefits"
	"github.com/theirongolddev/cardperks/internal/cli"
	"github.com/theirongolddev/cardperks/internal/config"
	"github.com/theirongolddev/cardperks/internal/pipeline"
	"github.com/theirongolddev/cardperks/internal/stays"
	"github.com/theirongolddev/cardperks/internal/store"
	"github.com/theirongolddev/cardperks/internal/summary"
	"github.com/theirongolddev/cardperks/internal/tui/components"
	"github.com/theirongolddev/cardperks/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
)

// DataLoadedMsg is sent when the CSV pipeline finishes.
type DataLoadedMsg struct {
	Result   *pipeline.LoadResult
	LoadTime time.Duration
	Err      error
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background refresh completes.
type RefreshDataMsg struct {
	Result   *pipeline.LoadResult
	LoadTime time.Duration
	Err      error
}

// Deps is everything the dashboard reads and writes. The caller owns Store;
// a nil Store disables the transaction cache.
type Deps struct {
	Config  config.Config
	Store   *store.Store
	Calc    *benefits.Calculator
	Stays   *stays.Manager
	Summary *summary.Service
}

// App is the root Bubble Tea model.
type App struct {
	cfg   config.Config
	st    *store.Store
	calc  *benefits.Calculator
	stays *stays.Manager
	svc   *summary.Service

	// Data
	result   *pipeline.LoadResult
	report   summary.Report
	groups   []benefits.CardGroup
	loaded   bool
	loadTime time.Duration
	loadErr  error

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	message   string
	msgIsErr  bool

	// Per-tab state
	ben      benefitsState
	stayView staysState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool

	// Loading: progress and completion messages from the loader goroutine
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5

	tabNights   = 0
	tabCards    = 1
	tabBenefits = 2
	tabStays    = 3
)

// NewApp creates a new TUI app model.
func NewApp(d Deps) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	refreshInterval := time.Duration(d.Config.TUI.RefreshIntervalSec) * time.Second
	if refreshInterval < 10*time.Second {
		refreshInterval = 30 * time.Second
	}

	return App{
		cfg:             d.Config,
		st:              d.Store,
		calc:            d.Calc,
		stays:           d.Stays,
		svc:             d.Summary,
		needSetup:       !config.Exists(),
		setupVals:       SetupValuesFrom(d.Config),
		autoRefresh:     d.Config.TUI.AutoRefresh,
		refreshInterval: refreshInterval,
		spinner:         sp,
		loadSub:         make(chan tea.Msg, 1),
		ben:             newBenefitsState(),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.cfg, a.st, a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

// recompute rebuilds everything derived from the ledgers and saved state.
func (a *App) recompute() {
	if a.result != nil {
		a.svc.SetLedgers(a.result.Personal, a.result.Business)
	}
	a.report = a.svc.Report(a.calc.Today())
	a.groups = a.calc.GroupCards()
	a.ben.clamp(a)
	a.stayView.clamp(len(a.stays.Stays()) + len(a.stays.GOHNights()))
}

func (a *App) setMessage(msg string, isErr bool) {
	a.message = msg
	a.msgIsErr = isErr
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.loaded {
			return a, nil
		}

		// First-run setup intercepts all keys
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		a.message = ""
		switch a.activeTab {
		case tabBenefits:
			if next, handled := a.updateBenefitsKey(key); handled {
				return next, nil
			}
		case tabStays:
			if next, handled := a.updateStaysKey(key); handled {
				return next, nil
			}
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "r":
			if !a.refreshing {
				a.refreshing = true
				return a, a.refreshCmd()
			}
			return a, nil
		case "R":
			a.autoRefresh = !a.autoRefresh
			cfg, _ := config.Load()
			cfg.TUI.AutoRefresh = a.autoRefresh
			if err := config.Save(cfg); err != nil {
				log.Debug().Err(err).Msg("saving auto-refresh setting")
			}
			return a, nil
		case "left":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		case "right":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		default:
			if idx := components.TabIdxByKey(key); idx >= 0 {
				a.activeTab = idx
			}
		}
		return a, nil

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.lastRefresh = time.Now()
		a.loadErr = msg.Err
		if msg.Err == nil {
			a.result = msg.Result
		} else {
			a.setMessage("Loading transactions failed: "+msg.Err.Error(), true)
		}
		a.recompute()

		if a.needSetup {
			files := 0
			if a.result != nil {
				files = a.result.TotalFiles
			}
			a.setupForm = NewSetupForm(files, &a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && time.Since(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, a.refreshCmd())
		}
		return a, tea.Batch(cmds...)

	case RefreshDataMsg:
		a.refreshing = false
		a.lastRefresh = time.Now()
		if msg.Err != nil {
			a.setMessage("Refresh failed: "+msg.Err.Error(), true)
			return a, nil
		}
		if err := a.calc.Reload(); err != nil {
			a.setMessage("Reloading benefit state: "+err.Error(), true)
		}
		if err := a.stays.Reload(); err != nil {
			a.setMessage("Reloading stays: "+err.Error(), true)
		}
		a.result = msg.Result
		a.loadTime = msg.LoadTime
		a.loadErr = nil
		a.recompute()
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.moveCursor(-1)
	case tea.MouseButtonWheelDown:
		a.moveCursor(1)
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case tabBenefits:
		a.ben.move(delta, len(a.benefitRows()))
	case tabStays:
		a.stayView.move(delta, len(a.stays.Stays())+len(a.stays.GOHNights()))
	}
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.needSetup = false
		a.setupForm = nil
		cfg, err := SaveSetup(a.setupVals)
		if err != nil {
			a.setMessage("Could not save config: "+err.Error(), true)
			return a, nil
		}
		a.applyConfig(cfg)
		a.setMessage("Saved to "+config.ConfigPath(), false)
		a.refreshing = true
		return a, a.refreshCmd()
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

// applyConfig switches to cfg for night settings and CSV folders. The
// benefits file and database stay as opened.
func (a *App) applyConfig(cfg config.Config) {
	a.cfg.General.DataDir = cfg.General.DataDir
	a.cfg.General.YearStartNights = cfg.General.YearStartNights
	a.cfg.General.EliteGoal = cfg.General.EliteGoal
	a.cfg.Appearance = cfg.Appearance
	a.svc = summary.New(summary.SettingsFrom(a.cfg), a.calc, a.stays)
	a.recompute()
}

func (a App) refreshCmd() tea.Cmd {
	return refreshDataCmd(a.cfg, a.st)
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  cardperks needs at least %d columns.\n",
		a.width, minTerminalWidth)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ cardperks"))
	b.WriteString(mutedStyle.Render(" · elite nights and card benefits"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())

	if a.progressMax > 0 {
		barW := min(max(a.width-40, 20), 40)
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(mutedStyle.Render(" Parsing statements\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(mutedStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(mutedStyle.Render(" Scanning transactions..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

type binding struct{ key, desc string }

var helpSections = []struct {
	title    string
	bindings []binding
}{
	{"Navigation", []binding{
		{"n c b s", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Move cursor"},
		{"g G", "Top / bottom"},
	}},
	{"Benefits", []binding{
		{"space", "Toggle posted"},
		{"tab", "Next card (shift+tab previous)"},
		{"[ ]", "Older / newer card year"},
		{"p", "Show pending only"},
	}},
	{"General", []binding{
		{"r", "Refresh data"},
		{"R", "Toggle auto-refresh"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}},
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Nights).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range helpSections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)

	age := ""
	if !a.lastRefresh.IsZero() {
		age = fmt.Sprintf("%s in %.1fs", a.lastRefresh.Format("15:04"), a.loadTime.Seconds())
	}
	statusBar := components.RenderStatusBar(w, components.Status{
		DataAge:     age,
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
		Message:     a.message,
		IsError:     a.msgIsErr,
	})

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabNights:
		content = a.renderNightsTab(cw)
	case tabCards:
		content = a.renderCardsTab(cw)
	case tabBenefits:
		content = a.renderBenefitsTab(cw, contentH)
	case tabStays:
		content = a.renderStaysTab(cw, contentH)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Loading ────────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// load runs the cached pipeline, falling back to a full parse when the
// cache cannot be used.
func load(ctx context.Context, cfg config.Config, st *store.Store, progressFn pipeline.ProgressFunc) (*pipeline.LoadResult, error) {
	src := pipeline.SourcesFrom(cfg)
	rules := pipeline.RulesFrom(cfg)
	if st != nil {
		cr, err := pipeline.LoadWithCache(ctx, src, rules, st, progressFn)
		if err == nil {
			return &cr.LoadResult, nil
		}
		log.Warn().Err(err).Msg("transaction cache failed, doing full parse")
	}
	return pipeline.Load(ctx, src, rules, progressFn)
}

// loadDataCmd starts the pipeline in a background goroutine. It streams
// ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(cfg config.Config, st *store.Store, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so workers aren't stalled; the next update catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			result, err := load(context.Background(), cfg, st, progressFn)
			sub <- DataLoadedMsg{Result: result, LoadTime: time.Since(start), Err: err}
		}()
		return waitForLoadMsg(sub)()
	}
}

func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

func refreshDataCmd(cfg config.Config, st *store.Store) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		result, err := load(context.Background(), cfg, st, nil)
		return RefreshDataMsg{Result: result, LoadTime: time.Since(start), Err: err}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 {
		return ""
	}
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with the background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes use the same widths RenderTabBar renders.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}
