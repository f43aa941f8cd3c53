// Package tui provides the interactive Bubble Tea dashboard for footprint.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/footprint/internal/cli"
	"github.com/theirongolddev/footprint/internal/config"
	"github.com/theirongolddev/footprint/internal/model"
	"github.com/theirongolddev/footprint/internal/pipeline"
	"github.com/theirongolddev/footprint/internal/source"
	"github.com/theirongolddev/footprint/internal/tui/components"
	"github.com/theirongolddev/footprint/internal/tui/theme"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Options configures the dashboard.
type Options struct {
	PayloadPath      string // explicit payload file; empty means newest in DataDir
	DataDir          string
	Pipeline         pipeline.Options
	TopSubcategories int
	AutoReload       bool
	ReloadInterval   time.Duration
}

// LoadedMsg is sent when a payload has been parsed and derived.
type LoadedMsg struct {
	Derived  model.DerivedState
	File     source.DiscoveredFile
	LoadTime time.Duration
	Err      error
}

// statMsg reports the current payload file stamp for auto-reload.
type statMsg struct {
	File source.DiscoveredFile
	Err  error
}

type tickMsg struct{}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
	tickInterval     = time.Second
	minReload        = 2 * time.Second
)

// App is the root Bubble Tea model.
type App struct {
	opts Options

	// Data. derived is replaced wholesale on every successful load.
	derived  model.DerivedState
	file     source.DiscoveredFile
	loaded   bool
	hasState bool
	loadErr  error
	loadTime time.Duration

	// Auto-reload
	autoReload bool
	reloading  bool
	lastCheck  time.Time

	// UI state
	width     int
	height    int
	activeTab int
	scroll    int
	showHelp  bool

	spinner spinner.Model
	keys    keyMap
	help    help.Model
}

// NewApp creates the dashboard model.
func NewApp(opts Options) App {
	if opts.TopSubcategories <= 0 {
		opts.TopSubcategories = config.SubcategoryChartLimit
	}
	if opts.ReloadInterval < minReload {
		opts.ReloadInterval = minReload
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		opts:       opts,
		autoReload: opts.AutoReload,
		spinner:    sp,
		keys:       defaultKeyMap(),
		help:       help.New(),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadCmd(a.opts),
		a.spinner.Tick,
		tickCmd(),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case tea.MouseMsg:
		if !a.hasState || a.showHelp {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.scrollBy(-1)
		case tea.MouseButtonWheelDown:
			a.scrollBy(1)
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.setTab(tab)
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case LoadedMsg:
		a.loaded = true
		a.reloading = false
		a.lastCheck = time.Now()
		if msg.Err != nil {
			a.loadErr = msg.Err
			return a, nil
		}
		a.derived = msg.Derived
		a.file = msg.File
		a.loadTime = msg.LoadTime
		a.loadErr = nil
		a.hasState = true
		a.clampScroll()
		return a, nil

	case statMsg:
		a.lastCheck = time.Now()
		if msg.Err == nil && a.changed(msg.File) && !a.reloading {
			a.reloading = true
			return a, loadCmd(a.opts)
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.reloading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoReload && !a.reloading && time.Since(a.lastCheck) >= a.opts.ReloadInterval {
			cmds = append(cmds, statCmd(a.opts))
		}
		return a, tea.Batch(cmds...)
	}

	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
	case key.Matches(msg, a.keys.Reload):
		if !a.reloading {
			a.reloading = true
			return a, tea.Batch(loadCmd(a.opts), a.spinner.Tick)
		}
	case key.Matches(msg, a.keys.AutoReload):
		a.autoReload = !a.autoReload
		// Persisting is best-effort; the toggle applies to this session regardless.
		if cfg, err := config.Load(); err == nil {
			cfg.General.AutoReload = a.autoReload
			_ = config.Save(cfg)
		}
	case key.Matches(msg, a.keys.Next):
		a.setTab((a.activeTab + 1) % len(components.Tabs))
	case key.Matches(msg, a.keys.Prev):
		a.setTab((a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs))
	case key.Matches(msg, a.keys.Down):
		a.scrollBy(1)
	case key.Matches(msg, a.keys.Up):
		a.scrollBy(-1)
	case key.Matches(msg, a.keys.Top):
		a.scroll = 0
	default:
		if idx := components.TabIdxByKey(msg.String()); idx >= 0 {
			a.setTab(idx)
		}
	}
	return a, nil
}

func (a *App) setTab(i int) {
	if i != a.activeTab {
		a.activeTab = i
		a.scroll = 0
	}
}

func (a *App) scrollBy(n int) {
	a.scroll += n
	a.clampScroll()
}

func (a *App) clampScroll() {
	limit := lineCount(a.renderTab(a.contentWidth())) - a.contentHeight()
	if a.scroll > limit {
		a.scroll = limit
	}
	if a.scroll < 0 {
		a.scroll = 0
	}
}

// changed reports whether f differs from the payload currently displayed.
func (a App) changed(f source.DiscoveredFile) bool {
	return f.Path != a.file.Path || f.ModTimeNs != a.file.ModTimeNs || f.SizeBytes != a.file.SizeBytes
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// contentHeight is the height left for tab content after the tab bar and the
// status bar.
func (a App) contentHeight() int {
	return max(minContentHeight, a.height-2)
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
	if !a.hasState {
		return a.viewError()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  footprint needs at least %d columns.\n",
		a.width, minTerminalWidth)
	return padHeight(truncateHeight(msg, max(a.height, 5)), max(a.height, 5))
}

func (a App) viewLoading() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sub := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := logo.Render("◈ footprint") + sub.Render(" · emissions dashboard") + "\n\n" +
		a.spinner.View() + sub.Render(" Loading payload…")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewError() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Over).
		Background(t.Surface).
		Padding(1, 3).
		Width(min(70, a.width-4))

	title := lipgloss.NewStyle().Foreground(t.Over).Background(t.Surface).Bold(true)
	body := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	hint := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	errText := "no payload"
	if a.loadErr != nil {
		errText = a.loadErr.Error()
	}
	content := title.Render("Could not load a payload") + "\n\n" +
		body.Render(errText) + "\n\n" +
		hint.Render("r to retry · q to quit")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card.Render(content),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)

	title := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim)

	h := a.help
	h.ShowAll = true
	content := title.Render("◈ Keyboard Shortcuts") + "\n\n" +
		h.View(a.keys) + "\n\n" +
		dim.Render("Press any key to close")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card.Render(content),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	contentH := a.contentHeight()

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, a.help.ShortHelpView(a.keys.ShortHelp()),
		a.sourceLabel(), a.reloading, a.autoReload)

	lines := strings.Split(a.renderTab(cw), "\n")
	if a.scroll > 0 && a.scroll < len(lines) {
		lines = lines[a.scroll:]
	}
	content := padHeight(truncateHeight(strings.Join(lines, "\n"), contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (a App) renderTab(cw int) string {
	switch a.activeTab {
	case 1:
		return a.renderSubcategoriesTab(cw)
	case 2:
		return a.renderBudgetTab(cw)
	case 3:
		return a.renderProjectionTab(cw)
	default:
		return a.renderOverviewTab(cw)
	}
}

// sourceLabel describes the displayed payload for the status bar.
func (a App) sourceLabel() string {
	label := a.derived.StatementID
	if label == "" {
		label = filepath.Base(a.file.Path)
	}
	if a.file.ModTimeNs != 0 {
		label += " · " + cli.FormatAgo(time.Unix(0, a.file.ModTimeNs))
	}
	if a.loadErr != nil {
		label += " · reload failed"
	}
	return label
}

// ─── Commands ───────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadCmd resolves, parses and derives the payload in the background.
func loadCmd(opts Options) tea.Cmd {
	return func() tea.Msg {
		return load(opts)
	}
}

func load(opts Options) LoadedMsg {
	start := time.Now()
	df, err := pipeline.Resolve(opts.PayloadPath, opts.DataDir)
	if err != nil {
		return LoadedMsg{Err: err}
	}
	d, err := pipeline.LoadFile(df, opts.Pipeline)
	if err != nil {
		return LoadedMsg{File: df, Err: fmt.Errorf("parsing %s: %w", df.Path, err)}
	}
	return LoadedMsg{Derived: d, File: df, LoadTime: time.Since(start)}
}

// statCmd re-resolves the payload file without parsing it.
func statCmd(opts Options) tea.Cmd {
	return func() tea.Msg {
		df, err := pipeline.Resolve(opts.PayloadPath, opts.DataDir)
		return statMsg{File: df, Err: err}
	}
}

// ─── Mouse ──────────────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the widths RenderTabBar draws, with a one-column separator.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1
	}
	return -1
}

// ─── Layout helpers ─────────────────────────────────────────────

func lineCount(s string) int {
	return strings.Count(s, "\n") + 1
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	n := lineCount(s)
	if n >= h {
		return s
	}
	return s + strings.Repeat("\n", h-n)
}

// fillLinesWithBackground pads each line to width w with the background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
