package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/headlines/internal/feed"
	"github.com/five82/headlines/internal/feedsync"
	"github.com/five82/headlines/internal/prefs"
)

// View represents the current active view.
type View int

const (
	ViewFeed View = iota
	ViewLogs
)

// Feed is the read side of the sync controller.
type Feed interface {
	Snapshot() feedsync.View
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Feed       Feed
	LogPath    string
	ThemeName  string
	AlertsOnly bool
	PrefsPath  string
	Refresh    time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	feed      Feed
	logPath   string
	prefsPath string
	refresh   time.Duration
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	focusedPane int // 0 = list, 1 = detail
	showHelp    bool
	errorMsg    string

	// Data state
	view feedsync.View
	now  time.Time

	// List state
	selectedRow int
	selectedID  string
	filter      itemFilter
	searching   bool
	searchInput textinput.Model

	detailViewport viewport.Model

	logViewport viewport.Model
	logState    logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	refresh := opts.Refresh
	if refresh <= 0 {
		refresh = DefaultUIInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	ti := textinput.New()
	ti.Placeholder = "Search headlines..."
	ti.Prompt = "/"
	ti.CharLimit = 100

	return Model{
		ctx:         ctx,
		feed:        opts.Feed,
		logPath:     opts.LogPath,
		prefsPath:   prefsPath,
		refresh:     refresh,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(opts.ThemeName),
		currentView: ViewFeed,
		now:         time.Now(),
		filter:      itemFilter{alertsOnly: opts.AlertsOnly},
		searchInput: ti,
		logState:    logState{follow: true},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	// First tick fires immediately.
	return func() tea.Msg { return tickMsg(time.Now()) }
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateDetailViewport()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		m.refreshView()
		var cmds []tea.Cmd
		if m.currentView == ViewLogs && m.logState.follow {
			cmds = append(cmds, readLogsCmd(m.logPath))
		}
		if m.ctx.Err() == nil {
			cmds = append(cmds, tickCmd(m.refresh))
		}
		return m, tea.Batch(cmds...)

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// refreshView pulls a fresh snapshot from the controller.
func (m *Model) refreshView() {
	if m.feed == nil {
		return
	}
	m.view = m.feed.Snapshot()
	m.updateSelection()
	m.updateDetailViewport()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.updateDetailViewport()
		m.logState.rendered = false
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.ViewLogs):
		m.currentView = ViewLogs
		return m, readLogsCmd(m.logPath)

	case key.Matches(msg, m.keys.ViewFeed):
		m.currentView = ViewFeed
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		switch {
		case m.currentView == ViewLogs:
			m.currentView = ViewFeed
		case m.focusedPane == 1:
			m.focusedPane = 0
		case m.filter.query != "":
			m.filter.query = ""
			m.searchInput.SetValue("")
			m.updateSelection()
			m.updateDetailViewport()
		}
		return m, nil
	}

	switch m.currentView {
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleFeedKey(msg)
	}
}

// handleFeedKey handles keys specific to the feed view.
func (m Model) handleFeedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.AlertsOnly):
		m.filter.alertsOnly = !m.filter.alertsOnly
		m.savePrefs()
		m.updateSelection()
		m.updateDetailViewport()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.searchInput.SetValue(m.filter.query)
		m.searchInput.CursorEnd()
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.FocusDetail):
		m.focusedPane = 1 - m.focusedPane
		return m, nil
	}

	if m.focusedPane == 1 {
		var cmd tea.Cmd
		m.detailViewport, cmd = m.detailViewport.Update(msg)
		return m, cmd
	}

	count := len(m.visibleItems())
	if count == 0 {
		return m, nil
	}
	half := max(1, m.listHeight()/2)
	row := m.selectedRow
	switch {
	case key.Matches(msg, m.keys.Down):
		row++
	case key.Matches(msg, m.keys.Up):
		row--
	case key.Matches(msg, m.keys.Top):
		row = 0
	case key.Matches(msg, m.keys.Bottom):
		row = count - 1
	case key.Matches(msg, m.keys.HalfPageDown):
		row += half
	case key.Matches(msg, m.keys.HalfPageUp):
		row -= half
	default:
		return m, nil
	}
	m.selectRow(row)
	return m, nil
}

// handleSearchKey edits the search query; the filter follows every keystroke.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.filter.query = ""
		m.updateSelection()
		m.updateDetailViewport()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.filter.query = m.searchInput.Value()
	m.updateSelection()
	m.updateDetailViewport()
	return m, cmd
}

// savePrefs persists the theme and alert filter. A failure is shown in the
// header and otherwise ignored.
func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, AlertsOnly: m.filter.alertsOnly}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.errorMsg = "prefs: " + err.Error()
		return
	}
	m.errorMsg = ""
}

// visibleItems returns the synchronized items after the search and alert
// filters, newest first.
func (m Model) visibleItems() []feed.FeedItem {
	return m.filter.apply(m.view.Items)
}

// selectedItem returns the highlighted item, or nil when the list is empty.
func (m Model) selectedItem() *feed.FeedItem {
	items := m.visibleItems()
	if m.selectedRow < 0 || m.selectedRow >= len(items) {
		return nil
	}
	item := items[m.selectedRow]
	return &item
}

// selectRow moves the highlight, clamped to the visible list.
func (m *Model) selectRow(row int) {
	items := m.visibleItems()
	if len(items) == 0 {
		m.selectedRow = 0
		m.selectedID = ""
		return
	}
	row = max(0, min(row, len(items)-1))
	m.selectedRow = row
	m.selectedID = items[row].ID
	m.updateDetailViewport()
}

// updateSelection keeps the highlight on the same headline while new items
// arrive above it.
func (m *Model) updateSelection() {
	items := m.visibleItems()
	if len(items) == 0 {
		m.selectedRow = 0
		return
	}
	if m.selectedID != "" {
		for i, item := range items {
			if item.ID == m.selectedID {
				m.selectedRow = i
				return
			}
		}
	}
	m.selectedRow = max(0, min(m.selectedRow, len(items)-1))
	m.selectedID = items[m.selectedRow].ID
}

// Messages

type tickMsg time.Time

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is canceled.
func Run(ctx context.Context, opts Options) error {
	if opts.Feed == nil {
		return errors.New("ui requires a feed")
	}
	if opts.Context == nil {
		opts.Context = ctx
	}
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
