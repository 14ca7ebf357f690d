package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/headlines/internal/logtail"
)

// logState holds the client log view state.
type logState struct {
	lines    []string
	follow   bool
	err      error
	rendered bool
}

type logLinesMsg struct {
	lines []string
	err   error
}

// readLogsCmd tails the client log file.
func readLogsCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogBufferLimit)
		return logLinesMsg{lines: lines, err: err}
	}
}

// handleLogLines stores a fresh tail of the log file.
func (m *Model) handleLogLines(msg logLinesMsg) {
	m.logState.err = msg.err
	if msg.err == nil {
		m.logState.lines = msg.lines
	}
	m.logState.rendered = false
	m.updateLogViewport()
}

// handleLogsKey handles keys specific to the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
			return m, readLogsCmd(m.logPath)
		}
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logState.follow = true
		m.logViewport.GotoBottom()
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.HalfPageUp):
		// Scrolling back pauses the tail.
		m.logState.follow = false
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

// updateLogViewport resizes the log viewport and re-renders its content
// when new lines arrived.
func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	// Box height = content height - 1 (status line below the box)
	// Inner = box height - 2 (top and bottom borders)
	width := max(1, m.width-4)
	height := max(1, m.contentHeight()-3)
	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(width, height)
	}
	m.logViewport.Width = width
	m.logViewport.Height = height
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	if !m.logState.rendered {
		m.logViewport.SetContent(m.renderLogContent(width))
		m.logState.rendered = true
	}
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogContent colors each parsed log line.
func (m Model) renderLogContent(width int) string {
	bgColor := m.theme.FocusBg
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	if len(m.logState.lines) == 0 {
		return bg.Render("No log entries yet", styles.MutedText)
	}

	out := make([]string, 0, len(m.logState.lines))
	for _, line := range m.logState.lines {
		entry := logtail.Parse(line)
		if entry.Level == "" {
			out = append(out, bg.Render(truncate(entry.Message, width), styles.Text))
			continue
		}
		levelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.LevelColor(entry.Level))).Bold(true)
		var parts []string
		if entry.Time != "" {
			parts = append(parts, bg.Render(entry.Time, styles.FaintText))
		}
		parts = append(parts, bg.Render(padRight(entry.Level, 5), levelStyle))
		if entry.Prefix != "" {
			parts = append(parts, bg.Render(entry.Prefix, styles.AccentText))
		}
		used := 0
		for _, p := range parts {
			used += lipgloss.Width(p) + 1
		}
		parts = append(parts, bg.Render(truncate(entry.Message, max(0, width-used)), styles.Text))
		out = append(out, strings.Join(parts, bg.Space()))
	}
	return strings.Join(out, "\n")
}

// renderLogs renders the log view with a status line below the box.
func (m Model) renderLogs() string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)
	height := m.contentHeight() - 1

	box := m.renderTitledBox("Client Log", m.logViewport.View(), m.width, height, true)
	return box + "\n" + bg.FillLine(m.renderLogStatus(styles, bg), m.width)
}

// renderLogStatus describes the tail: source file, line count and follow mode.
func (m Model) renderLogStatus(styles Styles, bg BgStyle) string {
	if m.logPath == "" {
		return bg.Render("Logging to a file is disabled", styles.MutedText)
	}
	if m.logState.err != nil {
		return bg.Render("Log unavailable: "+truncate(m.logState.err.Error(), 60), styles.DangerText)
	}
	autoTail := "off"
	if m.logState.follow {
		autoTail = "on"
	}
	return bg.Render(fmt.Sprintf("%d lines auto-tail %s", len(m.logState.lines), autoTail), styles.FaintText) +
		bg.Spaces(2) + bg.Render(truncateMiddle(m.logPath, 60), styles.MutedText)
}
