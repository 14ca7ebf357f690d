package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth
	sep := bg.Spaces(2)

	parts := []string{
		bg.Render("headlines", styles.Logo),
		styles.StatusStyle(m.view.Status).Render(strings.ToUpper(m.view.Status.String())),
	}

	if m.view.PollerActive {
		parts = append(parts, bg.Render("POLLING", styles.WarningText.Bold(true)))
	} else if !m.view.Running {
		parts = append(parts, bg.Render("Stopped", styles.MutedText))
	}

	counts := countItems(m.view.Items)
	parts = append(parts,
		bg.Render("Items:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", counts.total), styles.Text),
	)

	positiveStyle := styles.MutedText
	if counts.positive > 0 {
		positiveStyle = styles.SuccessText
	}
	negativeStyle := styles.MutedText
	if counts.negative > 0 {
		negativeStyle = styles.DangerText
	}
	alertStyle := styles.MutedText
	if counts.alerts > 0 {
		alertStyle = styles.WarningText
	}
	if compact {
		parts = append(parts,
			bg.Render(fmt.Sprintf("+%d", counts.positive), positiveStyle)+bg.Space()+
				bg.Render(fmt.Sprintf("-%d", counts.negative), negativeStyle)+bg.Space()+
				bg.Render(fmt.Sprintf("!%d", counts.alerts), alertStyle),
		)
	} else {
		parts = append(parts,
			bg.Render("Positive:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", counts.positive), positiveStyle)+
				sep+bg.Render("•", styles.FaintText)+sep+
				bg.Render("Negative:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", counts.negative), negativeStyle)+
				sep+bg.Render("•", styles.FaintText)+sep+
				bg.Render("Alerts:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", counts.alerts), alertStyle),
			bg.Render("Sources:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", counts.sources), styles.Text),
		)
	}

	if ts := formatUpdated(m.view.UpdatedAt, m.now); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if m.view.LastError != nil {
		maxErr := 60
		if compact {
			maxErr = 30
		}
		parts = append(parts,
			bg.Render(classifyConnectionError(m.view.LastError), styles.DangerText.Bold(true))+bg.Space()+
				bg.Render(truncate(m.view.LastError.Error(), maxErr), styles.DangerText),
		)
	}

	if m.errorMsg != "" {
		parts = append(parts,
			bg.Render("!", styles.WarningText.Bold(true))+bg.Space()+
				bg.Render(truncate(m.errorMsg, 40), styles.WarningText),
		)
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		MaxHeight(1).
		Render(bg.Join(parts, "  "))
}

// formatUpdated formats the last store change with a relative indicator.
func formatUpdated(updated, now time.Time) string {
	if updated.IsZero() {
		return ""
	}
	since := now.Sub(updated)
	out := updated.Local().Format("15:04:05")
	switch {
	case since < time.Minute:
		out += " (now)"
	case since < time.Hour:
		out += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		out += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return out
}

// classifyConnectionError returns a short description of the last error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the command hints bar, or the search input while
// a query is being typed.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if m.searching {
		return styles.Header.Width(m.width).Render(
			m.searchInput.View() + bg.Spaces(2) +
				bg.Render("enter", styles.AccentText) + bg.Sep(":") + bg.Render("Keep", styles.MutedText) + bg.Spaces(2) +
				bg.Render("esc", styles.AccentText) + bg.Sep(":") + bg.Render("Clear", styles.MutedText),
		)
	}

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewLogs:
		followLabel := "Pause"
		if !m.logState.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"Space", followLabel},
			{"j/k", "Scroll"},
			{"f", "Feed"},
			{"?", "More"},
		}
	default:
		alertsLabel := "Alerts"
		if m.filter.alertsOnly {
			alertsLabel = "All"
		}
		commands = []cmd{
			{"/", "Search"},
			{"a", alertsLabel},
			{"j/k", "Navigate"},
			{"Tab", "Focus"},
			{"l", "Log"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.currentView == ViewFeed && m.filter.query != "" {
		segments = append(segments, bg.Render("/"+truncate(m.filter.query, 18), styles.AccentText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}
