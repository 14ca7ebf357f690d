package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/headlines/internal/feed"
)

// renderMain stacks the header, the active view and the command bar.
func (m Model) renderMain() string {
	var body string
	switch m.currentView {
	case ViewLogs:
		body = m.renderLogs()
	default:
		body = m.renderFeed()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderCommandBar(),
	)
}

// contentHeight is the height left between the header and the command bar.
func (m Model) contentHeight() int {
	return max(3, m.height-2)
}

// listHeight is the number of rows visible inside the list pane.
func (m Model) listHeight() int {
	return m.contentHeight() - 2
}

// paneWidths splits the width between the list and detail panes.
// Extra wide (>= 160): 55% list, 45% detail. Default: 60% list, 40% detail.
func (m Model) paneWidths() (list, detail int) {
	if m.width >= LayoutExtraWideWidth {
		list = m.width * 55 / 100
	} else {
		list = m.width * 60 / 100
	}
	return list, m.width - list
}

// renderFeed renders the headline list and the detail pane side by side.
func (m Model) renderFeed() string {
	styles := m.theme.Styles()
	height := m.contentHeight()

	items := m.visibleItems()
	if len(m.view.Items) == 0 {
		msg := "Waiting for headlines..."
		if m.view.LastError != nil {
			msg = "No headlines yet. " + truncate(m.view.LastError.Error(), 60)
		}
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, styles.MutedText.Render(msg))
	}

	listWidth, detailWidth := m.paneWidths()

	listFocused := m.focusedPane == 0
	listBg := m.theme.SurfaceAlt
	if listFocused {
		listBg = m.theme.FocusBg
	}
	var listContent string
	if len(items) == 0 {
		listContent = lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.Muted)).
			Background(lipgloss.Color(listBg)).
			Render("No headlines match the filter")
	} else {
		listContent = m.renderList(items, listWidth-2, listBg)
	}
	listPane := m.renderTitledBox(m.listTitle(len(items)), listContent, listWidth, height, listFocused)

	detailFocused := m.focusedPane == 1
	detailPane := m.renderTitledBox("Details", m.detailViewport.View(), detailWidth, height, detailFocused)

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// listTitle names the list pane, noting any active filter.
func (m Model) listTitle(visible int) string {
	if !m.filter.active() {
		return fmt.Sprintf("Headlines (%d)", visible)
	}
	var parts []string
	if m.filter.alertsOnly {
		parts = append(parts, "alerts")
	}
	if q := strings.TrimSpace(m.filter.query); q != "" {
		parts = append(parts, "/"+truncate(q, 16))
	}
	return fmt.Sprintf("Headlines (%d of %d, %s)", visible, len(m.view.Items), strings.Join(parts, " "))
}

// renderList renders the rows that fit the pane, scrolled so the selected
// row stays visible.
func (m Model) renderList(items []feed.FeedItem, width int, bgColor string) string {
	height := m.listHeight()
	start := 0
	if m.selectedRow >= height {
		start = m.selectedRow - height + 1
	}
	end := min(len(items), start+height)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rowBg := bgColor
		selected := i == m.selectedRow
		if selected {
			rowBg = m.theme.SelectionBg
		}
		content := m.formatRow(items[i], width, rowBg, selected)
		lines = append(lines, lipgloss.NewStyle().
			Background(lipgloss.Color(rowBg)).
			Width(width).
			Render(content))
	}
	return strings.Join(lines, "\n")
}

// formatRow formats one headline row.
// Format: "● 12m  Source       Headline !"
func (m Model) formatRow(item feed.FeedItem, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	textStyle := styles.Text
	mutedStyle := styles.MutedText
	if selected {
		textStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		mutedStyle = textStyle
	}
	dotStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SentimentColor(item.EffectiveSentiment())))

	used := 2 + ageColumnWidth + 1
	parts := []string{
		bg.Render("●", dotStyle),
		bg.Render(padRight(itemAge(item.Published(), m.now), ageColumnWidth), mutedStyle),
	}
	if m.width >= LayoutCompactWidth {
		parts = append(parts, bg.Render(padRight(truncate(item.Source, sourceColumnWidth), sourceColumnWidth), mutedStyle))
		used += sourceColumnWidth + 1
	}

	alert := item.IsAlert()
	if alert {
		used += 2
	}
	parts = append(parts, bg.Render(truncate(item.Headline, width-used), textStyle))
	if alert {
		parts = append(parts, bg.Render("!", styles.DangerText))
	}
	return strings.Join(parts, bg.Space())
}

// updateDetailViewport resizes the detail viewport and fills it with the
// selected item.
func (m *Model) updateDetailViewport() {
	if !m.ready {
		return
	}
	_, detailWidth := m.paneWidths()
	width := max(1, detailWidth-4)
	height := max(1, m.contentHeight()-2)
	if m.detailViewport.Width == 0 {
		m.detailViewport = viewport.New(width, height)
	}
	m.detailViewport.Width = width
	m.detailViewport.Height = height

	bgColor := m.theme.SurfaceAlt
	if m.focusedPane == 1 {
		bgColor = m.theme.FocusBg
	}
	m.detailViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(bgColor))

	if item := m.selectedItem(); item != nil {
		m.detailViewport.SetContent(m.renderDetailContent(*item, width, bgColor))
	} else {
		m.detailViewport.SetContent(lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.Muted)).
			Background(lipgloss.Color(bgColor)).
			Render("Select a headline"))
	}
}

// renderDetailContent renders every field of one headline.
func (m Model) renderDetailContent(item feed.FeedItem, width int, bgColor string) string {
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)
	wrap := lipgloss.NewStyle().Width(width).Background(lipgloss.Color(bgColor))

	var lines []string
	lines = append(lines, wrap.Inherit(styles.Text.Bold(true)).Render(item.Headline), "")

	row := func(label, value string, style lipgloss.Style) {
		if strings.TrimSpace(value) == "" {
			return
		}
		lines = append(lines, bg.Render(padRight(label, 10), styles.MutedText)+
			bg.Render(truncate(value, width-10), style))
	}

	row("Source", item.Source, styles.Text)
	published := item.Timestamp
	if t := item.Published(); !t.IsZero() {
		published = t.Local().Format("2006-01-02 15:04:05") + " (" + itemAge(t, m.now) + ")"
	}
	row("Published", published, styles.Text)

	sentiment := item.EffectiveSentiment()
	pill := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Background)).
		Background(lipgloss.Color(m.theme.SentimentColor(sentiment))).
		Bold(true).
		Padding(0, 1).
		Render(strings.ToUpper(string(sentiment)))
	tone := bg.Render(padRight("Tone", 10), styles.MutedText) + pill
	if item.IsAlert() {
		tone += bg.Space() + bg.Render("ALERT", styles.DangerText)
	}
	lines = append(lines, tone)

	row("Tickers", strings.Join(item.Tickers, ", "), styles.AccentText)
	row("Tags", strings.Join(item.Tags, ", "), styles.FaintText)
	row("URL", item.URL, styles.InfoText)

	if summary := strings.TrimSpace(item.Summary); summary != "" {
		lines = append(lines, "", wrap.Inherit(styles.Text).Render(summary))
	}

	lines = append(lines, "", bg.Render("id "+item.ID, styles.FaintText))
	return strings.Join(lines, "\n")
}

// renderTitledBox renders content in a box with the title embedded in the top border.
// Frame style: ┌─── Title ───┐
// When focused is true, uses BorderFocus color and FocusBg background.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColorStr, bgColorStr := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColorStr, bgColorStr = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColorStr)
	bgColor := lipgloss.Color(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(0, width-2)
	title = truncate(title, max(0, innerWidth-4))
	titleLen := len([]rune(title))
	leftPad := max(0, (innerWidth-titleLen-2)/2)
	rightPad := max(0, innerWidth-titleLen-2-leftPad)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Sep(" ") + bg.Render(title, titleStyle) + bg.Sep(" ") +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(bgColor)
	contentLines := strings.Split(content, "\n")
	boxHeight := max(0, height-2)

	padded := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		padded = append(padded,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(padded, "\n") + "\n" + bottomBorder
}
