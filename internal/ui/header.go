package ui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/postpilot/postpilot/internal/automation"
	"github.com/postpilot/postpilot/internal/present"
)

// renderMain stacks header, progress, keyword input, tabs, body and status.
func (m Model) renderMain() string {
	parts := []string{
		m.renderHeader(),
		m.renderProgress(),
		m.renderInput(),
		m.renderTabBar(),
		m.renderBox(m.body.View(), m.width, m.bodyBoxHeight()),
		m.renderStatusLine(),
	}
	return strings.Join(parts, "\n")
}

func (m Model) bodyBoxHeight() int {
	return max(m.height-chromeRows, 3)
}

// renderHeader renders the connection and run state.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("postpilot", styles.Logo)}

	v := m.view
	switch {
	case v.IsOffline():
		parts = append(parts,
			bg.Render("● OFFLINE", styles.DangerText),
			bg.Render("Retrying...", styles.WarningText.Bold(true)))
	case !v.HasStatus && v.LastError != nil:
		parts = append(parts, bg.Render("● "+present.TruncateText(automation.Describe(v.LastError), 40), styles.DangerText))
	case !v.HasStatus:
		parts = append(parts, bg.Render("Connecting...", styles.WarningText.Bold(true)))
	case v.Running:
		parts = append(parts, bg.Render("● RUNNING", styles.SuccessText))
	default:
		parts = append(parts, bg.Render("● IDLE", styles.MutedText))
	}

	if v.HasStatus && strings.TrimSpace(v.Status) != "" {
		parts = append(parts, styles.StatusStyle(v.Status).Render(v.Status))
	}
	if v.TotalSteps > 0 {
		parts = append(parts,
			bg.Render("Step", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d/%d", v.CurrentStep, v.TotalSteps), styles.Text))
	}
	if !v.LastUpdated.IsZero() {
		parts = append(parts,
			bg.Render("Updated", styles.FaintText)+bg.Space()+
				bg.Render(v.LastUpdated.Format("15:04:05"), styles.MutedText))
	}
	if !compact && m.apiURL != "" {
		parts = append(parts, bg.Render(apiHost(m.apiURL), styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// renderProgress draws the run progress bar and step description.
func (m Model) renderProgress() string {
	styles := m.theme.Styles()
	label := fmt.Sprintf("%3d%%", m.view.Progress)
	desc := strings.TrimSpace(m.view.StepDescription)
	if m.view.Terminal && desc == "" {
		desc = "Finished"
	}

	barWidth := clamp(m.width/2, 10, 60)
	fill := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
	if m.view.Terminal {
		fill = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Success))
	}
	empty := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.BorderMuted))

	line := " " + progressBar(barWidth, m.view.Progress, fill, empty) + " " + styles.Text.Render(label)
	if desc != "" {
		room := m.width - barWidth - len(label) - 4
		line += " " + styles.MutedText.Render(present.TruncateText(singleLine(desc), max(room, 0)))
	}
	return line
}

// progressBar renders percent of width as filled cells.
func progressBar(width, percent int, fill, empty lipgloss.Style) string {
	if width < 1 {
		return ""
	}
	filled := width * clamp(percent, 0, 100) / 100
	return fill.Render(strings.Repeat("█", filled)) + empty.Render(strings.Repeat("░", width-filled))
}

func (m Model) renderInput() string {
	styles := m.theme.Styles()
	label := styles.AccentText.Bold(true).Render(" Keyword ")
	if !m.input.Focused() {
		label = styles.MutedText.Render(" Keyword ")
	}
	line := label + m.input.View()
	if m.busy != "" {
		line += "  " + styles.WarningText.Render(m.busy+"...")
	}
	return line
}

func (m Model) renderTabBar() string {
	styles := m.theme.Styles()
	segments := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf(" %d %s ", i+1, name)
		switch {
		case Tab(i) == m.tab:
			segments = append(segments, styles.Selected.Bold(true).Render(label))
		default:
			segments = append(segments, styles.MutedText.Render(label))
		}
	}
	counts := fmt.Sprintf("%d logs · %d posts", len(m.view.Logs), len(m.view.Posts))
	return strings.Join(segments, " ") + "  " + styles.FaintText.Render(counts)
}

// renderBox draws the bordered body panel.
func (m Model) renderBox(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Width(max(width-2, 1)).
		Height(max(height-2, 1)).
		Render(content)
}

// renderStatusLine shows the active flash message or the command hints.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if f, ok := m.activeFlash(); ok {
		return styles.Footer.Width(m.width).Render(bg.Render(f.text, styles.ToneStyle(f.tone)))
	}

	type cmd struct{ key, desc string }
	commands := []cmd{
		{"enter", "Start"},
		{"s", "Stop"},
		{"r", "Refresh"},
		{"c", "Clear"},
		{"1-3", "Tabs"},
		{"i", "Keyword"},
		{"?", "Help"},
		{"q", "Quit"},
	}
	if m.input.Focused() {
		commands = []cmd{{"enter", "Start"}, {"esc", "Done editing"}, {"tab", "Next tab"}}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments, bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments, bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))
	return styles.Footer.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

func apiHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return truncateMiddle(raw, 40)
	}
	return truncateMiddle(u.Host, 40)
}
