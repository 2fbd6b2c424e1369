package ui

import (
	"fmt"
	"strings"

	"github.com/postpilot/postpilot/internal/automation"
	"github.com/postpilot/postpilot/internal/present"
)

// refreshBody resizes the body viewport and re-renders the active tab. Log
// output keeps following the tail when the user was already at the bottom.
func (m *Model) refreshBody() {
	if !m.ready {
		return
	}
	follow := m.tab == TabLogs && (m.body.AtBottom() || m.body.TotalLineCount() == 0)

	m.body.Width = max(m.width-2, 1)
	m.body.Height = max(m.bodyBoxHeight()-2, 1)

	var content string
	switch m.tab {
	case TabGenerating:
		content = m.renderGenerating()
	case TabPosts:
		content = m.renderPosts()
	default:
		content = m.renderLogContent()
	}
	m.body.SetContent(content)
	if follow {
		m.body.GotoBottom()
	}
}

// renderLogContent renders the log entries oldest first.
func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	if len(m.view.Logs) == 0 {
		return styles.MutedText.Render("No log entries")
	}

	var b strings.Builder
	for i, entry := range m.view.Logs {
		tone := present.LogLevelTone(string(entry.Level))
		ts := present.FormatDate(entry.Timestamp)
		b.WriteString(styles.FaintText.Render(ts))
		b.WriteString(" ")
		b.WriteString(styles.ToneStyle(tone).Render(padRight(levelLabel(entry.Level), 7)))
		b.WriteString(" ")
		b.WriteString(styles.Text.Render(entry.Message))
		if i < len(m.view.Logs)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func levelLabel(level automation.LogLevel) string {
	return strings.ToUpper(string(automation.ParseLogLevel(string(level))))
}

// renderGenerating describes the post currently being generated.
func (m Model) renderGenerating() string {
	styles := m.theme.Styles()
	g := m.generating

	switch {
	case g.Kind == automation.GeneratingActive && g.Post != nil:
		post := g.Post
		rows := [][2]string{
			{"Keyword", post.Keyword},
			{"Status", orDefault(post.Status, "generating")},
			{"Started", present.FormatDate(post.StartedAt)},
		}
		var b strings.Builder
		b.WriteString(styles.AccentText.Bold(true).Render("Generating"))
		b.WriteString("\n\n")
		for _, row := range rows {
			b.WriteString(styles.MutedText.Render(padRight(row[0], 10)))
			b.WriteString(styles.Text.Render(row[1]))
			b.WriteString("\n")
		}
		if post.IsGenerating {
			b.WriteString("\n")
			b.WriteString(styles.InfoText.Render("Writing content..."))
		}
		return b.String()
	case g.Kind == automation.GeneratingUnknown:
		raw := present.TruncateText(singleLine(string(g.Raw)), max(m.body.Width*3, 80))
		return styles.WarningText.Render("The server reported a generating state postpilot does not recognise.") +
			"\n\n" + styles.FaintText.Render(raw)
	default:
		return styles.MutedText.Render("Nothing is being generated right now")
	}
}

// renderPosts lists generated posts and previews the selected one.
func (m Model) renderPosts() string {
	styles := m.theme.Styles()
	posts := m.view.Posts
	if len(posts) == 0 {
		return styles.MutedText.Render("No posts generated yet")
	}

	width := max(m.body.Width, 20)
	titleWidth := max(width-40, 12)

	var b strings.Builder
	for i, post := range posts {
		marker := "  "
		title := styles.Text
		if i == m.selectedPost {
			marker = styles.AccentText.Render("▸ ")
			title = styles.AccentText.Bold(true)
		}
		state := styles.MutedText.Render("draft")
		if post.Uploaded {
			state = styles.SuccessText.Render("uploaded")
		}
		b.WriteString(marker)
		b.WriteString(title.Render(padRight(present.TruncateText(singleLine(orDefault(post.Title, "(untitled)")), titleWidth), titleWidth+3)))
		b.WriteString(" ")
		b.WriteString(styles.FaintText.Render(present.FormatDate(post.CreatedAt)))
		b.WriteString(" ")
		b.WriteString(state)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(m.renderPostPreview(posts[clamp(m.selectedPost, 0, len(posts)-1)], width))
	return b.String()
}

func (m Model) renderPostPreview(post automation.GeneratedPost, width int) string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(orDefault(post.Title, "(untitled)")))
	b.WriteString("\n")
	meta := fmt.Sprintf("%s · %s", orDefault(post.Status, "unknown"), present.FormatDate(post.CreatedAt))
	b.WriteString(styles.MutedText.Render(meta))
	if post.BlogURL != "" {
		b.WriteString("\n")
		b.WriteString(styles.InfoText.Render(truncateMiddle(post.BlogURL, width)))
	}
	b.WriteString("\n\n")

	body, err := present.ContentToMarkdown(post.Content)
	if err != nil {
		body = post.Content
	}
	body = present.TruncateText(strings.TrimSpace(body), PostPreviewRunes)
	b.WriteString(styles.Text.Render(strings.Join(wrapLines(body, width), "\n")))
	return b.String()
}
