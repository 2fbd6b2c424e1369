// Package ui provides postpilot's terminal user interface.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. The Model never talks to the tracker from
// View: a one second tick copies session.Tracker.View() into the model and
// drains pending notices into the status line. Start, stop, clear and
// refresh run as tea.Cmds against automation.API, and their results come
// back as messages.
//
// # Layout
//
//	postpilot ● RUNNING [running] Step 3/5 Updated 14:02:11   host
//	 ████████████░░░░░░░░  60% Writing introduction
//	 Keyword coffee shops in Seoul
//	 1 Logs  2 Generating  3 Posts   42 logs · 3 posts
//	╭────────────────────────────────────────────────────╮
//	│ body viewport for the active tab                   │
//	╰────────────────────────────────────────────────────╯
//	 flash message or command hints
//
// # Package Structure
//
//   - app.go: Model, Update, commands and Run
//   - header.go: header, progress bar, input line, tab bar, status line
//   - logs.go: body renderers for the logs, generating and posts tabs
//   - help.go: help overlay built from the key map
//   - keys.go: key bindings
//   - theme.go, style_helpers.go: palettes and lipgloss helpers
//
// # Key Bindings
//
// While the keyword input has focus, keys go to the input except enter
// (start), esc (leave input), tab (next tab) and ctrl+c. Otherwise:
//
//   - enter: Start automation with the keyword
//   - s: Stop automation
//   - r: Refresh status and logs now
//   - c: Clear logs
//   - 1/2/3 or tab: Logs, Generating, Posts
//   - i or /: Edit keyword
//   - j/k, g/G, ctrl+d/ctrl+u: Scroll or select a post
//   - T: Cycle theme (remembered in the local cache)
//   - ?: Help
//   - q or ctrl+c: Quit
//
// # Notices
//
// A finished run produces exactly one "Automation finished" flash, however
// many polls observe the stopped state afterwards.
package ui
