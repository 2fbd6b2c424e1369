// Package logtail reads the tail of postpilot's own diagnostic log.
//
// # Reading
//
// Read extracts the last N lines of a file in one sequential pass using a
// ring buffer of N entries, so memory stays O(N) however large the file
// grows. Lines come back oldest first. A missing file returns no lines and
// no error; other I/O errors are returned wrapped.
//
//	lines, err := logtail.Read(cfg.LogFile, 200)
//
// # Levels
//
// The log is written by charmbracelet/log in text mode:
//
//	2026-10-19 09:12:44 WARN <app/poller.go:121> poller: status poll failed err="..."
//
// LineLevel recognises the abbreviated level tokens (DEBU, INFO, WARN, ERRO,
// FATA). Filter drops lines below a threshold, and Colorize tints warnings
// and errors with lipgloss for `postpilot diag`.
package logtail
