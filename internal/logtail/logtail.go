package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Level is the severity of a diagnostic log line, ordered by importance.
type Level int

const (
	LevelUnknown Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// levelTokens are the abbreviations charmbracelet/log writes in text mode.
var levelTokens = map[string]Level{
	"DEBU":  LevelDebug,
	"DEBUG": LevelDebug,
	"INFO":  LevelInfo,
	"WARN":  LevelWarn,
	"ERRO":  LevelError,
	"ERROR": LevelError,
	"FATA":  LevelError,
}

// ParseLevel maps a level name such as "warn" to a Level.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelUnknown
	}
}

// LineLevel finds the level token among the first fields of line.
func LineLevel(line string) Level {
	fields := strings.Fields(line)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	for _, f := range fields {
		if lvl, ok := levelTokens[f]; ok {
			return lvl
		}
	}
	return LevelUnknown
}

// Filter keeps lines at or above min. Lines without a level token (such as
// wrapped continuations) follow the decision made for the line before them.
func Filter(lines []string, min Level) []string {
	if min <= LevelDebug {
		return lines
	}
	out := make([]string, 0, len(lines))
	keep := false
	for _, line := range lines {
		if lvl := LineLevel(line); lvl != LevelUnknown {
			keep = lvl >= min
		}
		if keep {
			out = append(out, line)
		}
	}
	return out
}

var levelStyles = map[Level]lipgloss.Style{
	LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
	LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")),
	LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
}

// Colorize renders lines for a terminal, tinting warnings and errors.
func Colorize(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if style, ok := levelStyles[LineLevel(line)]; ok {
			out[i] = style.Render(line)
			continue
		}
		out[i] = line
	}
	return out
}
