// Package present holds pure formatting, progress and validation helpers
// shared by the CLI and the terminal UI.
package present

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/yuin/goldmark"
)

// DateLayout renders timestamps the way the web client did.
const DateLayout = "2006. 01. 02. 15:04:05"

// FormatDate renders an ISO-8601 timestamp in local time. Unparsable input is
// returned unchanged.
func FormatDate(value string) string {
	t := ParseTimestamp(value)
	if t.IsZero() {
		return value
	}
	return t.In(time.Local).Format(DateLayout)
}

// TruncateText cuts text to limit characters and appends "...".
func TruncateText(text string, limit int) string {
	runes := []rune(text)
	if limit < 0 || len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

// Tone is the visual weight attached to a log level.
type Tone int

const (
	ToneInfo Tone = iota
	ToneSuccess
	ToneWarning
	ToneDanger
)

func (t Tone) String() string {
	switch t {
	case ToneSuccess:
		return "success"
	case ToneWarning:
		return "warning"
	case ToneDanger:
		return "danger"
	default:
		return "info"
	}
}

// LogLevelTone maps a log level to its tone. Unknown levels read as info.
func LogLevelTone(level string) Tone {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		return ToneDanger
	case "warning", "warn":
		return ToneWarning
	case "success":
		return ToneSuccess
	default:
		return ToneInfo
	}
}

// CalculateProgress returns round(current/total*100) clamped to [0,100].
// A non-positive total yields 0.
func CalculateProgress(current, total int) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(float64(current) / float64(total) * 100))
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}

// ContentToMarkdown converts generated HTML content into markdown for
// terminal display. Plain text passes through.
func ContentToMarkdown(content string) (string, error) {
	if !strings.Contains(content, "<") {
		return strings.TrimSpace(content), nil
	}
	converter := md.NewConverter("", true, nil)
	out, err := converter.ConvertString(content)
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// MarkdownToHTML renders markdown for upload.
func MarkdownToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// ParseTimestamp parses the ISO-8601 variants the backend emits. The zero
// time means value could not be parsed.
func ParseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000", "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
