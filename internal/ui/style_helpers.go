package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle renders header and footer segments on a shared surface color.
// Lipgloss resets the background between styled segments, so every word and
// gap is painted separately.
type BgStyle struct {
	bg  lipgloss.Color
	gap lipgloss.Style
}

// NewBgStyle returns a helper painting on color.
func NewBgStyle(color string) BgStyle {
	bg := lipgloss.Color(color)
	return BgStyle{bg: bg, gap: lipgloss.NewStyle().Background(bg)}
}

// Render paints text with style on the surface, including inner spaces.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	painted := style.Background(b.bg)
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = painted.Render(w)
		}
	}
	return strings.Join(words, b.Space())
}

// Space returns one painted space.
func (b BgStyle) Space() string {
	return b.gap.Render(" ")
}

// Spaces returns n painted spaces.
func (b BgStyle) Spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return b.gap.Render(strings.Repeat(" ", n))
}

// Sep paints a separator such as ":" on the surface.
func (b BgStyle) Sep(sep string) string {
	return b.gap.Render(sep)
}
