package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/postpilot/postpilot/internal/present"
)

// Theme is a named palette.
type Theme struct {
	Name string

	Background  string
	Surface     string
	Selection   string
	Border      string
	BorderMuted string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string
}

// statusTones maps backend run statuses to badge tones. Unknown statuses
// render muted.
var statusTones = map[string]present.Tone{
	"running":    present.ToneInfo,
	"started":    present.ToneInfo,
	"generating": present.ToneInfo,
	"uploading":  present.ToneInfo,
	"stopping":   present.ToneWarning,
	"stopped":    present.ToneWarning,
	"completed":  present.ToneSuccess,
	"finished":   present.ToneSuccess,
	"success":    present.ToneSuccess,
	"error":      present.ToneDanger,
	"failed":     present.ToneDanger,
}

// StatusColor returns the badge color for a backend status.
func (t Theme) StatusColor(status string) string {
	tone, ok := statusTones[strings.ToLower(strings.TrimSpace(status))]
	if !ok {
		return t.Muted
	}
	return t.toneColor(tone)
}

func (t Theme) toneColor(tone present.Tone) string {
	switch tone {
	case present.ToneDanger:
		return t.Danger
	case present.ToneWarning:
		return t.Warning
	case present.ToneSuccess:
		return t.Success
	default:
		return t.Accent
	}
}

// Styles holds the lipgloss styles derived from a Theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style

	theme Theme
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Styles builds the text and component styles for t.
func (t Theme) Styles() Styles {
	bar := lipgloss.NewStyle().Background(lipgloss.Color(t.Surface)).Padding(0, 1)
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header:   bar.Foreground(lipgloss.Color(t.Text)),
		Footer:   bar.Foreground(lipgloss.Color(t.Muted)),
		Logo:     fg(t.Warning).Bold(true),
		Selected: fg(t.Text).Background(lipgloss.Color(t.Selection)),

		theme: t,
	}
}

// WithBackground returns s with every text style painted on color, so
// segments inside the header and footer bars do not punch holes in them.
func (s Styles) WithBackground(color string) Styles {
	bg := lipgloss.Color(color)
	out := s
	for _, style := range []*lipgloss.Style{
		&out.Text, &out.MutedText, &out.FaintText, &out.AccentText,
		&out.SuccessText, &out.WarningText, &out.DangerText, &out.InfoText,
		&out.Header, &out.Footer, &out.Logo, &out.Selected,
	} {
		*style = style.Background(bg)
	}
	return out
}

// StatusStyle returns the badge style for a backend status.
func (s Styles) StatusStyle(status string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.theme.Background)).
		Background(lipgloss.Color(s.theme.StatusColor(status))).
		Padding(0, 1)
}

// ToneStyle maps a presentation tone to a text style.
func (s Styles) ToneStyle(tone present.Tone) lipgloss.Style {
	switch tone {
	case present.ToneDanger:
		return s.DangerText
	case present.ToneWarning:
		return s.WarningText
	case present.ToneSuccess:
		return s.SuccessText
	default:
		return s.InfoText
	}
}

// Palettes: Nightfox (EdenEast/nightfox.nvim), Kanagawa (rebelot/kanagawa.nvim)
// and Tailwind's slate and sky scales.
var themeOrder = []Theme{
	{
		Name:       "Nightfox",
		Background: "#131a24", Surface: "#192330", Selection: "#2b3b51",
		Border: "#39506d", BorderMuted: "#212e3f",
		Text: "#cdcecf", Muted: "#738091", Faint: "#71839b",
		Accent: "#719cd6", Success: "#81b29a", Warning: "#dbc074", Danger: "#c94f6d", Info: "#63cdcf",
	},
	{
		Name:       "Kanagawa",
		Background: "#16161D", Surface: "#1F1F28", Selection: "#2D4F67",
		Border: "#54546D", BorderMuted: "#2A2A37",
		Text: "#DCD7BA", Muted: "#C8C093", Faint: "#727169",
		Accent: "#7E9CD8", Success: "#98BB6C", Warning: "#E6C384", Danger: "#E46876", Info: "#7FB4CA",
	},
	{
		Name:       "Slate",
		Background: "#020617", Surface: "#0f172a", Selection: "#0284c7",
		Border: "#334155", BorderMuted: "#1e293b",
		Text: "#f1f5f9", Muted: "#94a3b8", Faint: "#64748b",
		Accent: "#38bdf8", Success: "#22c55e", Warning: "#f59e0b", Danger: "#ef4444", Info: "#06b6d4",
	},
}

// GetTheme returns the named theme, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range themeOrder {
		if t.Name == name {
			return t
		}
	}
	return themeOrder[0]
}

// NextTheme returns the theme after current in the cycle.
func NextTheme(current string) string {
	for i, t := range themeOrder {
		if t.Name == current {
			return themeOrder[(i+1)%len(themeOrder)].Name
		}
	}
	return themeOrder[0].Name
}

// ThemeNames lists the available themes in cycle order.
func ThemeNames() []string {
	names := make([]string, len(themeOrder))
	for i, t := range themeOrder {
		names[i] = t.Name
	}
	return names
}
