package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/postpilot/postpilot/internal/present"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Nightfox" || names[1] != "Kanagawa" || names[2] != "Slate" {
		t.Fatalf("ThemeNames() = %v, want [Nightfox Kanagawa Slate]", names)
	}
}

func TestNextTheme(t *testing.T) {
	tests := map[string]string{
		"Nightfox": "Kanagawa",
		"Kanagawa": "Slate",
		"Slate":    "Nightfox",
		"Unknown":  "Nightfox",
	}
	for in, want := range tests {
		if got := NextTheme(in); got != want {
			t.Fatalf("NextTheme(%s) = %q, want %s", in, got, want)
		}
	}
}

func TestGetTheme(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q, want Slate", got)
	}
	if got := GetTheme("Unknown").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Nightfox (fallback)", got)
	}
}

func TestStatusColor(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		tests := map[string]string{
			"running":    th.Accent,
			"Completed ": th.Success,
			"stopped":    th.Warning,
			"failed":     th.Danger,
			"idle":       th.Muted,
			"mystery":    th.Muted,
		}
		for status, want := range tests {
			if got := th.StatusColor(status); got != want {
				t.Fatalf("%s StatusColor(%q) = %q, want %q", name, status, got, want)
			}
		}
	}
}

func TestWithBackgroundKeepsForeground(t *testing.T) {
	th := GetTheme("Nightfox")
	styles := th.Styles().WithBackground(th.Surface)
	if got := styles.DangerText.GetForeground(); got != lipgloss.Color(th.Danger) {
		t.Fatalf("DangerText foreground = %v, want %v", got, th.Danger)
	}
	if got := styles.DangerText.GetBackground(); got != lipgloss.Color(th.Surface) {
		t.Fatalf("DangerText background = %v, want %v", got, th.Surface)
	}
}

func TestToneStyle(t *testing.T) {
	styles := GetTheme("Slate").Styles()
	if got := styles.ToneStyle(present.ToneDanger).Render("x"); got != styles.DangerText.Render("x") {
		t.Fatalf("ToneStyle(danger) did not use DangerText")
	}
	if got := styles.ToneStyle(present.ToneInfo).Render("x"); got != styles.InfoText.Render("x") {
		t.Fatalf("ToneStyle(info) did not use InfoText")
	}
}

func TestBgStyleRender(t *testing.T) {
	bg := NewBgStyle("#000000")
	styles := GetTheme("Slate").Styles()
	if got := bg.Render("", styles.Text); got != "" {
		t.Fatalf("Render(\"\") = %q, want empty", got)
	}
	out := bg.Render("step  two", styles.Text)
	if !strings.Contains(out, "step") || !strings.Contains(out, "two") {
		t.Fatalf("Render() = %q, missing words", out)
	}
	if got := bg.Spaces(0); got != "" {
		t.Fatalf("Spaces(0) = %q, want empty", got)
	}
}
