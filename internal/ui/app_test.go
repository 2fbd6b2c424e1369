package ui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/postpilot/postpilot/internal/automation"
	"github.com/postpilot/postpilot/internal/automation/automationtest"
	"github.com/postpilot/postpilot/internal/localcache"
	"github.com/postpilot/postpilot/internal/session"
)

type countingWaker struct{ wakes int }

func (w *countingWaker) Wake() { w.wakes++ }

func newTestCache(t *testing.T) *localcache.Cache {
	t.Helper()
	backend, err := localcache.NewFileBackend(filepath.Join(t.TempDir(), "cache.toml"))
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	return localcache.New(backend, nil)
}

func newTestModel(t *testing.T, fake *automationtest.Fake, cache *localcache.Cache) (Model, *session.Tracker, *countingWaker) {
	t.Helper()
	tracker := session.NewTracker()
	waker := &countingWaker{}
	m := New(Options{API: fake, Tracker: tracker, Poller: waker, Cache: cache})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model), tracker, waker
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, c := m.Update(msg)
		m = updated.(Model)
		cmd = c
	}
	return m, cmd
}

func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	updated, _ := m.Update(cmd())
	return updated.(Model)
}

func TestModel_RestoresKeywordAndTheme(t *testing.T) {
	cache := newTestCache(t)
	cache.Set(localcache.KeyLastKeyword, "coffee")
	cache.Set(localcache.KeyTheme, "Slate")

	m, _, _ := newTestModel(t, &automationtest.Fake{}, cache)
	if m.input.Value() != "coffee" {
		t.Fatalf("input = %q, want restored keyword", m.input.Value())
	}
	if m.input.Focused() {
		t.Fatalf("input focused with a restored keyword")
	}
	if m.theme.Name != "Slate" {
		t.Fatalf("theme = %q, want Slate", m.theme.Name)
	}
}

func TestModel_DefaultThemeWithoutCachedChoice(t *testing.T) {
	m, _, _ := newTestModel(t, &automationtest.Fake{}, nil)
	if want := ThemeNames()[0]; m.theme.Name != want {
		t.Fatalf("theme = %q, want %q", m.theme.Name, want)
	}

	cache := newTestCache(t)
	cache.Set(localcache.KeyTheme, "Solarized")
	m, _, _ = newTestModel(t, &automationtest.Fake{}, cache)
	if m.theme.Name != "Nightfox" {
		t.Fatalf("theme = %q for unknown cached name, want Nightfox", m.theme.Name)
	}
}

func TestModel_StartSendsKeywordAndWakesPoller(t *testing.T) {
	cache := newTestCache(t)
	fake := &automationtest.Fake{}
	m, _, waker := newTestModel(t, fake, cache)

	m, _ = press(t, m, "s", "e", "o", "u", "l")
	m, cmd := press(t, m, "enter")
	if m.busy == "" {
		t.Fatalf("busy not set while start is in flight")
	}
	m = run(t, m, cmd)

	if len(fake.StartedWith) != 1 || fake.StartedWith[0] != "seoul" {
		t.Fatalf("StartedWith = %v, want [seoul]", fake.StartedWith)
	}
	if waker.wakes != 1 {
		t.Fatalf("wakes = %d, want 1", waker.wakes)
	}
	if got, _ := cache.Get(localcache.KeyLastKeyword); got != "seoul" {
		t.Fatalf("cached keyword = %q, want seoul", got)
	}
	if m.busy != "" {
		t.Fatalf("busy = %q after result", m.busy)
	}
	if f, ok := m.activeFlash(); !ok || f.text != "started" {
		t.Fatalf("flash = %#v, want backend message", f)
	}
}

func TestModel_StartRejectsEmptyKeywordWithoutRequest(t *testing.T) {
	fake := &automationtest.Fake{}
	m, _, _ := newTestModel(t, fake, nil)

	m, cmd := press(t, m, "enter")
	if cmd != nil {
		t.Fatalf("command issued for empty keyword")
	}
	if fake.Calls("Start") != 0 {
		t.Fatalf("Start called for empty keyword")
	}
	if f, ok := m.activeFlash(); !ok || !strings.Contains(f.text, "keyword") {
		t.Fatalf("flash = %#v, want keyword warning", f)
	}
}

func TestModel_StartRejectionShowsBackendMessage(t *testing.T) {
	fake := &automationtest.Fake{
		StartErr: &automation.RejectionError{Operation: "start", Message: "already running"},
	}
	cache := newTestCache(t)
	m, _, waker := newTestModel(t, fake, cache)

	m, _ = press(t, m, "x")
	m, cmd := press(t, m, "enter")
	m = run(t, m, cmd)

	if f, ok := m.activeFlash(); !ok || f.text != "already running" {
		t.Fatalf("flash = %#v, want backend rejection", f)
	}
	if waker.wakes != 0 {
		t.Fatalf("poller woken after rejected start")
	}
	if _, ok := cache.Get(localcache.KeyLastKeyword); ok {
		t.Fatalf("keyword cached after rejected start")
	}
}

func TestModel_TerminalNoticeFlashedOnce(t *testing.T) {
	m, tracker, _ := newTestModel(t, &automationtest.Fake{}, nil)
	tracker.Apply(tracker.Begin(), automation.StatusSnapshot{IsRunning: true, CurrentStep: 1, TotalSteps: 2, Status: "running"})
	updated, _ := m.Update(tickMsg(time.Now()))
	m = updated.(Model)

	tracker.Apply(tracker.Begin(), automation.StatusSnapshot{IsRunning: false, CurrentStep: 2, TotalSteps: 2, Status: "completed"})
	updated, _ = m.Update(tickMsg(time.Now()))
	m = updated.(Model)
	if f, ok := m.activeFlash(); !ok || f.text != "Automation finished: completed" {
		t.Fatalf("flash = %#v, want finished notice", f)
	}
	if m.view.Progress != 100 {
		t.Fatalf("Progress = %d, want 100", m.view.Progress)
	}

	m.flash = flash{}
	tracker.Apply(tracker.Begin(), automation.StatusSnapshot{IsRunning: false, Status: "idle"})
	updated, _ = m.Update(tickMsg(time.Now()))
	m = updated.(Model)
	if f, ok := m.activeFlash(); ok {
		t.Fatalf("flash = %#v, want no second terminal notice", f)
	}
}

func TestModel_StopRequiresRunningRun(t *testing.T) {
	fake := &automationtest.Fake{}
	m, tracker, _ := newTestModel(t, fake, nil)
	m, _ = press(t, m, "esc")

	_, cmd := press(t, m, "s")
	if cmd != nil || fake.Calls("Stop") != 0 {
		t.Fatalf("stop issued while idle")
	}

	tracker.Apply(tracker.Begin(), automation.StatusSnapshot{IsRunning: true, TotalSteps: 3})
	updated, _ := m.Update(syncMsg{})
	m = updated.(Model)
	m, cmd = press(t, m, "s")
	run(t, m, cmd)
	if fake.Calls("Stop") != 1 {
		t.Fatalf("Stop calls = %d, want 1", fake.Calls("Stop"))
	}
}

func TestModel_ClearLogsEmptiesView(t *testing.T) {
	fake := &automationtest.Fake{}
	m, tracker, _ := newTestModel(t, fake, nil)
	tracker.Apply(tracker.Begin(), automation.StatusSnapshot{
		IsRunning: true,
		Logs:      []automation.LogEntry{{Timestamp: "t1", Message: "hello", Level: automation.LevelInfo}},
	})
	m, _ = press(t, m, "esc")
	m, cmd := press(t, m, "c")
	m = run(t, m, cmd)

	if len(m.view.Logs) != 0 {
		t.Fatalf("logs = %#v, want cleared", m.view.Logs)
	}
	if fake.Calls("ClearLogs") != 1 {
		t.Fatalf("ClearLogs calls = %d, want 1", fake.Calls("ClearLogs"))
	}
}

func TestModel_GeneratingTabFetchesState(t *testing.T) {
	fake := &automationtest.Fake{Generating: automation.GeneratingState{
		Kind: automation.GeneratingActive,
		Post: &automation.GeneratingPost{Keyword: "latte art", IsGenerating: true},
	}}
	m, _, _ := newTestModel(t, fake, nil)
	m, _ = press(t, m, "esc")
	m, cmd := press(t, m, "2")
	if m.tab != TabGenerating {
		t.Fatalf("tab = %v, want Generating", m.tab)
	}
	m = run(t, m, cmd)
	if !strings.Contains(m.renderGenerating(), "latte art") {
		t.Fatalf("generating view does not mention keyword:\n%s", m.renderGenerating())
	}
}

func TestModel_ThemeCyclePersists(t *testing.T) {
	cache := newTestCache(t)
	m, _, _ := newTestModel(t, &automationtest.Fake{}, cache)
	m, _ = press(t, m, "esc")
	before := m.theme.Name
	m, _ = press(t, m, "T")
	if m.theme.Name == before {
		t.Fatalf("theme unchanged after T")
	}
	if got, _ := cache.Get(localcache.KeyTheme); got != m.theme.Name {
		t.Fatalf("cached theme = %q, want %q", got, m.theme.Name)
	}
}

func TestModel_PostSelectionClamped(t *testing.T) {
	m, tracker, _ := newTestModel(t, &automationtest.Fake{}, nil)
	tracker.SetPosts(tracker.Begin(), []automation.GeneratedPost{
		{ID: "1", Title: "First", Content: "<p>one</p>"},
		{ID: "2", Title: "Second", Content: "<h1>two</h1>"},
	})
	m, _ = press(t, m, "esc", "3")
	updated, _ := m.Update(syncMsg{})
	m = updated.(Model)

	m, _ = press(t, m, "j", "j", "j")
	if m.selectedPost != 1 {
		t.Fatalf("selectedPost = %d, want 1", m.selectedPost)
	}
	if out := m.renderPosts(); !strings.Contains(out, "# two") {
		t.Fatalf("preview missing converted markdown:\n%s", out)
	}
	m, _ = press(t, m, "k", "k")
	if m.selectedPost != 0 {
		t.Fatalf("selectedPost = %d, want 0", m.selectedPost)
	}
}

func TestModel_ViewRendersOfflineState(t *testing.T) {
	m, tracker, _ := newTestModel(t, &automationtest.Fake{}, nil)
	tracker.Fail(tracker.Begin(), errors.New("down"))
	tracker.Fail(tracker.Begin(), errors.New("down"))
	updated, _ := m.Update(syncMsg{})
	m = updated.(Model)

	if out := m.View(); !strings.Contains(out, "OFFLINE") {
		t.Fatalf("View() missing OFFLINE marker")
	}
}

func TestProgressBar(t *testing.T) {
	plain := GetTheme("Slate").Styles().Text
	if got := progressBar(0, 50, plain, plain); got != "" {
		t.Fatalf("progressBar(0) = %q, want empty", got)
	}
	out := progressBar(10, 50, plain, plain)
	if strings.Count(out, "█") != 5 || strings.Count(out, "░") != 5 {
		t.Fatalf("progressBar(10, 50) = %q, want 5 filled and 5 empty", out)
	}
}
