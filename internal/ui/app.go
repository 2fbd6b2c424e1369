package ui

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/postpilot/postpilot/internal/automation"
	"github.com/postpilot/postpilot/internal/localcache"
	"github.com/postpilot/postpilot/internal/present"
	"github.com/postpilot/postpilot/internal/session"
)

// Tab is a body panel.
type Tab int

const (
	TabLogs Tab = iota
	TabGenerating
	TabPosts
)

var tabNames = [...]string{"Logs", "Generating", "Posts"}

func (t Tab) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return "?"
	}
	return tabNames[t]
}

func (t Tab) next() Tab {
	return (t + 1) % Tab(len(tabNames))
}

// Waker resumes the background poller.
type Waker interface {
	Wake()
}

// Options configure the UI.
type Options struct {
	Context context.Context
	API     automation.API
	Tracker *session.Tracker
	Poller  Waker
	Cache   *localcache.Cache
	Logger  *log.Logger
	APIURL  string
	Tick    time.Duration
}

type flash struct {
	text  string
	tone  present.Tone
	until time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx     context.Context
	api     automation.API
	tracker *session.Tracker
	poller  Waker
	cache   *localcache.Cache
	logger  *log.Logger
	apiURL  string
	tick    time.Duration
	keys    keyMap
	now     func() time.Time

	// UI state
	theme    Theme
	tab      Tab
	width    int
	height   int
	ready    bool
	showHelp bool
	input    textinput.Model
	body     viewport.Model
	flash    flash
	busy     string

	// Data state
	view         session.View
	generating   automation.GeneratingState
	lastSync     time.Time
	selectedPost int
}

// New creates the model. The last keyword and theme are restored from the
// cache when present.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = session.NewTracker()
	}

	input := textinput.New()
	input.Placeholder = "Keyword for the next run"
	input.CharLimit = present.MaxKeywordLength
	input.Prompt = ""
	if last, ok := opts.Cache.Get(localcache.KeyLastKeyword); ok {
		input.SetValue(last)
	} else {
		input.Focus()
	}

	return Model{
		ctx:     ctx,
		api:     opts.API,
		tracker: tracker,
		poller:  opts.Poller,
		cache:   opts.Cache,
		logger:  logger,
		apiURL:  opts.APIURL,
		tick:    tick,
		keys:    DefaultKeyMap(),
		now:     time.Now,
		theme:   GetTheme(opts.Cache.GetOr(localcache.KeyTheme, themeOrder[0].Name)),
		input:   input,
		body:    viewport.New(0, 0),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, syncCmd(), tickCmd(m.tick))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.input.Width = max(m.width-14, 10)
		m.refreshBody()
		return m, nil

	case tickMsg:
		m.sync()
		return m, tickCmd(m.tick)

	case syncMsg:
		m.sync()
		return m, nil

	case actionMsg:
		return m.handleAction(msg), nil

	case generatingMsg:
		if msg.err != nil {
			m.logger.Warn("generating fetch failed", "err", msg.err)
			m.setFlash(automation.Describe(msg.err), present.ToneDanger)
		} else {
			m.generating = msg.state
		}
		m.refreshBody()
		return m, nil
	}

	var cmd tea.Cmd
	if m.input.Focused() {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.input.Focused() {
		switch {
		case key.Matches(msg, m.keys.Start):
			return m.startRun()
		case key.Matches(msg, m.keys.Blur):
			m.input.Blur()
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.input.Blur()
			return m.switchTab(m.tab.next())
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.cache.Set(localcache.KeyTheme, m.theme.Name)
		m.refreshBody()
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		return m.switchTab(m.tab.next())
	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchTab(TabLogs)
	case key.Matches(msg, m.keys.ViewGenerating):
		return m.switchTab(TabGenerating)
	case key.Matches(msg, m.keys.ViewPosts):
		return m.switchTab(TabPosts)
	case key.Matches(msg, m.keys.Start):
		return m.startRun()
	case key.Matches(msg, m.keys.Stop):
		return m.stopRun()
	case key.Matches(msg, m.keys.Refresh):
		return m.refresh()
	case key.Matches(msg, m.keys.ClearLogs):
		return m.clearLogs()
	case key.Matches(msg, m.keys.EditInput):
		return m, m.input.Focus()
	}
	return m.handleNavKey(msg), nil
}

func (m Model) handleNavKey(msg tea.KeyMsg) Model {
	if m.tab == TabPosts {
		last := len(m.view.Posts) - 1
		switch {
		case key.Matches(msg, m.keys.Up):
			m.selectedPost = clamp(m.selectedPost-1, 0, max(last, 0))
		case key.Matches(msg, m.keys.Down):
			m.selectedPost = clamp(m.selectedPost+1, 0, max(last, 0))
		case key.Matches(msg, m.keys.Top):
			m.selectedPost = 0
		case key.Matches(msg, m.keys.Bottom):
			m.selectedPost = max(last, 0)
		case key.Matches(msg, m.keys.PageUp):
			m.body.SetYOffset(m.body.YOffset - m.body.Height)
			return m
		case key.Matches(msg, m.keys.PageDown):
			m.body.SetYOffset(m.body.YOffset + m.body.Height)
			return m
		default:
			return m
		}
		m.refreshBody()
		m.body.GotoTop()
		return m
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.body.SetYOffset(m.body.YOffset - 1)
	case key.Matches(msg, m.keys.Down):
		m.body.SetYOffset(m.body.YOffset + 1)
	case key.Matches(msg, m.keys.PageUp):
		m.body.SetYOffset(m.body.YOffset - m.body.Height)
	case key.Matches(msg, m.keys.PageDown):
		m.body.SetYOffset(m.body.YOffset + m.body.Height)
	case key.Matches(msg, m.keys.Top):
		m.body.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.body.GotoBottom()
	}
	return m
}

func (m Model) switchTab(tab Tab) (tea.Model, tea.Cmd) {
	m.tab = tab
	m.refreshBody()
	if tab == TabLogs {
		m.body.GotoBottom()
	} else {
		m.body.GotoTop()
	}
	if tab == TabGenerating {
		return m, m.generatingCmd()
	}
	return m, nil
}

func (m Model) startRun() (tea.Model, tea.Cmd) {
	keyword := strings.TrimSpace(m.input.Value())
	if !present.ValidateKeyword(keyword) {
		m.setFlash("Enter a keyword of 1 to 100 characters", present.ToneWarning)
		return m, nil
	}
	if m.view.Running {
		m.setFlash("Automation is already running", present.ToneWarning)
		return m, nil
	}
	if m.busy != "" {
		return m, nil
	}
	m.busy = "Starting"
	m.input.Blur()
	return m, m.startCmd(keyword)
}

func (m Model) stopRun() (tea.Model, tea.Cmd) {
	if !m.view.Running {
		m.setFlash("Automation is not running", present.ToneWarning)
		return m, nil
	}
	if m.busy != "" {
		return m, nil
	}
	m.busy = "Stopping"
	return m, m.stopCmd()
}

func (m Model) refresh() (tea.Model, tea.Cmd) {
	if m.poller != nil {
		m.poller.Wake()
	}
	m.setFlash("Refreshing", present.ToneInfo)
	cmds := []tea.Cmd{m.logsCmd()}
	if m.tab == TabGenerating {
		cmds = append(cmds, m.generatingCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) clearLogs() (tea.Model, tea.Cmd) {
	if m.busy != "" {
		return m, nil
	}
	m.busy = "Clearing logs"
	return m, m.clearCmd()
}

func (m Model) handleAction(msg actionMsg) Model {
	m.busy = ""
	if msg.err != nil {
		m.logger.Warn("action failed", "action", msg.kind, "err", msg.err)
		m.setFlash(automation.Describe(msg.err), present.ToneDanger)
		m.refreshBody()
		return m
	}

	switch msg.kind {
	case actionStart:
		m.cache.Set(localcache.KeyLastKeyword, msg.keyword)
		m.setFlash(orDefault(msg.text, "Automation started"), present.ToneSuccess)
		m.tab = TabLogs
	case actionStop:
		m.setFlash(orDefault(msg.text, "Automation stopped"), present.ToneSuccess)
	case actionClear:
		m.setFlash(orDefault(msg.text, "Logs cleared"), present.ToneSuccess)
	case actionLogs:
		if msg.added > 0 {
			m.setFlash("Fetched new log entries", present.ToneInfo)
		}
	}
	m.sync()
	return m
}

// sync copies the tracker view into the model and turns pending notices
// into flash messages.
func (m *Model) sync() {
	m.view = m.tracker.View()
	if !m.view.LastUpdated.Equal(m.lastSync) {
		m.lastSync = m.view.LastUpdated
		m.generating = m.view.Generating
	}
	for _, n := range m.tracker.TakeNotices() {
		switch n.Kind {
		case session.NoticeTerminal:
			text := "Automation finished"
			if n.Text != "" {
				text += ": " + n.Text
			}
			m.setFlash(text, present.ToneSuccess)
		case session.NoticeRunStarted:
			m.setFlash("Automation run started", present.ToneInfo)
		}
	}
	if last := len(m.view.Posts) - 1; m.selectedPost > last {
		m.selectedPost = max(last, 0)
	}
	m.refreshBody()
}

func (m *Model) setFlash(text string, tone present.Tone) {
	m.flash = flash{text: text, tone: tone, until: m.now().Add(FlashDuration)}
}

func (m Model) activeFlash() (flash, bool) {
	if m.flash.text == "" || m.now().After(m.flash.until) {
		return flash{}, false
	}
	return m.flash, true
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// Messages

type tickMsg time.Time

type syncMsg struct{}

type actionKind string

const (
	actionStart actionKind = "start"
	actionStop  actionKind = "stop"
	actionClear actionKind = "clear"
	actionLogs  actionKind = "logs"
)

type actionMsg struct {
	kind    actionKind
	keyword string
	text    string
	added   int
	err     error
}

type generatingMsg struct {
	state automation.GeneratingState
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func syncCmd() tea.Cmd {
	return func() tea.Msg { return syncMsg{} }
}

func (m Model) startCmd(keyword string) tea.Cmd {
	ctx, api, tracker, poller := m.ctx, m.api, m.tracker, m.poller
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		res, err := api.Start(ctx, keyword, automation.DefaultPostCount)
		if err == nil {
			tracker.ExpectRun()
			if poller != nil {
				poller.Wake()
			}
		}
		return actionMsg{kind: actionStart, keyword: keyword, text: res.Message, err: err}
	}
}

func (m Model) stopCmd() tea.Cmd {
	ctx, api, poller := m.ctx, m.api, m.poller
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		res, err := api.Stop(ctx)
		if err == nil && poller != nil {
			poller.Wake()
		}
		return actionMsg{kind: actionStop, text: res.Message, err: err}
	}
}

func (m Model) clearCmd() tea.Cmd {
	ctx, api, tracker := m.ctx, m.api, m.tracker
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		res, err := api.ClearLogs(ctx)
		if err == nil {
			tracker.ClearLogs()
		}
		return actionMsg{kind: actionClear, text: res.Message, err: err}
	}
}

func (m Model) logsCmd() tea.Cmd {
	ctx, api, tracker := m.ctx, m.api, m.tracker
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		entries, err := api.GetLogs(ctx)
		if err != nil {
			return actionMsg{kind: actionLogs, err: err}
		}
		return actionMsg{kind: actionLogs, added: len(tracker.MergeLogs(entries))}
	}
}

func (m Model) generatingCmd() tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		state, err := api.GetGeneratingPost(ctx)
		return generatingMsg{state: state, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
