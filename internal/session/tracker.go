package session

import (
	"slices"
	"sync"
	"time"

	"github.com/postpilot/postpilot/internal/automation"
	"github.com/postpilot/postpilot/internal/present"
)

// Ticket orders polls by issue time. Results carrying an older ticket than
// one already applied are discarded.
type Ticket uint64

// View is the reconciled session state handed to the UI.
type View struct {
	HasStatus       bool
	Running         bool
	Progress        int
	Status          string
	CurrentStep     int
	TotalSteps      int
	StepDescription string
	Generating      automation.GeneratingState
	Logs            []automation.LogEntry
	Posts           []automation.GeneratedPost

	RunID       int  // increments each time a run is observed starting
	Terminal    bool // the current run has been observed to stop
	FinalStatus string

	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the backend has been unreachable for multiple polls.
func (v View) IsOffline() bool {
	return v.ConsecutiveFailures >= 2
}

// Delta summarises what one Apply changed.
type Delta struct {
	Stale           bool
	RunStarted      bool
	Terminal        bool
	FinalStatus     string
	Progress        int
	ProgressChanged bool
	NewLogs         []automation.LogEntry
}

// NoticeKind classifies a Notice.
type NoticeKind int

const (
	NoticeTerminal NoticeKind = iota
	NoticeRunStarted
)

// Notice is a one-shot event for the UI.
type Notice struct {
	Kind NoticeKind
	Text string
	At   time.Time
}

// Tracker reconciles polled snapshots into a View. It is safe for
// concurrent use.
type Tracker struct {
	mu           sync.Mutex
	view         View
	issued       Ticket
	applied      Ticket
	postsApplied Ticket
	seen         map[automation.LogKey]struct{}
	notices      []Notice
	now          func() time.Time

	expectRun   bool
	expectAfter Ticket
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		seen: make(map[automation.LogKey]struct{}),
		now:  time.Now,
	}
}

// Begin issues the ticket for a poll about to start.
func (t *Tracker) Begin() Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.issued++
	return t.issued
}

// Apply merges snap, taken under ticket, into the view.
func (t *Tracker) Apply(ticket Ticket, snap automation.StatusSnapshot) Delta {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ticket < t.applied {
		return Delta{Stale: true}
	}
	t.applied = ticket

	var delta Delta
	prev := t.view
	v := &t.view

	freshRun := t.expectRun && ticket > t.expectAfter
	computed := present.CalculateProgress(snap.CurrentStep, snap.TotalSteps)
	switch {
	case snap.IsRunning && (!prev.HasStatus || !prev.Running || freshRun):
		t.expectRun = false
		v.RunID++
		v.Terminal = false
		v.FinalStatus = ""
		v.Progress = 0
		if snap.TotalSteps > 0 {
			v.Progress = computed
		}
		delta.RunStarted = true
		t.notices = append(t.notices, Notice{Kind: NoticeRunStarted, Text: snap.Status, At: t.now()})
	case snap.IsRunning:
		if snap.TotalSteps > 0 && computed > v.Progress {
			v.Progress = computed
		}
	case prev.HasStatus && prev.Running:
		if snap.TotalSteps > 0 && computed > v.Progress {
			v.Progress = computed
		}
		v.Terminal = true
		v.FinalStatus = snap.Status
		delta.Terminal = true
		delta.FinalStatus = snap.Status
		t.notices = append(t.notices, Notice{Kind: NoticeTerminal, Text: snap.Status, At: t.now()})
	case freshRun:
		// The accepted run ended before any poll saw it running.
		t.expectRun = false
		v.RunID++
		v.Progress = 0
		if snap.TotalSteps > 0 {
			v.Progress = computed
		}
		v.Terminal = true
		v.FinalStatus = snap.Status
		delta.Terminal = true
		delta.FinalStatus = snap.Status
		t.notices = append(t.notices, Notice{Kind: NoticeTerminal, Text: snap.Status, At: t.now()})
	case !prev.HasStatus:
		if snap.TotalSteps > 0 {
			v.Progress = computed
		}
	default:
		// Stopped and already known to be stopped: progress stays frozen.
	}

	if !snap.IsRunning || delta.RunStarted || snap.CurrentStep > v.CurrentStep {
		v.CurrentStep = snap.CurrentStep
	}
	v.TotalSteps = snap.TotalSteps
	v.HasStatus = true
	v.Running = snap.IsRunning
	v.Status = snap.Status
	v.StepDescription = snap.StepDescription
	v.Generating = snap.CurrentGeneratingPost

	delta.NewLogs = t.appendLogs(snap.Logs)
	delta.Progress = v.Progress
	delta.ProgressChanged = v.Progress != prev.Progress

	v.LastError = nil
	v.ConsecutiveFailures = 0
	v.LastUpdated = t.now()
	return delta
}

// Fail records a failed poll. The last-known view is kept.
func (t *Tracker) Fail(ticket Ticket, err error) {
	if err == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if ticket < t.applied {
		return
	}
	t.view.LastError = err
	t.view.LastUpdated = t.now()
	t.view.ConsecutiveFailures++
}

// MergeLogs appends entries not seen before and returns them.
func (t *Tracker) MergeLogs(entries []automation.LogEntry) []automation.LogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.appendLogs(entries)
}

// ClearLogs empties the visible log. Keys are retained so a stale snapshot
// cannot bring cleared entries back.
func (t *Tracker) ClearLogs() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.view.Logs = nil
}

// SetPosts replaces the post list fetched under ticket, newest first. A list
// older than one already applied is discarded and SetPosts returns false.
// Upload state never regresses for a post already seen as uploaded.
func (t *Tracker) SetPosts(ticket Ticket, posts []automation.GeneratedPost) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ticket < t.postsApplied {
		return false
	}
	t.postsApplied = ticket

	uploaded := make(map[string]automation.GeneratedPost, len(t.view.Posts))
	for _, p := range t.view.Posts {
		if p.Uploaded {
			uploaded[p.ID] = p
		}
	}
	next := make([]automation.GeneratedPost, len(posts))
	copy(next, posts)
	for i := range next {
		if old, ok := uploaded[next[i].ID]; ok && !next[i].Uploaded {
			next[i].Uploaded = true
			if next[i].BlogURL == "" {
				next[i].BlogURL = old.BlogURL
			}
		}
	}
	slices.SortStableFunc(next, func(a, b automation.GeneratedPost) int {
		return b.ParsedCreatedAt().Compare(a.ParsedCreatedAt())
	})
	t.view.Posts = next
	return true
}

// ExpectRun marks a start as accepted by the backend. The next running
// snapshot polled after this call opens a new run even if the previous run
// was never seen to stop.
func (t *Tracker) ExpectRun() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expectRun = true
	t.expectAfter = t.issued
}

// TakeNotices drains pending notices.
func (t *Tracker) TakeNotices() []Notice {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.notices
	t.notices = nil
	return out
}

// View returns a copy of the current view.
func (t *Tracker) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()

	v := t.view
	v.Logs = cloneSlice(t.view.Logs)
	v.Posts = cloneSlice(t.view.Posts)
	if t.view.Generating.Post != nil {
		post := *t.view.Generating.Post
		v.Generating.Post = &post
	}
	return v
}

func (t *Tracker) appendLogs(entries []automation.LogEntry) []automation.LogEntry {
	var added []automation.LogEntry
	for _, e := range entries {
		key := e.Key()
		if _, ok := t.seen[key]; ok {
			continue
		}
		t.seen[key] = struct{}{}
		t.view.Logs = append(t.view.Logs, e)
		added = append(added, e)
	}
	return added
}

func cloneSlice[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
