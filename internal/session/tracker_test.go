package session

import (
	"errors"
	"testing"
	"time"

	"github.com/postpilot/postpilot/internal/automation"
)

func snapshot(running bool, step, total int, status string, logs ...automation.LogEntry) automation.StatusSnapshot {
	return automation.StatusSnapshot{
		IsRunning:   running,
		CurrentStep: step,
		TotalSteps:  total,
		Status:      status,
		Logs:        logs,
	}
}

func entry(ts, msg string) automation.LogEntry {
	return automation.LogEntry{Timestamp: ts, Message: msg, Level: automation.LevelInfo}
}

func applyNext(tr *Tracker, snap automation.StatusSnapshot) Delta {
	return tr.Apply(tr.Begin(), snap)
}

func TestTracker_StartScenarioProgress(t *testing.T) {
	tr := NewTracker()
	tr.ExpectRun()

	d := applyNext(tr, snapshot(true, 0, 5, "running"))
	if !d.RunStarted || d.Progress != 0 {
		t.Fatalf("first delta = %#v, want run started at 0", d)
	}

	d = applyNext(tr, snapshot(true, 3, 5, "running"))
	if d.Progress != 60 || !d.ProgressChanged {
		t.Fatalf("step 3 delta = %#v, want progress 60", d)
	}

	d = applyNext(tr, snapshot(false, 5, 5, "done"))
	if !d.Terminal || d.FinalStatus != "done" || d.Progress != 100 {
		t.Fatalf("terminal delta = %#v, want terminal done at 100", d)
	}

	d = applyNext(tr, snapshot(false, 0, 0, "idle"))
	if d.Terminal || d.Progress != 100 {
		t.Fatalf("after terminal delta = %#v, want frozen progress 100 and no terminal", d)
	}
	v := tr.View()
	if v.Progress != 100 || !v.Terminal || v.FinalStatus != "done" || v.Running {
		t.Fatalf("view = %#v, want frozen 100, terminal done", v)
	}
}

func TestTracker_ProgressNeverRegressesWithinRun(t *testing.T) {
	tr := NewTracker()
	applyNext(tr, snapshot(true, 4, 5, "running"))
	d := applyNext(tr, snapshot(true, 2, 5, "running"))
	if d.Progress != 80 {
		t.Fatalf("Progress = %d, want 80 kept after backend regression", d.Progress)
	}
	if v := tr.View(); v.CurrentStep != 4 {
		t.Fatalf("CurrentStep = %d, want 4", v.CurrentStep)
	}

	d = applyNext(tr, snapshot(true, 0, 0, "running"))
	if d.Progress != 80 {
		t.Fatalf("Progress with unknown total = %d, want 80", d.Progress)
	}
}

func TestTracker_OutOfOrderSnapshotDiscarded(t *testing.T) {
	tr := NewTracker()
	older := tr.Begin()
	newer := tr.Begin()

	tr.Apply(newer, snapshot(true, 3, 5, "running", entry("t1", "a"), entry("t2", "b")))
	d := tr.Apply(older, snapshot(true, 1, 5, "running", entry("t1", "a")))
	if !d.Stale {
		t.Fatalf("older apply delta = %#v, want stale", d)
	}
	v := tr.View()
	if v.Progress != 60 || v.CurrentStep != 3 || len(v.Logs) != 2 {
		t.Fatalf("view = %#v, want progress 60 step 3 and 2 logs", v)
	}

	tr.Fail(older, errors.New("late failure"))
	if v := tr.View(); v.LastError != nil || v.ConsecutiveFailures != 0 {
		t.Fatalf("stale failure recorded: %#v", v)
	}
}

func TestTracker_TerminalNotifiedOnce(t *testing.T) {
	tr := NewTracker()
	applyNext(tr, snapshot(true, 1, 2, "running"))
	_ = tr.TakeNotices()

	terminals := 0
	for i := 0; i < 3; i++ {
		if d := applyNext(tr, snapshot(false, 2, 2, "finished")); d.Terminal {
			terminals++
		}
	}
	if terminals != 1 {
		t.Fatalf("terminal deltas = %d, want 1", terminals)
	}
	notices := tr.TakeNotices()
	if len(notices) != 1 || notices[0].Kind != NoticeTerminal || notices[0].Text != "finished" {
		t.Fatalf("notices = %#v, want one terminal notice", notices)
	}
	if again := tr.TakeNotices(); len(again) != 0 {
		t.Fatalf("notices after drain = %#v, want none", again)
	}
}

func TestTracker_NewRunAfterTerminalResetsProgress(t *testing.T) {
	tr := NewTracker()
	applyNext(tr, snapshot(true, 5, 5, "running"))
	applyNext(tr, snapshot(false, 5, 5, "done"))

	d := applyNext(tr, snapshot(true, 1, 4, "running"))
	if !d.RunStarted || d.Progress != 25 {
		t.Fatalf("delta = %#v, want new run at 25", d)
	}
	v := tr.View()
	if v.RunID != 2 || v.Terminal {
		t.Fatalf("view = %#v, want run 2 not terminal", v)
	}
}

func TestTracker_ExpectRunOpensRunWithoutObservedStop(t *testing.T) {
	tr := NewTracker()
	applyNext(tr, snapshot(true, 4, 5, "running"))

	inflight := tr.Begin()
	tr.ExpectRun()

	// A poll issued before the start still reflects the old run.
	if d := tr.Apply(inflight, snapshot(true, 4, 5, "running")); d.RunStarted {
		t.Fatalf("pre-start poll opened a run: %#v", d)
	}
	d := applyNext(tr, snapshot(true, 1, 5, "running"))
	if !d.RunStarted || d.Progress != 20 {
		t.Fatalf("delta = %#v, want fresh run at 20", d)
	}
}

func TestTracker_LogsDeduplicatedAndOrdered(t *testing.T) {
	tr := NewTracker()
	first := []automation.LogEntry{entry("t1", "a"), entry("t2", "b")}
	applyNext(tr, snapshot(true, 0, 3, "running", first...))
	d := applyNext(tr, snapshot(true, 0, 3, "running", first...))
	if len(d.NewLogs) != 0 {
		t.Fatalf("NewLogs = %#v, want none on resend", d.NewLogs)
	}

	d = applyNext(tr, snapshot(true, 1, 3, "running", entry("t1", "a"), entry("t2", "b"), entry("t2", "c"), entry("t3", "a")))
	if len(d.NewLogs) != 2 {
		t.Fatalf("NewLogs = %#v, want 2 new entries", d.NewLogs)
	}

	added := tr.MergeLogs([]automation.LogEntry{entry("t2", "c"), entry("t4", "d")})
	if len(added) != 1 || added[0].Message != "d" {
		t.Fatalf("MergeLogs added = %#v, want only d", added)
	}

	got := tr.View().Logs
	want := []string{"a", "b", "c", "a", "d"}
	if len(got) != len(want) {
		t.Fatalf("logs = %#v, want %v", got, want)
	}
	for i, msg := range want {
		if got[i].Message != msg {
			t.Fatalf("logs[%d] = %q, want %q", i, got[i].Message, msg)
		}
	}
}

func TestTracker_ClearLogsDoesNotResurrect(t *testing.T) {
	tr := NewTracker()
	applyNext(tr, snapshot(true, 0, 3, "running", entry("t1", "a")))
	tr.ClearLogs()
	applyNext(tr, snapshot(true, 0, 3, "running", entry("t1", "a"), entry("t2", "b")))

	logs := tr.View().Logs
	if len(logs) != 1 || logs[0].Message != "b" {
		t.Fatalf("logs = %#v, want only b", logs)
	}
}

func TestTracker_GeneratingOverwritten(t *testing.T) {
	tr := NewTracker()
	snap := snapshot(true, 1, 3, "running")
	snap.CurrentGeneratingPost = automation.GeneratingState{
		Kind: automation.GeneratingActive,
		Post: &automation.GeneratingPost{Keyword: "coffee", IsGenerating: true},
	}
	applyNext(tr, snap)
	if v := tr.View(); !v.Generating.Active() {
		t.Fatalf("Generating = %#v, want active", v.Generating)
	}

	applyNext(tr, snapshot(true, 2, 3, "running"))
	if v := tr.View(); v.Generating.Kind != automation.GeneratingNone {
		t.Fatalf("Generating = %#v, want none after overwrite", v.Generating)
	}
}

func TestTracker_FailKeepsLastView(t *testing.T) {
	tr := NewTracker()
	applyNext(tr, snapshot(true, 2, 4, "running"))
	before := tr.View()

	tr.Fail(tr.Begin(), errors.New("boom"))
	tr.Fail(tr.Begin(), errors.New("boom again"))

	v := tr.View()
	if v.Progress != before.Progress || v.Status != before.Status {
		t.Fatalf("view changed on failure: %#v", v)
	}
	if v.LastError == nil || v.LastError.Error() != "boom again" {
		t.Fatalf("LastError = %v, want boom again", v.LastError)
	}
	if !v.IsOffline() {
		t.Fatalf("IsOffline() = false after 2 failures")
	}

	applyNext(tr, snapshot(true, 3, 4, "running"))
	if v := tr.View(); v.ConsecutiveFailures != 0 || v.LastError != nil {
		t.Fatalf("failures not reset: %#v", v)
	}
}

func TestTracker_SetPostsUploadNeverRegresses(t *testing.T) {
	tr := NewTracker()
	tr.SetPosts(tr.Begin(), []automation.GeneratedPost{{ID: "p1", Uploaded: true, BlogURL: "https://blog/p1"}})
	tr.SetPosts(tr.Begin(), []automation.GeneratedPost{{ID: "p1"}, {ID: "p2"}})

	posts := tr.View().Posts
	if len(posts) != 2 {
		t.Fatalf("posts = %#v, want 2", posts)
	}
	if !posts[0].Uploaded || posts[0].BlogURL != "https://blog/p1" {
		t.Fatalf("posts[0] = %#v, want upload state kept", posts[0])
	}
	if posts[1].Uploaded {
		t.Fatalf("posts[1] = %#v, want not uploaded", posts[1])
	}
}

func TestTracker_ViewIsACopy(t *testing.T) {
	tr := NewTracker()
	tr.now = func() time.Time { return time.Unix(100, 0) }
	applyNext(tr, snapshot(true, 1, 2, "running", entry("t1", "a")))
	tr.Fail(tr.Begin(), errors.New("boom"))

	v := tr.View()
	v.Logs[0].Message = "mutated"
	again := tr.View()
	if again.Logs[0].Message != "a" {
		t.Fatalf("View should clone logs; got %q", again.Logs[0].Message)
	}
	if again.LastError == nil || again.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", again.LastError)
	}
	if !again.LastUpdated.Equal(time.Unix(100, 0)) {
		t.Fatalf("LastUpdated = %v, want injected clock", again.LastUpdated)
	}
}

func TestTracker_FirstStoppedSnapshotComputesProgress(t *testing.T) {
	tr := NewTracker()
	delta := applyNext(tr, snapshot(false, 5, 5, "completed"))

	v := tr.View()
	if v.Progress != 100 || v.CurrentStep != 5 {
		t.Fatalf("Progress = %d step %d, want 100 at step 5", v.Progress, v.CurrentStep)
	}
	if delta.Terminal || v.Terminal || len(tr.TakeNotices()) != 0 {
		t.Fatalf("a run never observed must not produce a terminal transition")
	}

	applyNext(tr, snapshot(false, 1, 5, "idle"))
	if got := tr.View().Progress; got != 100 {
		t.Fatalf("Progress = %d after second stopped snapshot, want frozen 100", got)
	}
}

func TestTracker_ExpectedRunFinishedBeforeFirstPoll(t *testing.T) {
	tr := NewTracker()
	applyNext(tr, snapshot(false, 0, 0, "idle"))
	tr.ExpectRun()

	delta := applyNext(tr, snapshot(false, 5, 5, "completed"))
	if !delta.Terminal || delta.FinalStatus != "completed" {
		t.Fatalf("delta = %#v, want terminal completed", delta)
	}
	v := tr.View()
	if !v.Terminal || v.Progress != 100 || v.RunID != 1 {
		t.Fatalf("view = terminal %v progress %d run %d, want true 100 1", v.Terminal, v.Progress, v.RunID)
	}
	notices := tr.TakeNotices()
	if len(notices) != 1 || notices[0].Kind != NoticeTerminal || notices[0].Text != "completed" {
		t.Fatalf("notices = %#v, want one terminal notice", notices)
	}

	if d := applyNext(tr, snapshot(false, 5, 5, "completed")); d.Terminal {
		t.Fatalf("second stopped snapshot reported terminal again")
	}
	if n := tr.TakeNotices(); len(n) != 0 {
		t.Fatalf("notices = %#v, want none", n)
	}
}

func TestTracker_SetPostsDiscardsOlderTicket(t *testing.T) {
	tr := NewTracker()
	older := tr.Begin()
	newer := tr.Begin()

	if !tr.SetPosts(newer, []automation.GeneratedPost{{ID: "new"}}) {
		t.Fatalf("SetPosts(newer) = false, want applied")
	}
	if tr.SetPosts(older, []automation.GeneratedPost{{ID: "old"}}) {
		t.Fatalf("SetPosts(older) = true, want discarded")
	}
	if posts := tr.View().Posts; len(posts) != 1 || posts[0].ID != "new" {
		t.Fatalf("posts = %#v, want [new]", posts)
	}
}

func TestTracker_SetPostsNewestFirst(t *testing.T) {
	tr := NewTracker()
	tr.SetPosts(tr.Begin(), []automation.GeneratedPost{
		{ID: "undated"},
		{ID: "old", CreatedAt: "2024-05-01T10:00:00Z"},
		{ID: "new", CreatedAt: "2024-05-02T10:00:00Z"},
	})

	var ids []string
	for _, p := range tr.View().Posts {
		ids = append(ids, p.ID)
	}
	if len(ids) != 3 || ids[0] != "new" || ids[1] != "old" || ids[2] != "undated" {
		t.Fatalf("order = %v, want [new old undated]", ids)
	}
}
