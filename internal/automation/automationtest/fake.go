// Package automationtest provides an in-memory automation.API for tests.
package automationtest

import (
	"context"
	"errors"
	"sync"

	"github.com/postpilot/postpilot/internal/automation"
)

var _ automation.API = (*Fake)(nil)

// Fake serves scripted responses. Statuses are returned in order; the last
// one repeats. Any Err field set makes the matching call fail.
type Fake struct {
	mu sync.Mutex

	Statuses  []automation.StatusSnapshot
	StatusErr error
	// StatusHook, when set, runs before GetStatus answers. It may block on ctx.
	StatusHook func(ctx context.Context) error

	Posts      []automation.GeneratedPost
	PostsErr   error
	Logs       []automation.LogEntry
	Generating automation.GeneratingState
	Creds      automation.CredentialsResult

	StartResult automation.CommandResult
	StartErr    error
	StopResult  automation.CommandResult
	ActionErr   error

	calls       map[string]int
	statusIndex int

	StartedWith []string
	SavedIDs    []string
	Generated   []string
	Uploaded    []string
}

func (f *Fake) record(name string) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

// Calls reports how many times the named method ran.
func (f *Fake) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// PushStatus appends a scripted status.
func (f *Fake) PushStatus(snap automation.StatusSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Statuses = append(f.Statuses, snap)
}

func (f *Fake) Start(_ context.Context, keyword string, _ int) (automation.CommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Start")
	f.StartedWith = append(f.StartedWith, keyword)
	if f.StartErr != nil {
		return f.StartResult, f.StartErr
	}
	res := f.StartResult
	if !res.Success && res.Message == "" {
		res = automation.CommandResult{Success: true, Message: "started"}
	}
	return res, nil
}

func (f *Fake) Stop(context.Context) (automation.CommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Stop")
	if f.ActionErr != nil {
		return automation.CommandResult{}, f.ActionErr
	}
	res := f.StopResult
	if res.Message == "" {
		res = automation.CommandResult{Success: true, Message: "stopped"}
	}
	return res, nil
}

func (f *Fake) GetStatus(ctx context.Context) (*automation.StatusSnapshot, error) {
	f.mu.Lock()
	hook := f.StatusHook
	f.mu.Unlock()
	if hook != nil {
		if err := hook(ctx); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetStatus")
	if f.StatusErr != nil {
		return nil, f.StatusErr
	}
	if len(f.Statuses) == 0 {
		return nil, errors.New("no scripted status")
	}
	snap := f.Statuses[f.statusIndex]
	if f.statusIndex < len(f.Statuses)-1 {
		f.statusIndex++
	}
	return &snap, nil
}

func (f *Fake) GetLogs(context.Context) ([]automation.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetLogs")
	return append([]automation.LogEntry(nil), f.Logs...), nil
}

func (f *Fake) ClearLogs(context.Context) (automation.ClearResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ClearLogs")
	if f.ActionErr != nil {
		return automation.ClearResult{}, f.ActionErr
	}
	f.Logs = nil
	return automation.ClearResult{Message: "cleared"}, nil
}

func (f *Fake) GetGeneratedPosts(context.Context) ([]automation.GeneratedPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetGeneratedPosts")
	if f.PostsErr != nil {
		return nil, f.PostsErr
	}
	return append([]automation.GeneratedPost(nil), f.Posts...), nil
}

func (f *Fake) GetGeneratingPost(context.Context) (automation.GeneratingState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetGeneratingPost")
	return f.Generating, nil
}

func (f *Fake) SaveCredentials(_ context.Context, naverID, _ string) (automation.CommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SaveCredentials")
	if f.ActionErr != nil {
		return automation.CommandResult{}, f.ActionErr
	}
	f.SavedIDs = append(f.SavedIDs, naverID)
	return automation.CommandResult{Success: true, Message: "saved"}, nil
}

func (f *Fake) GetCredentials(context.Context) (automation.CredentialsResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetCredentials")
	return f.Creds, nil
}

func (f *Fake) GenerateOnce(_ context.Context, keyword string) (automation.ActionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GenerateOnce")
	if f.ActionErr != nil {
		return automation.ActionResult{}, f.ActionErr
	}
	f.Generated = append(f.Generated, keyword)
	return automation.ActionResult{Success: true}, nil
}

func (f *Fake) UploadOnce(_ context.Context, title, _ string) (automation.ActionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UploadOnce")
	if f.ActionErr != nil {
		return automation.ActionResult{}, f.ActionErr
	}
	f.Uploaded = append(f.Uploaded, title)
	return automation.ActionResult{Success: true}, nil
}
