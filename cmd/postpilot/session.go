package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/postpilot/postpilot/internal/app"
	"github.com/postpilot/postpilot/internal/automation"
	"github.com/postpilot/postpilot/internal/localcache"
	"github.com/postpilot/postpilot/internal/present"
	"github.com/postpilot/postpilot/internal/session"
)

type statusOutput struct {
	Running         bool   `json:"running" yaml:"running"`
	Status          string `json:"status" yaml:"status"`
	Progress        int    `json:"progress" yaml:"progress"`
	CurrentStep     int    `json:"currentStep" yaml:"current_step"`
	TotalSteps      int    `json:"totalSteps" yaml:"total_steps"`
	StepDescription string `json:"stepDescription,omitempty" yaml:"step_description,omitempty"`
	Generating      string `json:"generating,omitempty" yaml:"generating,omitempty"`
	LogCount        int    `json:"logCount" yaml:"log_count"`
}

type logOutput struct {
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Level     string `json:"level" yaml:"level"`
	Message   string `json:"message" yaml:"message"`
}

type generatingOutput struct {
	State        string `json:"state" yaml:"state"`
	Keyword      string `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	Status       string `json:"status,omitempty" yaml:"status,omitempty"`
	StartedAt    string `json:"startedAt,omitempty" yaml:"started_at,omitempty"`
	IsGenerating bool   `json:"isGenerating,omitempty" yaml:"is_generating,omitempty"`
	Raw          string `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// TUI opens the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Present() {
		return fmt.Errorf("unknown command %q", cmd.Args().First())
	}
	return app.Run(ctx, app.Options{ConfigPath: cmd.String("config")})
}

// Start begins a run. Without --keyword the last keyword used is reused.
func (r *Runner) Start(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(cmd); err != nil {
		return err
	}

	keyword := strings.TrimSpace(cmd.String("keyword"))
	if keyword == "" {
		keyword = r.cache.GetOr(localcache.KeyLastKeyword, "")
	}
	if keyword == "" {
		return fmt.Errorf("keyword is required (use --keyword)")
	}

	result, err := r.api.Start(ctx, keyword, int(cmd.Int("count")))
	if err != nil {
		return r.fail("start", err)
	}
	r.cache.Set(localcache.KeyLastKeyword, keyword)
	r.log().Info("automation started", "keyword", keyword, "task", result.TaskID)

	if err := r.writeLine("✓ %s", orDefault(result.Message, "Automation started")); err != nil {
		return err
	}
	if result.TaskID != "" {
		return r.writeLine("  Task: %s", result.TaskID)
	}
	return nil
}

// Stop asks the backend to end the current run.
func (r *Runner) Stop(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(cmd); err != nil {
		return err
	}
	result, err := r.api.Stop(ctx)
	if err != nil {
		return r.fail("stop", err)
	}
	return r.writeLine("✓ %s", orDefault(result.Message, "Automation stopped"))
}

// Status prints one reconciled status poll, or follows the run with --watch.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(cmd); err != nil {
		return err
	}
	if cmd.Bool("watch") {
		return r.watch(ctx, cmd.Duration("interval"))
	}

	ticket := r.tracker.Begin()
	snap, err := r.api.GetStatus(ctx)
	if err != nil {
		r.tracker.Fail(ticket, err)
		return r.fail("status", err)
	}
	r.tracker.Apply(ticket, *snap)
	view := r.tracker.View()

	out := newStatusOutput(view)
	return r.write(cmd.String("format"), out, func() error {
		return r.writeStatus(out)
	})
}

func newStatusOutput(view session.View) statusOutput {
	out := statusOutput{
		Running:         view.Running,
		Status:          view.Status,
		Progress:        view.Progress,
		CurrentStep:     view.CurrentStep,
		TotalSteps:      view.TotalSteps,
		StepDescription: view.StepDescription,
		LogCount:        len(view.Logs),
	}
	if view.Generating.Active() && view.Generating.Post != nil {
		out.Generating = view.Generating.Post.Keyword
	}
	return out
}

func (r *Runner) writeStatus(out statusOutput) error {
	state := "idle"
	if out.Running {
		state = "running"
	}
	lines := []string{
		fmt.Sprintf("%-11s %s", "Automation", state),
		fmt.Sprintf("%-11s %s", "Status", orDefault(out.Status, "-")),
		fmt.Sprintf("%-11s %d/%d (%d%%)", "Step", out.CurrentStep, out.TotalSteps, out.Progress),
	}
	if out.StepDescription != "" {
		lines = append(lines, fmt.Sprintf("%-11s %s", "Doing", out.StepDescription))
	}
	if out.Generating != "" {
		lines = append(lines, fmt.Sprintf("%-11s %s", "Generating", out.Generating))
	}
	lines = append(lines, fmt.Sprintf("%-11s %d", "Logs", out.LogCount))
	return r.writeLine("%s", strings.Join(lines, "\n"))
}

// watch polls until the run ends, printing progress changes, new log lines
// and notices as they arrive. A failed poll is reported and retried.
func (r *Runner) watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 && r.config != nil {
		interval = r.config.PollInterval
	}
	poller := app.NewPoller(r.api, r.tracker, interval, r.log().WithPrefix("poller"))
	if interval <= 0 {
		interval = time.Second
	}

	printed := 0
	lastLine := ""
	for {
		running, err := poller.Poll(ctx)
		if ctx.Err() != nil {
			return nil
		}
		view := r.tracker.View()

		if err != nil && !errors.Is(err, context.Canceled) {
			prefix := "poll failed"
			if view.IsOffline() {
				prefix = "offline"
			}
			if werr := r.writeLine("! %s: %s, retrying", prefix, automation.Describe(err)); werr != nil {
				return werr
			}
		} else if line := progressLine(view); line != lastLine {
			if werr := r.writeLine("%s", line); werr != nil {
				return werr
			}
			lastLine = line
		}

		if printed > len(view.Logs) {
			printed = 0
		}
		for _, entry := range view.Logs[printed:] {
			if werr := r.writeLine("  %s", formatLogLine(entry)); werr != nil {
				return werr
			}
		}
		printed = len(view.Logs)

		for _, notice := range r.tracker.TakeNotices() {
			if notice.Kind != session.NoticeTerminal {
				continue
			}
			if werr := r.writeLine("✓ Automation finished: %s", orDefault(notice.Text, "done")); werr != nil {
				return werr
			}
		}

		if err == nil && !running {
			if !view.Terminal {
				return r.writeLine("No automation is running")
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

func progressLine(view session.View) string {
	line := fmt.Sprintf("[%3d%%] step %d/%d", view.Progress, view.CurrentStep, view.TotalSteps)
	if view.Status != "" {
		line += " " + view.Status
	}
	if view.StepDescription != "" {
		line += ": " + view.StepDescription
	}
	return line
}

// Logs prints the backend log, or clears it with --clear.
func (r *Runner) Logs(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(cmd); err != nil {
		return err
	}

	if cmd.Bool("clear") {
		result, err := r.api.ClearLogs(ctx)
		if err != nil {
			return r.fail("clear logs", err)
		}
		r.tracker.ClearLogs()
		return r.writeLine("✓ %s", orDefault(result.Message, "Logs cleared"))
	}

	entries, err := r.api.GetLogs(ctx)
	if err != nil {
		return r.fail("logs", err)
	}
	entries = r.tracker.MergeLogs(entries)

	out := make([]logOutput, 0, len(entries))
	for _, e := range entries {
		out = append(out, logOutput{Timestamp: e.Timestamp, Level: string(e.Level), Message: e.Message})
	}
	return r.write(cmd.String("format"), out, func() error {
		if len(entries) == 0 {
			return r.writeLine("No log entries")
		}
		for _, e := range entries {
			if err := r.writeLine("%s", formatLogLine(e)); err != nil {
				return err
			}
		}
		return nil
	})
}

func formatLogLine(e automation.LogEntry) string {
	return fmt.Sprintf("%s %-7s %s",
		present.FormatDate(e.Timestamp),
		strings.ToUpper(string(automation.ParseLogLevel(string(e.Level)))),
		e.Message)
}

// Generating shows the in-flight post.
func (r *Runner) Generating(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(cmd); err != nil {
		return err
	}
	state, err := r.api.GetGeneratingPost(ctx)
	if err != nil {
		return r.fail("generating", err)
	}

	out := generatingOutput{State: state.Kind.String()}
	switch {
	case state.Active() && state.Post != nil:
		out.Keyword = state.Post.Keyword
		out.Status = state.Post.Status
		out.StartedAt = state.Post.StartedAt
		out.IsGenerating = state.Post.IsGenerating
	case state.Kind == automation.GeneratingUnknown:
		out.Raw = string(state.Raw)
	}

	return r.write(cmd.String("format"), out, func() error {
		switch state.Kind {
		case automation.GeneratingActive:
			return r.writeLine("%-8s %s\n%-8s %s\n%-8s %s", "Keyword", out.Keyword,
				"Status", orDefault(out.Status, "generating"),
				"Started", present.FormatDate(out.StartedAt))
		case automation.GeneratingUnknown:
			return r.writeLine("Unrecognised generating state: %s", present.TruncateText(out.Raw, 200))
		default:
			return r.writeLine("Nothing is being generated")
		}
	})
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
