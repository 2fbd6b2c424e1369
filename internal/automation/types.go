package automation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/postpilot/postpilot/internal/present"
)

// LogLevel is the severity attached to a backend log line.
type LogLevel string

const (
	LevelError   LogLevel = "error"
	LevelWarning LogLevel = "warning"
	LevelInfo    LogLevel = "info"
	LevelSuccess LogLevel = "success"
)

// UnmarshalJSON folds the backend's level strings into the closed set.
func (l *LogLevel) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	*l = ParseLogLevel(raw)
	return nil
}

// ParseLogLevel normalises raw; unknown values become LevelInfo.
func ParseLogLevel(raw string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "error", "err":
		return LevelError
	case "warning", "warn":
		return LevelWarning
	case "success":
		return LevelSuccess
	default:
		return LevelInfo
	}
}

// LogEntry is one backend log line.
type LogEntry struct {
	Timestamp string   `json:"timestamp"`
	Message   string   `json:"message"`
	Level     LogLevel `json:"level"`
}

// LogKey identifies a log entry for de-duplication.
type LogKey struct {
	Timestamp string
	Message   string
}

// Key returns the de-duplication key for the entry.
func (e LogEntry) Key() LogKey {
	return LogKey{Timestamp: e.Timestamp, Message: e.Message}
}

// GeneratingPost describes the post currently being generated.
type GeneratingPost struct {
	Keyword      string `json:"keyword"`
	StartedAt    string `json:"startedAt"`
	Status       string `json:"status"`
	IsGenerating bool   `json:"isGenerating"`
}

// GeneratingKind discriminates GeneratingState.
type GeneratingKind int

const (
	GeneratingNone GeneratingKind = iota
	GeneratingActive
	GeneratingUnknown
)

func (k GeneratingKind) String() string {
	switch k {
	case GeneratingActive:
		return "active"
	case GeneratingUnknown:
		return "unknown"
	default:
		return "none"
	}
}

// GeneratingState is the in-flight generation as reported by the backend:
// nothing, a recognised post, or an object of unrecognised shape.
type GeneratingState struct {
	Kind GeneratingKind
	Post *GeneratingPost
	Raw  json.RawMessage
}

// Active reports whether a recognised generation is in flight.
func (g GeneratingState) Active() bool {
	return g.Kind == GeneratingActive && g.Post != nil
}

// UnmarshalJSON decodes null, a post object, or an unknown object. Any other
// JSON value is rejected.
func (g *GeneratingState) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*g = GeneratingState{Kind: GeneratingNone}
		return nil
	}
	if trimmed[0] != '{' {
		return fmt.Errorf("generating post: expected object or null, got %s", preview(trimmed))
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return fmt.Errorf("generating post: %w", err)
	}
	raw := append(json.RawMessage(nil), trimmed...)
	keyword, ok := fields["keyword"]
	if !ok || len(keyword) == 0 || keyword[0] != '"' {
		*g = GeneratingState{Kind: GeneratingUnknown, Raw: raw}
		return nil
	}
	var post GeneratingPost
	if err := json.Unmarshal(trimmed, &post); err != nil {
		return fmt.Errorf("generating post: %w", err)
	}
	*g = GeneratingState{Kind: GeneratingActive, Post: &post, Raw: raw}
	return nil
}

// MarshalJSON writes the state back in wire form.
func (g GeneratingState) MarshalJSON() ([]byte, error) {
	switch g.Kind {
	case GeneratingActive:
		if g.Post != nil {
			return json.Marshal(g.Post)
		}
	case GeneratingUnknown:
		if len(g.Raw) > 0 {
			return g.Raw, nil
		}
	}
	return []byte("null"), nil
}

// StatusSnapshot is one poll of /automation/status.
type StatusSnapshot struct {
	IsRunning             bool            `json:"isRunning"`
	ReportedProgress      float64         `json:"progress"`
	Status                string          `json:"status"`
	CurrentStep           int             `json:"currentStep"`
	TotalSteps            int             `json:"totalSteps"`
	StepDescription       string          `json:"stepDescription"`
	CurrentGeneratingPost GeneratingState `json:"currentGeneratingPost"`
	Logs                  []LogEntry      `json:"logs"`
}

var errMissingRunning = errors.New("status: isRunning missing")

// UnmarshalJSON requires isRunning, accepts logs under either "logs" or the
// legacy "printMessages", and rejects negative step counts.
func (s *StatusSnapshot) UnmarshalJSON(data []byte) error {
	type wire struct {
		IsRunning             *bool           `json:"isRunning"`
		Progress              float64         `json:"progress"`
		Status                string          `json:"status"`
		CurrentStep           int             `json:"currentStep"`
		TotalSteps            int             `json:"totalSteps"`
		StepDescription       string          `json:"stepDescription"`
		CurrentGeneratingPost GeneratingState `json:"currentGeneratingPost"`
		Logs                  []LogEntry      `json:"logs"`
		PrintMessages         []LogEntry      `json:"printMessages"`
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.IsRunning == nil {
		return errMissingRunning
	}
	if w.CurrentStep < 0 || w.TotalSteps < 0 {
		return fmt.Errorf("status: negative step count (%d/%d)", w.CurrentStep, w.TotalSteps)
	}
	logs := w.Logs
	if logs == nil {
		logs = w.PrintMessages
	}
	*s = StatusSnapshot{
		IsRunning:             *w.IsRunning,
		ReportedProgress:      w.Progress,
		Status:                w.Status,
		CurrentStep:           w.CurrentStep,
		TotalSteps:            w.TotalSteps,
		StepDescription:       w.StepDescription,
		CurrentGeneratingPost: w.CurrentGeneratingPost,
		Logs:                  logs,
	}
	return nil
}

// GeneratedPost is a post produced by the workflow.
type GeneratedPost struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	Status    string `json:"status,omitempty"`
	Uploaded  bool   `json:"uploaded,omitempty"`
	BlogURL   string `json:"blogUrl,omitempty"`
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (p GeneratedPost) ParsedCreatedAt() time.Time {
	return present.ParseTimestamp(p.CreatedAt)
}

// NaverCredentials is the read view of stored credentials. The password is
// write-only and has no field here.
type NaverCredentials struct {
	NaverID     string `json:"naverId"`
	HasPassword bool   `json:"hasPassword"`
}

// CommandResult answers start and stop.
type CommandResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TaskID  string `json:"taskId,omitempty"`
}

// ClearResult answers a log clear.
type ClearResult struct {
	Message string `json:"message"`
}

// CredentialsResult answers a credential lookup.
type CredentialsResult struct {
	Success bool              `json:"success"`
	Data    *NaverCredentials `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
}

// ActionResult answers the one-shot generate and upload calls. Data is left
// undecoded since its shape is backend-defined.
type ActionResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type startRequest struct {
	Keyword   string `json:"keyword"`
	PostCount int    `json:"postCount"`
}

type credentialsRequest struct {
	NaverID string `json:"naverId"`
	NaverPW string `json:"naverPw"`
}

type generateRequest struct {
	Keyword string `json:"keyword"`
}

type uploadRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func preview(b []byte) string {
	const limit = 32
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
