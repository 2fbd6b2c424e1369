package automation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/postpilot/postpilot/internal/present"
)

// API lists every backend capability. It is implemented by *Client and can be
// substituted in tests.
type API interface {
	Start(ctx context.Context, keyword string, postCount int) (CommandResult, error)
	Stop(ctx context.Context) (CommandResult, error)
	GetStatus(ctx context.Context) (*StatusSnapshot, error)
	GetLogs(ctx context.Context) ([]LogEntry, error)
	ClearLogs(ctx context.Context) (ClearResult, error)
	GetGeneratedPosts(ctx context.Context) ([]GeneratedPost, error)
	GetGeneratingPost(ctx context.Context) (GeneratingState, error)
	SaveCredentials(ctx context.Context, naverID, password string) (CommandResult, error)
	GetCredentials(ctx context.Context) (CredentialsResult, error)
	GenerateOnce(ctx context.Context, keyword string) (ActionResult, error)
	UploadOnce(ctx context.Context, title, content string) (ActionResult, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// DefaultPostCount is the only post count with defined backend behaviour.
const DefaultPostCount = 1

// Client exposes the automation backend's operations over a Transport.
type Client struct {
	transport Transport
	logger    *log.Logger
}

// NewClient wraps transport. A nil logger discards output.
func NewClient(transport Transport, logger *log.Logger) (*Client, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport is nil")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{transport: transport, logger: logger}, nil
}

// Start begins a workflow run for keyword.
func (c *Client) Start(ctx context.Context, keyword string, postCount int) (CommandResult, error) {
	keyword = strings.TrimSpace(keyword)
	if err := checkKeyword(keyword); err != nil {
		return CommandResult{}, err
	}
	if postCount <= 0 {
		postCount = DefaultPostCount
	}
	if postCount != DefaultPostCount {
		c.logger.Warn("post count other than 1 has no defined backend behaviour", "postCount", postCount)
	}
	var result CommandResult
	err := c.transport.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/automation/start",
		Body:   startRequest{Keyword: keyword, PostCount: postCount},
	}, &result)
	if err != nil {
		return CommandResult{}, err
	}
	if !result.Success {
		return result, &RejectionError{Operation: "start", Message: result.Message}
	}
	c.logger.Info("automation started", "keyword", keyword, "task", result.TaskID)
	return result, nil
}

// Stop halts the current run.
func (c *Client) Stop(ctx context.Context) (CommandResult, error) {
	var result CommandResult
	if err := c.transport.Do(ctx, Request{Method: http.MethodPost, Path: "/automation/stop"}, &result); err != nil {
		return CommandResult{}, err
	}
	if !result.Success {
		return result, &RejectionError{Operation: "stop", Message: result.Message}
	}
	c.logger.Info("automation stopped", "message", result.Message)
	return result, nil
}

// GetStatus fetches a session snapshot.
func (c *Client) GetStatus(ctx context.Context) (*StatusSnapshot, error) {
	var snap StatusSnapshot
	if err := c.transport.Do(ctx, Request{Path: "/automation/status"}, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// GetLogs fetches the backend log in received order.
func (c *Client) GetLogs(ctx context.Context) ([]LogEntry, error) {
	var logs []LogEntry
	if err := c.transport.Do(ctx, Request{Path: "/automation/logs"}, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// ClearLogs asks the backend to drop its log.
func (c *Client) ClearLogs(ctx context.Context) (ClearResult, error) {
	var result ClearResult
	if err := c.transport.Do(ctx, Request{Method: http.MethodDelete, Path: "/automation/logs/clear"}, &result); err != nil {
		return ClearResult{}, err
	}
	return result, nil
}

// GetGeneratedPosts lists the posts produced so far.
func (c *Client) GetGeneratedPosts(ctx context.Context) ([]GeneratedPost, error) {
	var posts []GeneratedPost
	if err := c.transport.Do(ctx, Request{Path: "/automation/posts"}, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetGeneratingPost reports the in-flight generation, if any.
func (c *Client) GetGeneratingPost(ctx context.Context) (GeneratingState, error) {
	var state GeneratingState
	if err := c.transport.Do(ctx, Request{Path: "/automation/generating"}, &state); err != nil {
		return GeneratingState{}, err
	}
	return state, nil
}

// SaveCredentials stores the blog account used for uploads. Inputs are
// checked locally first; the backend still has the final say.
func (c *Client) SaveCredentials(ctx context.Context, naverID, password string) (CommandResult, error) {
	if !present.ValidateNaverID(naverID) {
		return CommandResult{}, &ValidationError{Field: "naverId", Reason: "must be 4-20 letters, digits or underscores"}
	}
	if !present.ValidatePassword(password) {
		return CommandResult{}, &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", present.MinPasswordLength)}
	}
	var result CommandResult
	err := c.transport.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/naver/save-credentials",
		Body:   credentialsRequest{NaverID: naverID, NaverPW: password},
	}, &result)
	if err != nil {
		return CommandResult{}, err
	}
	if !result.Success {
		return result, &RejectionError{Operation: "save credentials", Message: result.Message}
	}
	return result, nil
}

// GetCredentials returns the stored account view. Any password the backend
// might include is dropped during decoding.
func (c *Client) GetCredentials(ctx context.Context) (CredentialsResult, error) {
	var result CredentialsResult
	if err := c.transport.Do(ctx, Request{Path: "/naver/get-credentials"}, &result); err != nil {
		return CredentialsResult{}, err
	}
	if !result.Success {
		return result, &RejectionError{Operation: "get credentials", Message: result.Message}
	}
	return result, nil
}

// GenerateOnce generates a single post outside the workflow.
func (c *Client) GenerateOnce(ctx context.Context, keyword string) (ActionResult, error) {
	keyword = strings.TrimSpace(keyword)
	if err := checkKeyword(keyword); err != nil {
		return ActionResult{}, err
	}
	var result ActionResult
	err := c.transport.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/generate",
		Body:   generateRequest{Keyword: keyword},
	}, &result)
	if err != nil {
		return ActionResult{}, err
	}
	if !result.Success {
		return result, &RejectionError{Operation: "generate", Message: result.Error}
	}
	return result, nil
}

// UploadOnce uploads a single post outside the workflow.
func (c *Client) UploadOnce(ctx context.Context, title, content string) (ActionResult, error) {
	if strings.TrimSpace(title) == "" {
		return ActionResult{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(content) == "" {
		return ActionResult{}, &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	var result ActionResult
	err := c.transport.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/upload",
		Body:   uploadRequest{Title: title, Content: content},
	}, &result)
	if err != nil {
		return ActionResult{}, err
	}
	if !result.Success {
		return result, &RejectionError{Operation: "upload", Message: result.Error}
	}
	return result, nil
}

func checkKeyword(keyword string) error {
	if !present.ValidateKeyword(keyword) {
		return &ValidationError{Field: "keyword", Reason: fmt.Sprintf("must be 1-%d characters", present.MaxKeywordLength)}
	}
	return nil
}
