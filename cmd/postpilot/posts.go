package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/postpilot/postpilot/internal/localcache"
	"github.com/postpilot/postpilot/internal/present"
)

type postOutput struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	CreatedAt string `json:"createdAt" yaml:"created_at"`
	Status    string `json:"status,omitempty" yaml:"status,omitempty"`
	Uploaded  bool   `json:"uploaded" yaml:"uploaded"`
	BlogURL   string `json:"blogUrl,omitempty" yaml:"blog_url,omitempty"`
	Markdown  string `json:"markdown,omitempty" yaml:"markdown,omitempty"`
}

type actionOutput struct {
	Success bool `json:"success" yaml:"success"`
	Data    any  `json:"data,omitempty" yaml:"data,omitempty"`
}

type credentialsOutput struct {
	Saved       bool   `json:"saved" yaml:"saved"`
	NaverID     string `json:"naverId,omitempty" yaml:"naver_id,omitempty"`
	HasPassword bool   `json:"hasPassword" yaml:"has_password"`
}

// Posts lists generated posts. --full adds each post converted to markdown.
func (r *Runner) Posts(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(cmd); err != nil {
		return err
	}
	posts, err := r.api.GetGeneratedPosts(ctx)
	if err != nil {
		return r.fail("posts", err)
	}
	r.tracker.SetPosts(r.tracker.Begin(), posts)
	posts = r.tracker.View().Posts
	full := cmd.Bool("full")

	out := make([]postOutput, 0, len(posts))
	for _, p := range posts {
		item := postOutput{
			ID:        p.ID,
			Title:     p.Title,
			CreatedAt: p.CreatedAt,
			Status:    p.Status,
			Uploaded:  p.Uploaded,
			BlogURL:   p.BlogURL,
		}
		if full {
			markdown, err := present.ContentToMarkdown(p.Content)
			if err != nil {
				r.log().Warn("post content conversion failed", "id", p.ID, "err", err)
				markdown = p.Content
			}
			item.Markdown = markdown
		}
		out = append(out, item)
	}

	return r.write(cmd.String("format"), out, func() error {
		if len(out) == 0 {
			return r.writeLine("No posts generated yet")
		}
		for i, p := range out {
			state := "draft"
			if p.Uploaded {
				state = "uploaded"
			}
			if err := r.writeLine("%2d. %s  [%s] %s", i+1, orDefault(p.Title, "(untitled)"), state, present.FormatDate(p.CreatedAt)); err != nil {
				return err
			}
			if p.BlogURL != "" {
				if err := r.writeLine("    %s", p.BlogURL); err != nil {
					return err
				}
			}
			if full {
				if err := r.writeLine("\n%s\n", p.Markdown); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// SaveCredentials stores the blog account. The password may come from the
// environment so it stays out of shell history.
func (r *Runner) SaveCredentials(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(cmd); err != nil {
		return err
	}
	id := strings.TrimSpace(cmd.String("id"))
	password := cmd.String("password")
	if password == "" {
		return fmt.Errorf("password is required (use --password or POSTPILOT_NAVER_PASSWORD)")
	}

	result, err := r.api.SaveCredentials(ctx, id, password)
	if err != nil {
		return r.fail("save credentials", err)
	}
	r.cache.Set(localcache.KeyCredentialsSaved, "true")
	return r.writeLine("✓ %s", orDefault(result.Message, "Credentials saved"))
}

// GetCredentials shows the saved account. The password is never printed.
func (r *Runner) GetCredentials(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(cmd); err != nil {
		return err
	}
	result, err := r.api.GetCredentials(ctx)
	if err != nil {
		return r.fail("get credentials", err)
	}

	out := credentialsOutput{}
	if result.Data != nil && result.Data.NaverID != "" {
		out = credentialsOutput{Saved: true, NaverID: result.Data.NaverID, HasPassword: result.Data.HasPassword}
	}
	r.cache.Set(localcache.KeyCredentialsSaved, fmt.Sprint(out.Saved))

	return r.write(cmd.String("format"), out, func() error {
		if !out.Saved {
			return r.writeLine("No credentials saved")
		}
		password := "not set"
		if out.HasPassword {
			password = "set"
		}
		return r.writeLine("%-9s %s\n%-9s %s", "Account", out.NaverID, "Password", password)
	})
}

// Generate creates a single post outside the workflow.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(cmd); err != nil {
		return err
	}
	keyword := cmd.String("keyword")
	result, err := r.api.GenerateOnce(ctx, keyword)
	if err != nil {
		return r.fail("generate", err)
	}
	return r.writeAction(cmd.String("format"), result.Success, result.Data, fmt.Sprintf("Generated a post for %q", strings.TrimSpace(keyword)))
}

// Upload publishes a single post. Content comes from --content or --file and
// is rendered from markdown to HTML when --markdown is set.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(cmd); err != nil {
		return err
	}
	content, err := uploadContent(cmd.String("content"), cmd.String("file"), cmd.Bool("markdown"))
	if err != nil {
		return err
	}
	title := cmd.String("title")
	result, err := r.api.UploadOnce(ctx, title, content)
	if err != nil {
		return r.fail("upload", err)
	}
	return r.writeAction(cmd.String("format"), result.Success, result.Data, fmt.Sprintf("Uploaded %q", strings.TrimSpace(title)))
}

func uploadContent(content, file string, markdown bool) (string, error) {
	switch {
	case content != "" && file != "":
		return "", fmt.Errorf("use either --content or --file, not both")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read content file: %w", err)
		}
		content = string(data)
	case content == "":
		return "", fmt.Errorf("content is required (use --content or --file)")
	}
	if markdown {
		html, err := present.MarkdownToHTML(content)
		if err != nil {
			return "", err
		}
		content = html
	}
	return content, nil
}

// writeAction prints a one-shot action result. Data is backend-defined, so
// text output shows it as indented JSON.
func (r *Runner) writeAction(format string, success bool, data json.RawMessage, summary string) error {
	out := actionOutput{Success: success}
	if len(data) > 0 && string(data) != "null" {
		var decoded any
		if err := json.Unmarshal(data, &decoded); err == nil {
			out.Data = decoded
		} else {
			out.Data = string(data)
		}
	}
	return r.write(format, out, func() error {
		if err := r.writeLine("✓ %s", summary); err != nil {
			return err
		}
		if out.Data == nil {
			return nil
		}
		pretty, err := json.MarshalIndent(out.Data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return r.writeLine("%s", pretty)
	})
}
