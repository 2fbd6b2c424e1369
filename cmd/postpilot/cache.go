package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/postpilot/postpilot/internal/logtail"
)

func (r *Runner) cacheKey(cmd *cli.Command) (string, error) {
	key := strings.TrimSpace(cmd.Args().First())
	if key == "" {
		return "", fmt.Errorf("cache key is required")
	}
	if err := r.ensureCache(cmd); err != nil {
		return "", err
	}
	if !r.cache.Available() {
		return "", fmt.Errorf("local cache is disabled (cache_backend = none)")
	}
	return key, nil
}

// CacheGet prints one cached value.
func (r *Runner) CacheGet(_ context.Context, cmd *cli.Command) error {
	key, err := r.cacheKey(cmd)
	if err != nil {
		return err
	}
	value, ok := r.cache.Get(key)
	if !ok {
		return fmt.Errorf("%q is not set", key)
	}
	return r.writeLine("%s", value)
}

// CacheSet stores one value.
func (r *Runner) CacheSet(_ context.Context, cmd *cli.Command) error {
	key, err := r.cacheKey(cmd)
	if err != nil {
		return err
	}
	if cmd.Args().Len() < 2 {
		return fmt.Errorf("value is required")
	}
	r.cache.Set(key, cmd.Args().Get(1))
	return r.writeLine("✓ %s saved", key)
}

// CacheRemove deletes one value.
func (r *Runner) CacheRemove(_ context.Context, cmd *cli.Command) error {
	key, err := r.cacheKey(cmd)
	if err != nil {
		return err
	}
	r.cache.Remove(key)
	return r.writeLine("✓ %s removed", key)
}

// CacheClear deletes every value.
func (r *Runner) CacheClear(_ context.Context, cmd *cli.Command) error {
	if err := r.ensureCache(cmd); err != nil {
		return err
	}
	r.cache.Clear()
	return r.writeLine("✓ Local cache cleared")
}

// Diag prints the tail of postpilot's own log file.
func (r *Runner) Diag(_ context.Context, cmd *cli.Command) error {
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	lines, err := logtail.Read(cfg.LogFile, int(cmd.Int("lines")))
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}

	level := logtail.ParseLevel(cmd.String("level"))
	if level == logtail.LevelUnknown {
		return fmt.Errorf("unknown level %q", cmd.String("level"))
	}
	lines = logtail.Filter(lines, level)
	if len(lines) == 0 {
		return r.writeLine("No log entries in %s", cfg.LogFile)
	}
	if cmd.Bool("color") {
		lines = logtail.Colorize(lines)
	}
	return r.writeLine("%s", strings.Join(lines, "\n"))
}
