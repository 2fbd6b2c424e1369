package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/postpilot/postpilot/internal/app"
	"github.com/postpilot/postpilot/internal/automation"
	"github.com/postpilot/postpilot/internal/config"
	"github.com/postpilot/postpilot/internal/localcache"
	"github.com/postpilot/postpilot/internal/session"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// Runner holds the dependencies shared by every command action.
type Runner struct {
	config  *config.Config
	api     automation.API
	cache   *localcache.Cache
	tracker *session.Tracker
	logger  *log.Logger
	output  io.Writer
	closer  func() error
}

// RunnerOpts configures a Runner. Anything left nil is built from the
// configuration file on first use.
type RunnerOpts struct {
	Config  *config.Config
	API     automation.API
	Cache   *localcache.Cache
	Tracker *session.Tracker
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a Runner from opts.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{
		config:  opts.Config,
		api:     opts.API,
		cache:   opts.Cache,
		tracker: opts.Tracker,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

// loadConfig resolves the configuration named by --config once.
func (r *Runner) loadConfig(cmd *cli.Command) (config.Config, error) {
	if r.config != nil {
		return *r.config, nil
	}
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	r.config = &cfg
	if r.logger == nil {
		r.logger = app.NewLogger(os.Stderr, cfg.LogLevel)
	}
	return cfg, nil
}

// ensure builds the client, cache and tracker unless they were injected.
func (r *Runner) ensure(cmd *cli.Command) error {
	if r.api != nil {
		if r.tracker == nil {
			r.tracker = session.NewTracker()
		}
		return nil
	}
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	services, err := app.Build(cfg, r.log())
	if err != nil {
		return err
	}
	r.api = services.API
	r.tracker = services.Tracker
	if r.cache == nil {
		r.cache = services.Cache
		r.closer = services.Close
	}
	return nil
}

// ensureCache opens only the local cache.
func (r *Runner) ensureCache(cmd *cli.Command) error {
	if r.cache != nil {
		return nil
	}
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	backend, err := localcache.Open(cfg.CacheBackend, cfg.CachePath)
	if err != nil {
		return fmt.Errorf("open local cache: %w", err)
	}
	r.cache = localcache.New(backend, r.log().WithPrefix("cache"))
	r.closer = r.cache.Close
	return nil
}

// Close releases anything the runner opened itself.
func (r *Runner) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

func (r *Runner) log() *log.Logger {
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	return r.logger
}

// fail turns a client error into a message suitable for the terminal.
func (r *Runner) fail(action string, err error) error {
	r.log().Debug(action+" failed", "err", err)
	return fmt.Errorf("%s: %s", action, automation.Describe(err))
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	return nil
}

func (r *Runner) writeYAML(data any) error {
	enc := yaml.NewEncoder(r.output)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}

func (r *Runner) writePlain(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeLine(format string, args ...any) error {
	return r.writePlain(format+"\n", args...)
}

// write renders data in the requested format, using text for the plain form.
func (r *Runner) write(format string, data any, text func() error) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", formatText:
		return text()
	case formatJSON:
		return r.writeJSON(data, true)
	case formatYAML:
		return r.writeYAML(data)
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: text, json or yaml",
		Value:   formatText,
	}
}
