package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/postpilot/postpilot/internal/automation"
	"github.com/postpilot/postpilot/internal/config"
	"github.com/postpilot/postpilot/internal/localcache"
	"github.com/postpilot/postpilot/internal/session"
	"github.com/postpilot/postpilot/internal/ui"
)

// Options configure the postpilot terminal UI.
type Options struct {
	ConfigPath string
}

// Services bundles everything built from a Config.
type Services struct {
	Config  config.Config
	Logger  *log.Logger
	API     automation.API
	Cache   *localcache.Cache
	Tracker *session.Tracker
	Poller  *Poller

	// APIURL is the normalized backend origin requests are sent to.
	APIURL string
}

// NewLogger creates a logger writing to w (stderr when nil) at the named level.
func NewLogger(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := log.NewWithOptions(w, log.Options{ReportTimestamp: true, ReportCaller: true})
	lvl, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// OpenLogFile opens path for appending, creating parent directories.
func OpenLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}

// Build wires transport, client, cache, tracker and poller from cfg. A cache
// that cannot be opened is logged and replaced by one that stores nothing.
func Build(cfg config.Config, logger *log.Logger) (*Services, error) {
	if logger == nil {
		logger = NewLogger(nil, cfg.LogLevel)
	}

	transport, err := automation.NewHTTPTransport(cfg.APIURL,
		automation.WithTimeout(cfg.RequestTimeout),
		automation.WithRateLimit(cfg.RateLimit),
		automation.WithLogger(logger.WithPrefix("http")),
	)
	if err != nil {
		return nil, fmt.Errorf("init transport: %w", err)
	}
	client, err := automation.NewClient(transport, logger.WithPrefix("automation"))
	if err != nil {
		return nil, fmt.Errorf("init client: %w", err)
	}

	backend, err := localcache.Open(cfg.CacheBackend, cfg.CachePath)
	if err != nil {
		logger.Warn("local cache unavailable", "backend", cfg.CacheBackend, "err", err)
		backend = nil
	}
	cache := localcache.New(backend, logger.WithPrefix("cache"))

	tracker := session.NewTracker()
	return &Services{
		Config:  cfg,
		Logger:  logger,
		API:     client,
		Cache:   cache,
		Tracker: tracker,
		Poller:  NewPoller(client, tracker, cfg.PollInterval, logger.WithPrefix("poller")),
		APIURL:  transport.BaseURL(),
	}, nil
}

// Close releases the cache backend.
func (s *Services) Close() error {
	if s == nil {
		return nil
	}
	return s.Cache.Close()
}

// Run boots the terminal UI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFile, err := OpenLogFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := NewLogger(logFile, cfg.LogLevel)

	services, err := Build(cfg, logger)
	if err != nil {
		return err
	}
	defer services.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go services.Poller.Run(ctx)

	logger.Info("postpilot started", "api", services.APIURL, "cache", cfg.CacheBackend)
	err = ui.Run(ui.Options{
		Context: ctx,
		API:     services.API,
		Tracker: services.Tracker,
		Poller:  services.Poller,
		Cache:   services.Cache,
		Logger:  logger.WithPrefix("ui"),
		APIURL:  services.APIURL,
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
