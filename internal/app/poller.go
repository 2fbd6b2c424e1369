package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/postpilot/postpilot/internal/automation"
	"github.com/postpilot/postpilot/internal/session"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// Poller drives the status loop: it polls while a run is active, backs off on
// failures, and sleeps until woken once the backend reports no run.
type Poller struct {
	api      automation.API
	tracker  *session.Tracker
	logger   *log.Logger
	interval time.Duration
	wake     chan struct{}

	mu       sync.Mutex
	inflight context.CancelFunc
	gen      uint64
}

// NewPoller builds a poller. A non-positive interval uses the default.
func NewPoller(api automation.API, tracker *session.Tracker, interval time.Duration, logger *log.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Poller{
		api:      api,
		tracker:  tracker,
		logger:   logger,
		interval: interval,
		wake:     make(chan struct{}, 1),
	}
}

// Wake resumes an idle poller and triggers an immediate poll.
func (p *Poller) Wake() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled. The first poll happens immediately.
func (p *Poller) Run(ctx context.Context) {
	failures := 0
	for {
		active, err := p.Poll(ctx)
		if ctx.Err() != nil {
			return
		}
		switch {
		case errors.Is(err, context.Canceled):
		case err != nil:
			failures++
		default:
			failures = 0
		}

		var (
			timer *time.Timer
			tick  <-chan time.Time
		)
		if active || failures > 0 {
			timer = time.NewTimer(calculateBackoff(failures, p.interval))
			tick = timer.C
		}
		select {
		case <-ctx.Done():
		case <-p.wake:
			failures = 0
		case <-tick:
		}
		if timer != nil {
			timer.Stop()
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// Poll fetches status and posts once, cancelling any poll still in flight.
// It reports whether a run is active afterwards. A poll cancelled because a
// newer one started returns context.Canceled and is not recorded as a failure.
func (p *Poller) Poll(ctx context.Context) (bool, error) {
	pollCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	if p.inflight != nil {
		p.inflight()
	}
	p.gen++
	gen := p.gen
	p.inflight = cancel
	p.mu.Unlock()

	defer func() {
		cancel()
		p.mu.Lock()
		if p.gen == gen {
			p.inflight = nil
		}
		p.mu.Unlock()
	}()

	ticket := p.tracker.Begin()
	snap, err := p.api.GetStatus(pollCtx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return p.tracker.View().Running, context.Canceled
		}
		p.tracker.Fail(ticket, err)
		p.logger.Warn("status poll failed", "err", err)
		return p.tracker.View().Running, err
	}

	delta := p.tracker.Apply(ticket, *snap)
	if delta.Stale {
		return p.tracker.View().Running, nil
	}
	if delta.RunStarted {
		p.logger.Info("automation run started", "status", snap.Status)
	}
	if delta.Terminal {
		p.logger.Info("automation run finished", "status", delta.FinalStatus, "progress", delta.Progress)
	}

	posts, err := p.api.GetGeneratedPosts(pollCtx)
	switch {
	case err == nil:
		p.tracker.SetPosts(ticket, posts)
	case errors.Is(err, context.Canceled):
	default:
		p.logger.Warn("posts poll failed", "err", err)
	}
	return snap.IsRunning, nil
}

func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
