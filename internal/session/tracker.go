// Package session measures how long a visitor keeps the map open and how
// much of that time the page was in the foreground.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/eventmap/internal/eventmap"
)

// DefaultInterval is the heartbeat period.
const DefaultInterval = 20 * time.Second

// finalFlushTimeout bounds the teardown heartbeat.
const finalFlushTimeout = 2 * time.Second

type State int

const (
	Inactive State = iota
	Tracking
	Finalizing
	Stopped
)

func (s State) String() string {
	return [...]string{"inactive", "tracking", "finalizing", "stopped"}[s]
}

// Sink receives heartbeats. Each one is a full snapshot that replaces the
// previous snapshot for the same session id.
type Sink interface {
	UpsertSessionHeartbeat(ctx context.Context, hb eventmap.Heartbeat) error
}

type Config struct {
	Interval time.Duration
	Now      func() time.Time
	NewID    func() string
}

// Tracker is safe for concurrent use: visibility callbacks and the
// heartbeat loop normally run on different goroutines.
type Tracker struct {
	sink     Sink
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	newID    func() string

	mu          sync.Mutex
	state       State
	sessionID   string
	identity    eventmap.Identity
	mapID       string
	startedAt   time.Time
	visible     bool
	activeSince time.Time
	activeAcc   time.Duration
}

func New(sink Sink, logger *slog.Logger, cfg Config) *Tracker {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Tracker{
		sink:     sink,
		logger:   logger,
		interval: cfg.Interval,
		now:      cfg.Now,
		newID:    cfg.NewID,
	}
}

// Start begins tracking once both an identity and a map are known. The page
// is assumed visible at start.
func (t *Tracker) Start(identity eventmap.Identity, mapID string) error {
	if identity.Key() == "" {
		return eventmap.ErrMissingIdentity
	}
	if mapID == "" {
		return fmt.Errorf("%w: map id required", eventmap.ErrValidation)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Inactive {
		return fmt.Errorf("session already %s", t.state)
	}
	now := t.now()
	t.state = Tracking
	t.sessionID = t.newID()
	t.identity = identity
	t.mapID = mapID
	t.startedAt = now
	t.visible = true
	t.activeSince = now
	t.activeAcc = 0
	return nil
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Tracker) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID
}

// SetVisible records a foreground/background transition. Going to the
// background banks the running active interval; coming back restarts it.
func (t *Tracker) SetVisible(visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Tracking || visible == t.visible {
		return
	}
	now := t.now()
	if visible {
		t.activeSince = now
	} else {
		t.activeAcc += now.Sub(t.activeSince)
	}
	t.visible = visible
}

// Snapshot returns the current totals. It is the zero heartbeat before
// Start.
func (t *Tracker) Snapshot() eventmap.Heartbeat {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() eventmap.Heartbeat {
	if t.state == Inactive {
		return eventmap.Heartbeat{}
	}
	now := t.now()
	active := t.activeAcc
	if t.visible {
		active += now.Sub(t.activeSince)
	}
	return eventmap.Heartbeat{
		SessionID:      t.sessionID,
		Identity:       t.identity,
		MapID:          t.mapID,
		TotalDuration:  now.Sub(t.startedAt).Seconds(),
		ActiveDuration: active.Seconds(),
	}
}

// Beat sends one heartbeat with the current totals.
func (t *Tracker) Beat(ctx context.Context) error {
	t.mu.Lock()
	if t.state != Tracking {
		t.mu.Unlock()
		return nil
	}
	hb := t.snapshotLocked()
	t.mu.Unlock()

	if err := t.sink.UpsertSessionHeartbeat(ctx, hb); err != nil {
		return fmt.Errorf("sending heartbeat: %w", err)
	}
	return nil
}

// Run sends a heartbeat every interval until ctx is done, then makes one
// best-effort final flush. Failed heartbeats are logged and skipped.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Finalize(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			if err := t.Beat(ctx); err != nil {
				t.logger.Warn("heartbeat failed", "session_id", t.SessionID(), "error", err)
			}
		}
	}
}

// Finalize sends the last snapshot marked final and stops tracking. It never
// retries and never reports failure; the host may already be gone.
func (t *Tracker) Finalize(ctx context.Context) {
	t.mu.Lock()
	if t.state != Tracking {
		t.mu.Unlock()
		return
	}
	t.state = Finalizing
	hb := t.snapshotLocked()
	hb.Final = true
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, finalFlushTimeout)
	defer cancel()
	if err := t.sink.UpsertSessionHeartbeat(ctx, hb); err != nil {
		t.logger.Debug("final heartbeat dropped", "session_id", hb.SessionID, "error", err)
	}

	t.mu.Lock()
	t.state = Stopped
	t.mu.Unlock()
}
