package core

import (
	"context"
	"sync"
	"time"

	"fieldforce.com/fieldforce/fieldforce/model"
)

// Tracker samples one user's position into the location store while active.
type Tracker struct {
	userID    string
	positions PositionProvider
	locations LocationStore
	opts      PositionOptions
	now       func() time.Time
	logger    Logger

	mu       sync.Mutex
	active   bool
	samples  int
	failures int
	last     *model.MovementLog
}

func NewTracker(userID string, positions PositionProvider, locations LocationStore, opts PositionOptions, now func() time.Time, logger Logger) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		userID:    userID,
		positions: positions,
		locations: locations,
		opts:      opts,
		now:       now,
		logger:    defaultLogger(logger),
		active:    true,
	}
}

func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Stop deactivates the tracker. Once it returns no further sample is written,
// even by a position request that was already in flight.
func (t *Tracker) Stop() {
	t.mu.Lock()
	t.active = false
	t.mu.Unlock()
}

// Sample takes one position reading and appends it. Failures are returned
// for logging; the tracker stays active.
func (t *Tracker) Sample(ctx context.Context) error {
	if !t.Active() {
		return nil
	}

	reqCtx := ctx
	if t.opts.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, t.opts.Timeout)
		defer cancel()
	}

	fix, err := t.positions.CurrentPosition(reqCtx, t.userID, t.opts)
	if err != nil {
		t.mu.Lock()
		t.failures++
		t.mu.Unlock()
		t.logger.Printf("[WARN] no position for %s: %v\n", t.userID, err)
		return err
	}

	// the session may have been stopped while the request was pending
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return nil
	}

	entry := newMovementLog(t.userID, fix, t.now())
	if err := t.locations.Append(ctx, entry); err != nil {
		t.failures++
		return &PersistenceError{Op: "append movement log", Err: err}
	}
	t.samples++
	t.last = entry
	return nil
}

type TrackerStats struct {
	Samples  int                `json:"samples"`
	Failures int                `json:"failures"`
	Last     *model.MovementLog `json:"last,omitempty"`
}

func (t *Tracker) Stats() TrackerStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TrackerStats{Samples: t.samples, Failures: t.failures, Last: t.last}
}
