package core

import (
	"context"
	"sync"
	"time"
)

// ReportedPositions is a PositionProvider fed by devices reporting their own fixes.
type ReportedPositions struct {
	mu       sync.Mutex
	now      func() time.Time
	latest   map[string]Fix
	failures map[string]LocationErrorKind
	waiters  map[string][]chan struct{}
	watchers map[WatchHandle]*positionWatch
	nextID   WatchHandle
}

type positionWatch struct {
	userID string
	onFix  func(Fix)
	onErr  func(error)
}

func NewReportedPositions(now func() time.Time) *ReportedPositions {
	if now == nil {
		now = time.Now
	}
	return &ReportedPositions{
		now:      now,
		latest:   make(map[string]Fix),
		failures: make(map[string]LocationErrorKind),
		waiters:  make(map[string][]chan struct{}),
		watchers: make(map[WatchHandle]*positionWatch),
	}
}

// Report records a fix from the device of userID.
func (p *ReportedPositions) Report(userID string, fix Fix) {
	now := p.now()
	if fix.CapturedAt.IsZero() {
		fix.CapturedAt = now
	}
	fix = fix.ClampTo(now)

	p.mu.Lock()
	if prev, ok := p.latest[userID]; ok && prev.CapturedAt.After(fix.CapturedAt) {
		p.mu.Unlock()
		return
	}
	p.latest[userID] = fix
	delete(p.failures, userID)
	p.wakeLocked(userID)
	watches := p.watchesLocked(userID)
	p.mu.Unlock()

	for _, w := range watches {
		if w.onFix != nil {
			w.onFix(fix)
		}
	}
}

// ReportError records that the device of userID cannot produce fixes.
func (p *ReportedPositions) ReportError(userID string, kind LocationErrorKind) {
	p.mu.Lock()
	delete(p.latest, userID)
	p.failures[userID] = kind
	p.wakeLocked(userID)
	watches := p.watchesLocked(userID)
	p.mu.Unlock()

	err := &LocationError{Kind: kind}
	for _, w := range watches {
		if w.onErr != nil {
			w.onErr(err)
		}
	}
}

func (p *ReportedPositions) wakeLocked(userID string) {
	for _, ch := range p.waiters[userID] {
		close(ch)
	}
	delete(p.waiters, userID)
}

func (p *ReportedPositions) watchesLocked(userID string) []*positionWatch {
	var out []*positionWatch
	for _, w := range p.watchers {
		if w.userID == userID {
			out = append(out, w)
		}
	}
	return out
}

// CurrentPosition returns the latest acceptable fix or waits for one until
// opts.Timeout or ctx expires.
func (p *ReportedPositions) CurrentPosition(ctx context.Context, userID string, opts PositionOptions) (Fix, error) {
	var timeout <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		p.mu.Lock()
		if fix, ok := p.latest[userID]; ok && opts.accepts(fix, p.now()) {
			p.mu.Unlock()
			return fix, nil
		}
		if kind, failed := p.failures[userID]; failed {
			p.mu.Unlock()
			return Fix{}, &LocationError{Kind: kind}
		}
		ch := make(chan struct{})
		p.waiters[userID] = append(p.waiters[userID], ch)
		p.mu.Unlock()

		select {
		case <-ch:
		case <-timeout:
			p.dropWaiter(userID, ch)
			return Fix{}, &LocationError{Kind: Timeout}
		case <-ctx.Done():
			p.dropWaiter(userID, ch)
			return Fix{}, &LocationError{Kind: Timeout, Err: ctx.Err()}
		}
	}
}

func (p *ReportedPositions) dropWaiter(userID string, ch chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	list := p.waiters[userID]
	for i, c := range list {
		if c == ch {
			p.waiters[userID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(p.waiters[userID]) == 0 {
		delete(p.waiters, userID)
	}
}

// Latest returns the last fix reported for userID, regardless of age.
func (p *ReportedPositions) Latest(userID string) (Fix, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fix, ok := p.latest[userID]
	return fix, ok
}

func (p *ReportedPositions) Watch(userID string, onFix func(Fix), onErr func(error)) WatchHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	p.watchers[p.nextID] = &positionWatch{userID: userID, onFix: onFix, onErr: onErr}
	return p.nextID
}

func (p *ReportedPositions) ClearWatch(h WatchHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.watchers, h)
}
