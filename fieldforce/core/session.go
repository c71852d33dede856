package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fieldforce.com/fieldforce/fieldforce/model"
)

const (
	JobIngest  = "ingest"
	JobRefresh = "refresh"
)

// Session owns the timers of one signed-in user: position ingestion while
// tracking and live view refresh while watching. Close releases both.
type Session struct {
	svc    *Service
	viewer Viewer
	sched  *Scheduler

	mu       sync.Mutex
	tracker  *Tracker
	latest   *LiveSnapshot
	watchSeq int
	closed   bool
}

func (s *Service) NewSession(viewer Viewer) *Session {
	return &Session{
		svc:    s,
		viewer: viewer,
		sched:  NewScheduler(s.logger),
	}
}

func (s *Session) Viewer() Viewer {
	return s.viewer
}

func (s *Session) Tracking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker != nil
}

func (s *Session) TrackerStats() *TrackerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracker == nil {
		return nil
	}
	stats := s.tracker.Stats()
	return &stats
}

// StartTracking begins sampling (first sample immediately) and re-evaluates
// today's status with fix or, when nil, the provider's current position.
func (s *Session) StartTracking(ctx context.Context, fix *Fix) (*model.AttendanceRecord, error) {
	if err := s.startTracker(); err != nil {
		return nil, err
	}
	return s.svc.ReevaluateUser(ctx, s.viewer.ID, fix)
}

func (s *Session) startTracker() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.tracker != nil {
		return nil
	}
	if s.svc.positions == nil {
		return &LocationError{Kind: Unavailable}
	}

	tracker := NewTracker(s.viewer.ID, s.svc.positions, s.svc.stores.Locations, s.svc.opts.positionOptions(), s.svc.now, s.svc.logger)
	if err := s.sched.Start(JobIngest, s.svc.opts.SampleInterval, true, tracker.Sample); err != nil {
		tracker.Stop()
		return err
	}
	s.tracker = tracker
	return nil
}

// StopTracking ends sampling and re-evaluates today's status.
func (s *Session) StopTracking(ctx context.Context, fix *Fix) (*model.AttendanceRecord, error) {
	s.stopTracker()
	return s.svc.ReevaluateUser(ctx, s.viewer.ID, fix)
}

func (s *Session) stopTracker() {
	s.mu.Lock()
	tracker := s.tracker
	s.tracker = nil
	s.mu.Unlock()

	if tracker == nil {
		return
	}
	tracker.Stop()
	s.sched.Cancel(JobIngest)
}

// WatchLive refreshes the live view every interval (immediately first) and
// hands each snapshot to onSnapshot. Every call gets its own timer; the
// returned name stops it through StopWatching.
func (s *Session) WatchLive(interval time.Duration, onSnapshot func(*LiveSnapshot)) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrSessionClosed
	}
	s.watchSeq++
	name := fmt.Sprintf("%s/%d", JobRefresh, s.watchSeq)
	s.mu.Unlock()

	if interval <= 0 {
		interval = s.svc.opts.RefreshInterval
	}
	err := s.sched.Start(name, interval, true, func(ctx context.Context) error {
		snap, err := s.svc.LiveSnapshot(ctx, s.viewer)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.latest = snap
		s.mu.Unlock()
		if onSnapshot != nil {
			onSnapshot(snap)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return name, nil
}

func (s *Session) watches() []string {
	var names []string
	for _, name := range s.sched.Names() {
		if strings.HasPrefix(name, JobRefresh+"/") {
			names = append(names, name)
		}
	}
	return names
}

func (s *Session) Watching() bool {
	return len(s.watches()) > 0
}

// StopWatching cancels one live watch. Other watches of the session keep running.
func (s *Session) StopWatching(name string) bool {
	if !strings.HasPrefix(name, JobRefresh+"/") {
		return false
	}
	return s.sched.Cancel(name)
}

// Refresh forces a refresh of every live watch.
func (s *Session) Refresh() error {
	names := s.watches()
	if len(names) == 0 {
		return fmt.Errorf("%w: %s", ErrJobNotFound, JobRefresh)
	}
	for _, name := range names {
		// a watch stopped meanwhile is skipped
		err := s.sched.Tick(name)
		if err != nil && !errors.Is(err, ErrJobNotFound) && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return nil
}

func (s *Session) Latest() *LiveSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Close stops all timers of the session. It is safe to call twice.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	tracker := s.tracker
	s.tracker = nil
	s.mu.Unlock()

	if tracker != nil {
		tracker.Stop()
	}
	s.sched.Stop()
}

// Registry keeps one session per user for the lifetime of the process.
type Registry struct {
	svc      *Service
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(svc *Service) *Registry {
	return &Registry{svc: svc, sessions: make(map[string]*Session)}
}

// Open returns the session of viewer, creating it on first use.
func (r *Registry) Open(viewer Viewer) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[viewer.ID]; ok {
		return s
	}
	s := r.svc.NewSession(viewer)
	r.sessions[viewer.ID] = s
	return s
}

func (r *Registry) Get(userID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	return s, ok
}

func (r *Registry) Close(userID string) bool {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
