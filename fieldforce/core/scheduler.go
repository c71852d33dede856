package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	ErrJobExists        = errors.New("job already scheduled")
	ErrJobNotFound      = errors.New("job not scheduled")
	ErrSchedulerStopped = errors.New("scheduler stopped")
)

type Job func(ctx context.Context) error

type scheduledJob struct {
	name     string
	interval time.Duration
	fn       Job
	ctx      context.Context
	cancel   context.CancelFunc
	// runs of one job never overlap
	runMu sync.Mutex
}

// Scheduler runs named jobs on fixed intervals. Every timer it starts is
// released by Cancel or Stop.
type Scheduler struct {
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	jobs    map[string]*scheduledJob
	wg      sync.WaitGroup
	logger  Logger
	stopped bool
}

func NewScheduler(logger Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]*scheduledJob),
		logger: defaultLogger(logger),
	}
}

// Start schedules fn every interval. With immediate set, the first run
// happens right away instead of after one interval.
func (s *Scheduler) Start(name string, interval time.Duration, immediate bool, fn Job) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrSchedulerStopped
	}
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("%w: %s", ErrJobExists, name)
	}

	ctx, cancel := context.WithCancel(s.ctx)
	job := &scheduledJob{name: name, interval: interval, fn: fn, ctx: ctx, cancel: cancel}
	s.jobs[name] = job

	s.wg.Add(1)
	go s.loop(job, immediate)
	return nil
}

func (s *Scheduler) loop(job *scheduledJob, immediate bool) {
	defer s.wg.Done()

	if immediate {
		s.run(job)
	}

	ticker := time.NewTicker(job.interval)
	defer ticker.Stop()

	for {
		select {
		case <-job.ctx.Done():
			return
		case <-ticker.C:
			s.run(job)
		}
	}
}

func (s *Scheduler) run(job *scheduledJob) error {
	job.runMu.Lock()
	defer job.runMu.Unlock()

	if job.ctx.Err() != nil {
		return job.ctx.Err()
	}
	err := job.fn(job.ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Printf("[ERROR] job %s: %v\n", job.name, err)
	}
	return err
}

// Tick runs a scheduled job now, in the caller's goroutine.
func (s *Scheduler) Tick(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.run(job)
}

// Cancel stops future runs of name. A run already in progress sees its
// context cancelled but is not waited for.
func (s *Scheduler) Cancel(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[name]
	if !ok {
		return false
	}
	job.cancel()
	delete(s.jobs, name)
	return true
}

func (s *Scheduler) Running(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[name]
	return ok
}

func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stop cancels every job and waits for their goroutines to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.cancel()
	s.jobs = make(map[string]*scheduledJob)
	s.mu.Unlock()

	s.wg.Wait()
}
