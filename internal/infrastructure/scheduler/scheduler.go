// Package scheduler runs periodic housekeeping jobs next to the queue
// listeners: sampling queue depths and pruning the command journal.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/depthchart-hub/depth-chart-hub/pkg/logger"
)

// Job is one unit of periodic work.
type Job interface {
	Name() string

	// Run is cancelled when the scheduler stops.
	Run(ctx context.Context) error
}

// JobResult describes one finished run.
type JobResult struct {
	JobName  string
	Duration time.Duration
	Err      error
}

// Success reports whether the run finished without error.
func (r JobResult) Success() bool {
	return r.Err == nil
}

var (
	ErrNilJob           = errors.New("job cannot be nil")
	ErrBadInterval      = errors.New("job interval must be positive")
	ErrJobAlreadyExists = errors.New("job already exists")
	ErrAlreadyRunning   = errors.New("scheduler is already running")
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER
// ══════════════════════════════════════════════════════════════════════════════

// Config contains configuration for the Scheduler.
type Config struct {
	// Tick is how often due jobs are checked. Default: 1s.
	Tick time.Duration

	Logger *logger.Logger

	// OnJobComplete is called after every run; the worker feeds it to the
	// job metrics.
	OnJobComplete func(result JobResult)

	// Now defaults to time.Now.
	Now func() time.Time
}

// Scheduler runs registered jobs at fixed intervals. Runs of the same job
// never overlap: a job still busy when it falls due again is skipped until
// the next tick after it finishes.
type Scheduler struct {
	cfg Config
	log *logger.Logger

	mu      sync.Mutex
	entries []*entry
	running bool
	wg      sync.WaitGroup
}

type entry struct {
	job      Job
	interval time.Duration
	due      time.Time
	busy     bool
}

// New creates a Scheduler.
func New(cfg Config) *Scheduler {
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Scheduler{cfg: cfg, log: cfg.Logger.With(logger.Component("scheduler"))}
}

// Register adds a job whose first run is one interval from now.
func (s *Scheduler) Register(job Job, interval time.Duration) error {
	if job == nil {
		return ErrNilJob
	}
	if interval <= 0 {
		return fmt.Errorf("%w: %s", ErrBadInterval, job.Name())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.job.Name() == job.Name() {
			return fmt.Errorf("%w: %s", ErrJobAlreadyExists, job.Name())
		}
	}
	s.entries = append(s.entries, &entry{job: job, interval: interval, due: s.cfg.Now().Add(interval)})

	s.log.Info("job registered", logger.Job(job.Name()), logger.Duration("interval", interval))
	return nil
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Run checks for due jobs every tick until ctx is cancelled, then waits for
// in-flight runs.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	s.log.Info("scheduler started", logger.Int("jobs_count", s.Len()))
	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			s.log.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			s.startDue(ctx)
		}
	}
}

func (s *Scheduler) startDue(ctx context.Context) {
	now := s.cfg.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.busy || now.Before(e.due) {
			continue
		}
		e.busy = true
		e.due = now.Add(e.interval)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.execute(ctx, e)
		}()
	}
}

func (s *Scheduler) execute(ctx context.Context, e *entry) {
	name := e.job.Name()
	started := s.cfg.Now()
	err := e.job.Run(ctx)
	result := JobResult{JobName: name, Duration: s.cfg.Now().Sub(started), Err: err}

	s.mu.Lock()
	e.busy = false
	s.mu.Unlock()

	switch {
	case err != nil && !errors.Is(err, context.Canceled):
		s.log.Warn("job failed", logger.Job(name), logger.Latency(result.Duration), logger.Err(err))
	default:
		s.log.Debug("job completed", logger.Job(name), logger.Latency(result.Duration))
	}

	if s.cfg.OnJobComplete != nil {
		s.cfg.OnJobComplete(result)
	}
}
