package indexer

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultQuietWindow is how long a key must stay untriggered before its
// pending task runs.
const DefaultQuietWindow = time.Second

// pendingTask is the single queued task of one key.
type pendingTask struct {
	run   func()
	timer *time.Timer
}

// Scheduler coalesces bursts of triggers into one execution per key.
//
// Each key holds at most one pending task. Triggering a key replaces its
// pending task and restarts the quiet window; only the expiry of the window
// runs the task, so N triggers in quick succession run the last task once.
// Tasks for different keys are independent.
type Scheduler struct {
	quiet  time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]*pendingTask
	stopped bool
	running sync.WaitGroup
}

// NewScheduler creates a scheduler with the given quiet window
// (DefaultQuietWindow when quiet <= 0).
func NewScheduler(quiet time.Duration, logger *slog.Logger) *Scheduler {
	if quiet <= 0 {
		quiet = DefaultQuietWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		quiet:   quiet,
		logger:  logger,
		pending: make(map[string]*pendingTask),
	}
}

// Trigger schedules run for key, replacing any task still pending for it.
// Triggers after Stop are ignored.
func (s *Scheduler) Trigger(key string, run func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	if prev, ok := s.pending[key]; ok {
		prev.timer.Stop()
		s.logger.Debug("coalesced pending task", "key", key)
	}

	task := &pendingTask{run: run}
	task.timer = time.AfterFunc(s.quiet, func() { s.fire(key, task) })
	s.pending[key] = task
}

func (s *Scheduler) fire(key string, task *pendingTask) {
	s.mu.Lock()
	if s.pending[key] != task {
		// Replaced after the timer had already fired.
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.running.Add(1)
	s.mu.Unlock()

	defer s.running.Done()
	task.run()
}

// Pending reports whether key has a task waiting for its quiet window.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[key]
	return ok
}

// Flush runs every pending task immediately, on the calling goroutine, and
// waits for tasks already running.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	tasks := make([]*pendingTask, 0, len(s.pending))
	for key, task := range s.pending {
		task.timer.Stop()
		tasks = append(tasks, task)
		delete(s.pending, key)
	}
	s.mu.Unlock()

	for _, task := range tasks {
		task.run()
	}
	s.running.Wait()
}

// Stop drops every pending task, rejects further triggers and waits for
// running tasks to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for key, task := range s.pending {
		task.timer.Stop()
		delete(s.pending, key)
	}
	s.mu.Unlock()

	s.running.Wait()
}
