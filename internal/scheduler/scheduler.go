// Package scheduler runs periodic background tasks on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/familyguardian/guardian/internal/logging"
)

// DefaultTimeout bounds a single task run when the task sets none
const DefaultTimeout = 5 * time.Minute

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron     *cron.Cron
	parser   cron.Parser
	tasks    map[string]*Task
	entries  map[string]cron.EntryID
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	timezone *time.Location
	log      *logging.Logger
}

// Config configures the scheduler
type Config struct {
	Timezone string // Timezone for cron specs (default: Local)
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Timezone: "Local",
	}
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg Config) (*Scheduler, error) {
	tz := time.Local
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
		}
		tz = loc
	}

	log := logging.WithField("component", "scheduler")
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(tz),
			cron.WithChain(cron.Recover(cron.PrintfLogger(logging.Standard()))),
		),
		parser:   cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		tasks:    make(map[string]*Task),
		entries:  make(map[string]cron.EntryID),
		ctx:      ctx,
		cancel:   cancel,
		timezone: tz,
		log:      log,
	}, nil
}

// Task represents a scheduled task
type Task struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Spec       string        `json:"spec"` // cron expression or descriptor such as @every 1h
	Handler    TaskHandler   `json:"-"`
	Enabled    bool          `json:"enabled"`
	LastRun    *time.Time    `json:"last_run,omitempty"`
	NextRun    *time.Time    `json:"next_run,omitempty"`
	RunCount   int64         `json:"run_count"`
	ErrorCount int64         `json:"error_count"`
	LastError  string        `json:"last_error,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	Timeout    time.Duration `json:"timeout"`

	schedule cron.Schedule
}

// TaskHandler is the function executed for a task
type TaskHandler func(ctx context.Context) error

// Register validates a task and adds it to the scheduler
func (s *Scheduler) Register(task *Task) error {
	if task.ID == "" {
		return fmt.Errorf("task ID is required")
	}
	if task.Handler == nil {
		return fmt.Errorf("task handler is required")
	}

	schedule, err := s.parser.Parse(task.Spec)
	if err != nil {
		return fmt.Errorf("task %s: invalid schedule %q: %w", task.ID, task.Spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return fmt.Errorf("task already registered: %s", task.ID)
	}

	if task.Timeout == 0 {
		task.Timeout = DefaultTimeout
	}
	task.schedule = schedule
	task.CreatedAt = time.Now()
	task.Enabled = true
	s.setNextRun(task)

	s.tasks[task.ID] = task
	s.addEntry(task)

	return nil
}

// Disable keeps a task registered but stops scheduling it. RunNow still
// runs a disabled task.
func (s *Scheduler) Disable(taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return fmt.Errorf("task not found: %s", taskID)
	}

	task.Enabled = false
	task.NextRun = nil
	s.removeEntry(taskID)
	return nil
}

// Start starts the cron loop
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("scheduler already started")
	}

	s.started = true
	s.cron.Start()
	s.log.Info("scheduler started with %d task(s)", len(s.entries))

	return nil
}

// Stop cancels running tasks and waits for them to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.started = false
	done := s.cron.Stop()
	s.mu.Unlock()

	// running jobs take the read lock when they finish
	<-done.Done()

	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.mu.Unlock()
}

func (s *Scheduler) addEntry(task *Task) {
	if !task.Enabled {
		return
	}
	id := s.cron.Schedule(task.schedule, cron.FuncJob(func() {
		s.mu.RLock()
		ctx := s.ctx
		s.mu.RUnlock()
		s.executeTask(ctx, task)
	}))
	s.entries[task.ID] = id
}

func (s *Scheduler) removeEntry(taskID string) {
	if id, ok := s.entries[taskID]; ok {
		s.cron.Remove(id)
		delete(s.entries, taskID)
	}
}

func (s *Scheduler) setNextRun(task *Task) {
	next := task.schedule.Next(time.Now().In(s.timezone))
	task.NextRun = &next
}

// executeTask runs a task with its timeout and records the outcome
func (s *Scheduler) executeTask(ctx context.Context, task *Task) error {
	execCtx, cancel := context.WithTimeout(ctx, task.Timeout)
	defer cancel()

	now := time.Now()
	s.mu.Lock()
	task.LastRun = &now
	task.RunCount++
	s.mu.Unlock()

	err := task.Handler(execCtx)

	s.mu.Lock()
	if err != nil {
		task.ErrorCount++
		task.LastError = err.Error()
	} else {
		task.LastError = ""
	}
	if task.Enabled {
		s.setNextRun(task)
	}
	s.mu.Unlock()

	if err != nil {
		s.log.WithField("task", task.ID).WithError(err).Error("task failed")
	} else {
		s.log.WithField("task", task.ID).Debug("task completed in %s", time.Since(now).Round(time.Millisecond))
	}
	return err
}

// RunNow executes a task immediately and returns its error
func (s *Scheduler) RunNow(ctx context.Context, taskID string) error {
	s.mu.RLock()
	task, ok := s.tasks[taskID]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("task not found: %s", taskID)
	}

	return s.executeTask(ctx, task)
}

// GetTask returns a snapshot of a task by ID
func (s *Scheduler) GetTask(taskID string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return Task{}, false
	}
	return *task, true
}

// ListTasks returns snapshots of all tasks ordered by ID
func (s *Scheduler) ListTasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, *task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

// GetStats returns scheduler statistics
func (s *Scheduler) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		Started:    s.started,
		TotalTasks: len(s.tasks),
		Timezone:   s.timezone.String(),
	}

	for _, task := range s.tasks {
		if task.Enabled {
			stats.EnabledTasks++
		}
		stats.TotalRuns += task.RunCount
		stats.TotalErrors += task.ErrorCount
	}

	return stats
}

// Stats contains scheduler statistics
type Stats struct {
	Started      bool   `json:"started"`
	TotalTasks   int    `json:"total_tasks"`
	EnabledTasks int    `json:"enabled_tasks"`
	TotalRuns    int64  `json:"total_runs"`
	TotalErrors  int64  `json:"total_errors"`
	Timezone     string `json:"timezone"`
}

// Common task builders

// IntervalTask creates a task that runs at a fixed interval
func IntervalTask(id, name string, interval time.Duration, handler TaskHandler) *Task {
	return &Task{
		ID:      id,
		Name:    name,
		Spec:    "@every " + interval.String(),
		Handler: handler,
	}
}

// DailyTask creates a task that runs daily at a "HH:MM" time
func DailyTask(id, name, at string, handler TaskHandler) (*Task, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(at, "%d:%d", &hour, &minute); err != nil {
		return nil, fmt.Errorf("invalid time %q: %w", at, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("invalid time %q", at)
	}
	return &Task{
		ID:      id,
		Name:    name,
		Spec:    fmt.Sprintf("%d %d * * *", minute, hour),
		Handler: handler,
	}, nil
}
