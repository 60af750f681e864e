package tasks

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"dooh/internal/config"
	"dooh/internal/utils/logger"
)

// Scheduler handles periodic task scheduling
type Scheduler struct {
	scheduler   *asynq.Scheduler
	refreshCron string
	logger      *logger.Logger
}

// NewScheduler creates a new task scheduler
func NewScheduler(redis config.RedisConfig, analytics config.AnalyticsConfig) *Scheduler {
	scheduler := asynq.NewScheduler(RedisOpt(redis), &asynq.SchedulerOpts{Location: time.UTC})

	return &Scheduler{
		scheduler:   scheduler,
		refreshCron: analytics.RefreshCron,
		logger:      logger.New("SCHEDULER"),
	}
}

// Start registers the periodic tasks and starts the scheduler in the
// background.
func (s *Scheduler) Start() error {
	if err := s.registerTasks(); err != nil {
		return fmt.Errorf("failed to register tasks: %w", err)
	}

	s.logger.Info("starting task scheduler")
	return s.scheduler.Start()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Shutdown()
	s.logger.Info("task scheduler stopped")
}

// registerTasks registers all periodic tasks. An empty refresh cron disables
// the analytics prewarm.
func (s *Scheduler) registerTasks() error {
	if s.refreshCron == "" {
		s.logger.Warn("analytics refresh disabled")
		return nil
	}
	if err := s.RegisterCustomTask(s.refreshCron, TaskTypeAnalyticsRefresh, nil, RefreshOptions()...); err != nil {
		return err
	}
	s.logger.Info("registered all periodic tasks")
	return nil
}

// RegisterCustomTask registers a custom periodic task
func (s *Scheduler) RegisterCustomTask(spec string, taskType string, payload []byte, opts ...asynq.Option) error {
	next, err := NextRun(spec, time.Now().UTC())
	if err != nil {
		return err
	}
	entryID, err := s.scheduler.Register(spec, asynq.NewTask(taskType, payload, opts...))
	if err != nil {
		return fmt.Errorf("failed to register custom task: %w", err)
	}

	s.logger.Info("registered custom task %s %s %s (next run %s)", taskType, spec, entryID, next.Format(time.RFC3339))
	return nil
}
