package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"dooh/internal/config"
	"dooh/internal/utils/logger"
)

var queuePriorities = map[string]int{
	QueueCritical: 6,
	QueueDefault:  3,
	QueueLow:      1,
}

// Server handles task processing
type Server struct {
	server      *asynq.Server
	handler     *TaskHandler
	concurrency int
	logger      *logger.Logger
}

// NewServer creates a new task processing server
func NewServer(redis config.RedisConfig, worker config.WorkerConfig, handler *TaskHandler) *Server {
	concurrency := worker.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	log := logger.New("WORKER")
	server := asynq.NewServer(
		RedisOpt(redis),
		asynq.Config{
			Concurrency:    concurrency,
			Queues:         queuePriorities,
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				log.Warn("task %s failed (attempt %d/%d): %v", task.Type(), retried+1, maxRetry+1, err)
			}),
		},
	)

	return &Server{
		server:      server,
		handler:     handler,
		concurrency: concurrency,
		logger:      log,
	}
}

// Mux routes task types to their handlers.
func (s *Server) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeBookingNotify, s.handler.HandleBookingNotify)
	mux.HandleFunc(TaskTypeAnalyticsRefresh, s.handler.HandleAnalyticsRefresh)
	return mux
}

// Start starts the task processing server
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting task processing server concurrency %d queues %v", s.concurrency, queuePriorities)

	if err := s.server.Start(s.Mux()); err != nil {
		return fmt.Errorf("failed to start task server: %w", err)
	}
	return nil
}

// Stop stops pulling new tasks from the queues.
func (s *Server) Stop() {
	s.server.Stop()
	s.logger.Info("task processing server stopped")
}

// Shutdown gracefully shuts down the task processing server
func (s *Server) Shutdown() {
	s.logger.Info("shutting down task processing server")
	s.server.Shutdown()
}
