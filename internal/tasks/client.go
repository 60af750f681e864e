package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"dooh/internal/config"
	"dooh/internal/services"
	"dooh/internal/utils/logger"
)

// enqueuer is the part of *asynq.Client the TaskClient uses.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// TaskClient handles task enqueuing with improved error handling and context support
type TaskClient struct {
	client enqueuer
	logger *logger.Logger
}

// RedisOpt converts the app's Redis settings into asynq's connection option.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewTaskClient creates a new TaskClient with the given Redis configuration
func NewTaskClient(cfg config.RedisConfig) *TaskClient {
	return newTaskClient(asynq.NewClient(RedisOpt(cfg)))
}

func newTaskClient(client enqueuer) *TaskClient {
	return &TaskClient{
		client: client,
		logger: logger.New("TASKS"),
	}
}

// Close closes the underlying asynq client
func (c *TaskClient) Close() error {
	return c.client.Close()
}

// EnqueueBookingNotify queues the notification for a booking event. A task
// already queued for the same booking and status is not an error.
func (c *TaskClient) EnqueueBookingNotify(ctx context.Context, topic string, ev services.BookingEvent) error {
	p := BookingNotifyPayload{Topic: topic, Event: ev}
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode booking event: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx, asynq.NewTask(TaskTypeBookingNotify, payload), NotifyOptions(p)...)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		c.logger.Debug("Notification for booking %s (%s) already queued", ev.BookingID, ev.Status)
		return nil
	}
	if err != nil {
		return c.logger.Error("Failed to enqueue %s for booking %s", err, TaskTypeBookingNotify, ev.BookingID)
	}
	c.logger.Debug("Enqueued %s id=%s queue=%s", TaskTypeBookingNotify, info.ID, info.Queue)
	return nil
}

// EnqueueAnalyticsRefresh queues an immediate cache prewarm.
func (c *TaskClient) EnqueueAnalyticsRefresh(ctx context.Context) error {
	_, err := c.client.EnqueueContext(ctx, asynq.NewTask(TaskTypeAnalyticsRefresh, nil), RefreshOptions()...)
	if err != nil {
		return c.logger.Error("Failed to enqueue %s", err, TaskTypeAnalyticsRefresh)
	}
	return nil
}
