package tasks

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
)

// NotifyOptions are applied to booking notification tasks. The task id is
// derived from the booking and status, so a re-emitted event is not
// delivered twice.
func NotifyOptions(p BookingNotifyPayload) []asynq.Option {
	return []asynq.Option{
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(RetryDefault),
		asynq.Timeout(TimeoutShort),
		asynq.TaskID(fmt.Sprintf("notify:%s:%s", p.Event.BookingID, p.Event.Status)),
		asynq.Retention(24 * time.Hour),
	}
}

// RefreshOptions are applied to analytics refresh tasks.
func RefreshOptions() []asynq.Option {
	return []asynq.Option{
		asynq.Queue(QueueLow),
		asynq.MaxRetry(RetryMin),
		asynq.Timeout(TimeoutMedium),
	}
}

// ParseCronSpec validates a standard five-field cron expression.
func ParseCronSpec(spec string) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return schedule, nil
}

// NextRun reports when spec next fires after now.
func NextRun(spec string, now time.Time) (time.Time, error) {
	schedule, err := ParseCronSpec(spec)
	if err != nil {
		return time.Time{}, err
	}
	return schedule.Next(now), nil
}
