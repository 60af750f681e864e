package tasks

import (
	"time"

	"dooh/internal/services"
)

// Task Types
const (
	TaskTypeBookingNotify    = "booking:notify"
	TaskTypeAnalyticsRefresh = "analytics:refresh"
)

// Task Queues
const (
	QueueCritical = "critical" // Notifications users are waiting on
	QueueDefault  = "default"  // For regular tasks
	QueueLow      = "low"      // Cache prewarming
)

// Task Timeouts
const (
	TimeoutShort  = 1 * time.Minute
	TimeoutMedium = 5 * time.Minute
)

// Task Retry Settings
const (
	RetryDefault = 3
	RetryMin     = 1
)

// BookingNotifyPayload carries a booking lifecycle event to the worker.
type BookingNotifyPayload struct {
	Topic string                `json:"topic"`
	Event services.BookingEvent `json:"event"`
}
