package tasks

import (
	"context"
	"time"

	"dooh/internal/events"
	"dooh/internal/models"
	"dooh/internal/services"
	"dooh/internal/utils/logger"
)

// BookingNotifier queues booking notifications.
type BookingNotifier interface {
	EnqueueBookingNotify(ctx context.Context, topic string, ev services.BookingEvent) error
}

// Subscriber is the part of the event bus the listener needs.
type Subscriber interface {
	On(topic string, handler events.EventHandler)
}

const enqueueTimeout = 5 * time.Second

// ListenBookingEvents forwards booking events from the bus to the task queue.
// Enqueue failures are logged; the booking itself has already been written.
func ListenBookingEvents(bus Subscriber, notifier BookingNotifier) {
	log := logger.New("LISTENER")
	for _, topic := range []string{events.BookingCreated, events.BookingUpdated} {
		bus.On(topic, func(data interface{}) {
			ev, ok := data.(services.BookingEvent)
			if !ok {
				log.Warn("unexpected payload %T on %s", data, topic)
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
			defer cancel()
			if err := notifier.EnqueueBookingNotify(ctx, topic, ev); err != nil {
				log.Warn("booking %s notification not queued: %v", ev.BookingID, err)
			}
		})
	}
}

// LogLifecycleEvents records profile and notification changes emitted by
// model hooks and the notification endpoints.
func LogLifecycleEvents(bus Subscriber) {
	log := logger.New("LIFECYCLE")
	bus.On(events.ProfileCreated, func(data interface{}) {
		if p, ok := data.(*models.UserProfile); ok {
			log.Debug("profile %s created for user %s", p.ID, p.UserID)
		}
	})
	bus.On(events.NotificationCreated, func(data interface{}) {
		if n, ok := data.(*models.Notification); ok {
			log.Debug("notification %s (%s) stored for %s", n.ID, n.Type, n.RecipientID)
		}
	})
	bus.On(events.NotificationUpdated, func(data interface{}) {
		log.Debug("notification %v marked read", data)
	})
}
