package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"gorm.io/datatypes"

	"dooh/internal/events"
	"dooh/internal/models"
	"dooh/internal/services"
	"dooh/internal/utils/logger"
)

// Refresher prewarms the analytics cache.
type Refresher interface {
	RefreshAll(ctx context.Context) (int, error)
}

// TaskHandler handles task processing with improved error handling and logging
type TaskHandler struct {
	notifications services.NotificationStore
	analytics     Refresher
	logger        *logger.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(notifications services.NotificationStore, analytics Refresher) *TaskHandler {
	return &TaskHandler{
		notifications: notifications,
		analytics:     analytics,
		logger:        logger.New("task_handler"),
	}
}

// HandleBookingNotify writes the in-app notification for the counterpart of
// a booking event: the screen owner on request, the advertiser on decision.
func (h *TaskHandler) HandleBookingNotify(ctx context.Context, t *asynq.Task) error {
	var p BookingNotifyPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("invalid %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}

	n, ok := buildNotification(p)
	if !ok {
		h.logger.Warn("Ignoring %s event for booking %s with status %s", p.Topic, p.Event.BookingID, p.Event.Status)
		return nil
	}

	if err := h.notifications.Create(ctx, n); err != nil {
		return h.logger.Error("Failed to store notification for booking %s", err, p.Event.BookingID)
	}
	h.logger.Success("Notified %s about booking %s (%s)", n.RecipientID, p.Event.BookingID, n.Type)
	return nil
}

func buildNotification(p BookingNotifyPayload) (*models.Notification, bool) {
	ev := p.Event
	window := fmt.Sprintf("%s to %s", ev.Start.UTC().Format("Jan 2 15:04"), ev.End.UTC().Format("Jan 2 15:04 MST"))
	data, _ := json.Marshal(ev)

	n := &models.Notification{Data: datatypes.JSON(data)}
	switch {
	case p.Topic == events.BookingCreated:
		n.RecipientID = ev.OwnerID
		n.Type = models.NotificationBookingRequested
		n.Title = "New booking request"
		n.Message = fmt.Sprintf("%s requested %s for %s.", ev.CampaignName, ev.ScreenName, window)
	case p.Topic == events.BookingUpdated && ev.Status == models.BookingStatusApproved:
		n.RecipientID = ev.AdvertiserID
		n.Type = models.NotificationBookingApproved
		n.Title = "Booking approved"
		n.Message = fmt.Sprintf("Your booking of %s for %s was approved (%s).", ev.ScreenName, ev.CampaignName, window)
	case p.Topic == events.BookingUpdated && ev.Status == models.BookingStatusRejected:
		n.RecipientID = ev.AdvertiserID
		n.Type = models.NotificationBookingRejected
		n.Title = "Booking rejected"
		n.Message = fmt.Sprintf("Your booking of %s for %s was rejected (%s).", ev.ScreenName, ev.CampaignName, window)
	default:
		return nil, false
	}
	if n.RecipientID == "" {
		return nil, false
	}
	return n, true
}

// HandleAnalyticsRefresh recomputes cached dashboards for active users.
func (h *TaskHandler) HandleAnalyticsRefresh(ctx context.Context, t *asynq.Task) error {
	n, err := h.analytics.RefreshAll(ctx)
	if err != nil {
		return h.logger.Error("Analytics refresh failed", err)
	}
	h.logger.Info("Refreshed analytics for %d users", n)
	return nil
}
