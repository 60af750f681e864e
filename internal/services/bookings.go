package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"dooh/internal/events"
	"dooh/internal/models"
	"dooh/internal/utils/logger"
)

type BookingRequest struct {
	CampaignID string
	ScreenID   string
	Start      time.Time
	End        time.Time
	// TotalCost is used as given when positive; otherwise it is priced from
	// the screen's hourly rate.
	TotalCost float64
}

// BookingBoard is a role-filtered booking list split into display partitions.
type BookingBoard struct {
	Pending   []models.Booking `json:"pending"`
	Active    []models.Booking `json:"active"`
	Completed []models.Booking `json:"completed"`
}

type BulkBookingResult struct {
	ScreenID string          `json:"screenId"`
	Booking  *models.Booking `json:"booking,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type ScheduleEntry struct {
	models.Booking
	NowPlaying bool `json:"nowPlaying"`
}

// BookingEvent is emitted on the event bus after a booking is created or
// changes status.
type BookingEvent struct {
	BookingID    string               `json:"bookingId"`
	Status       models.BookingStatus `json:"status"`
	CampaignID   string               `json:"campaignId"`
	CampaignName string               `json:"campaignName"`
	AdvertiserID string               `json:"advertiserId"`
	ScreenID     string               `json:"screenId"`
	ScreenName   string               `json:"screenName"`
	OwnerID      string               `json:"ownerId"`
	Start        time.Time            `json:"start"`
	End          time.Time            `json:"end"`
}

type BookingService struct {
	bookings  BookingStore
	campaigns CampaignStore
	screens   ScreenStore
	limiter   RateLimiter
	events    events.Emitter
	log       *logger.Logger
	now       func() time.Time
}

func NewBookingService(bookings BookingStore, campaigns CampaignStore, screens ScreenStore, limiter RateLimiter, emitter events.Emitter) *BookingService {
	return &BookingService{
		bookings:  bookings,
		campaigns: campaigns,
		screens:   screens,
		limiter:   limiter,
		events:    emitter,
		log:       logger.New("BOOKINGS"),
		now:       time.Now,
	}
}

// Create files a pending booking request. It never writes the campaign or
// screen rows. The request is refused when an approved booking on the same
// screen overlaps the window.
func (s *BookingService) Create(ctx context.Context, actorID string, req BookingRequest) (*models.Booking, error) {
	if req.CampaignID == "" || req.ScreenID == "" {
		return nil, validationError("campaign and screen are required")
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return nil, validationError("start and end time are required")
	}
	if !req.End.After(req.Start) {
		return nil, validationError("end time must be after start time")
	}
	if req.TotalCost < 0 {
		return nil, validationError("total cost cannot be negative")
	}

	campaign, err := s.campaigns.Get(ctx, req.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("campaign %s: %w", req.CampaignID, err)
	}
	if campaign.AdvertiserID != actorID {
		return nil, ErrForbidden
	}

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, actorID)
		if err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
		if !ok {
			return nil, ErrRateLimited
		}
	}

	screen, err := s.screens.Get(ctx, req.ScreenID)
	if err != nil {
		return nil, fmt.Errorf("screen %s: %w", req.ScreenID, err)
	}
	if !screen.IsActive {
		return nil, validationError("screen %q is not accepting bookings", screen.Name)
	}

	booking := &models.Booking{
		CampaignID:    campaign.ID,
		ScreenID:      screen.ID,
		StartDatetime: req.Start,
		EndDatetime:   req.End,
		TotalCost:     req.TotalCost,
		Status:        models.BookingStatusPending,
	}
	if booking.TotalCost == 0 {
		booking.TotalCost = PriceBooking(screen.HourlyRate, req.Start, req.End)
	}

	err = s.bookings.WithScreenLock(ctx, screen.ID, func(tx BookingStore) error {
		if err := s.ensureNoApprovedOverlap(ctx, tx, booking); err != nil {
			return err
		}
		return tx.Create(ctx, booking)
	})
	if err != nil {
		if errors.Is(err, ErrBookingConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.log.Info("Booking %s requested on screen %s", booking.ID, screen.ID)
	s.emit(events.BookingCreated, booking, campaign, screen)
	return booking, nil
}

// CreateMany files one independent request per selected screen.
func (s *BookingService) CreateMany(ctx context.Context, actorID, campaignID string, screenIDs []string, start, end time.Time) ([]BulkBookingResult, error) {
	sel := NewSelection(screenIDs...)
	if sel.Len() == 0 {
		return nil, validationError("no screens selected")
	}
	results := make([]BulkBookingResult, 0, sel.Len())
	for _, id := range sel.IDs() {
		b, err := s.Create(ctx, actorID, BookingRequest{CampaignID: campaignID, ScreenID: id, Start: start, End: end})
		r := BulkBookingResult{ScreenID: id, Booking: b}
		if err != nil {
			if errors.Is(err, ErrForbidden) {
				return nil, err
			}
			r.Error = err.Error()
		}
		results = append(results, r)
	}
	return results, nil
}

// Transition moves a pending booking to approved or rejected on behalf of the
// screen owner. The write is conditional on the booking still being pending.
func (s *BookingService) Transition(ctx context.Context, actorID, id string, target models.BookingStatus) (*models.Booking, error) {
	if target != models.BookingStatusApproved && target != models.BookingStatusRejected {
		return nil, fmt.Errorf("%w: cannot move a booking to %q", ErrInvalidTransition, target)
	}

	booking, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	screen := booking.Screen
	if screen == nil {
		if screen, err = s.screens.Get(ctx, booking.ScreenID); err != nil {
			return nil, err
		}
	}
	if screen.OwnerID != actorID {
		return nil, ErrForbidden
	}
	if booking.Status != models.BookingStatusPending {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidTransition, booking.Status)
	}

	update := func(tx BookingStore) error {
		changed, err := tx.UpdateStatusIf(ctx, booking.ID, models.BookingStatusPending, target)
		if err != nil {
			return err
		}
		if !changed {
			return ErrStaleBooking
		}
		return nil
	}

	if target == models.BookingStatusApproved {
		err = s.bookings.WithScreenLock(ctx, screen.ID, func(tx BookingStore) error {
			if err := s.ensureNoApprovedOverlap(ctx, tx, booking); err != nil {
				return err
			}
			return update(tx)
		})
	} else {
		err = update(s.bookings)
	}
	if err != nil {
		return nil, err
	}

	booking.Status = target
	s.log.Info("Booking %s %s by %s", booking.ID, target, actorID)

	campaign := booking.Campaign
	if campaign == nil {
		campaign, _ = s.campaigns.Get(ctx, booking.CampaignID)
	}
	s.emit(events.BookingUpdated, booking, campaign, screen)
	return booking, nil
}

func (s *BookingService) ensureNoApprovedOverlap(ctx context.Context, tx BookingStore, b *models.Booking) error {
	clashes, err := tx.ApprovedOverlapping(ctx, b.ScreenID, b.StartDatetime, b.EndDatetime, b.ID)
	if err != nil {
		return err
	}
	if len(clashes) > 0 {
		return ErrBookingConflict
	}
	return nil
}

// Board lists the viewer's bookings: advertisers see their campaigns'
// bookings, screen owners and admins see bookings on their screens.
func (s *BookingService) Board(ctx context.Context, viewerID string, role models.UserRole) (*BookingBoard, error) {
	var (
		list []models.Booking
		err  error
	)
	switch role {
	case models.UserRoleAdvertiser:
		list, err = s.bookings.ListForAdvertiser(ctx, viewerID)
	case models.UserRoleScreenOwner, models.UserRoleAdmin:
		list, err = s.bookings.ListForOwner(ctx, viewerID)
	default:
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return Partition(list, s.now()), nil
}

// Partition splits bookings into pending, active and completed as of now,
// keeping their order.
func Partition(list []models.Booking, now time.Time) *BookingBoard {
	board := &BookingBoard{
		Pending:   []models.Booking{},
		Active:    []models.Booking{},
		Completed: []models.Booking{},
	}
	for _, b := range list {
		switch b.View(now) {
		case models.BookingViewPending:
			board.Pending = append(board.Pending, b)
		case models.BookingViewActive:
			board.Active = append(board.Active, b)
		default:
			board.Completed = append(board.Completed, b)
		}
	}
	return board
}

// Schedule lists approved bookings on the owner's screens that have not
// ended, ordered by start.
func (s *BookingService) Schedule(ctx context.Context, ownerID string) ([]ScheduleEntry, error) {
	now := s.now()
	list, err := s.bookings.ApprovedForOwnerSince(ctx, ownerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	entries := make([]ScheduleEntry, 0, len(list))
	for _, b := range list {
		entries = append(entries, ScheduleEntry{
			Booking:    b,
			NowPlaying: !now.Before(b.StartDatetime) && now.Before(b.EndDatetime),
		})
	}
	return entries, nil
}

// PriceBooking charges every started hour at the hourly rate.
func PriceBooking(hourlyRate float64, start, end time.Time) float64 {
	hours := math.Ceil(end.Sub(start).Hours())
	return math.Round(hours*hourlyRate*100) / 100
}

func (s *BookingService) emit(topic string, b *models.Booking, c *models.Campaign, sc *models.Screen) {
	if s.events == nil {
		return
	}
	ev := BookingEvent{
		BookingID:  b.ID,
		Status:     b.Status,
		CampaignID: b.CampaignID,
		ScreenID:   b.ScreenID,
		Start:      b.StartDatetime,
		End:        b.EndDatetime,
	}
	if c != nil {
		ev.CampaignName = c.Name
		ev.AdvertiserID = c.AdvertiserID
	}
	if sc != nil {
		ev.ScreenName = sc.Name
		ev.OwnerID = sc.OwnerID
	}
	s.events.Emit(topic, ev)
}
