package handlers

import (
	"context"
	"time"

	"dooh/internal/models"
	"dooh/internal/services"
	"dooh/internal/session"
)

// AuthManager is the slice of services.AuthService the handlers use.
type AuthManager interface {
	SignUp(ctx context.Context, in services.SignUpInput) (*models.User, error)
	SignIn(ctx context.Context, email, password string, client services.ClientInfo) (*services.SignInResult, error)
	SignOut(ctx context.Context, sess *session.Session) error
	ResolveSession(ctx context.Context, sess *session.Session) (*session.Session, error)
	UpdateProfile(ctx context.Context, sess *session.Session, in services.ProfileUpdate) (*session.Session, error)
}

type CampaignManager interface {
	CreateCampaign(ctx context.Context, advertiserID string, in services.CreateCampaignInput) (*services.CreateCampaignResult, error)
	ListCampaigns(ctx context.Context, advertiserID string) (*services.CampaignList, error)
	SetCampaignStatus(ctx context.Context, actorID, id string, status models.CampaignStatus) (*models.Campaign, error)
}

type ScreenManager interface {
	CreateScreen(ctx context.Context, ownerID string, in services.ScreenInput) (*models.Screen, error)
	ListOwnScreens(ctx context.Context, ownerID string) ([]models.Screen, error)
	SetScreenActive(ctx context.Context, actorID, id string, active bool) (*models.Screen, error)
	UpdateScreen(ctx context.Context, actorID, id string, in services.ScreenInput) (*models.Screen, error)
}

type Discoverer interface {
	Search(ctx context.Context, filter services.ScreenFilter) ([]services.ScreenListing, error)
	Intent(ctx context.Context, screenIDs []string) (*services.BookingIntent, error)
}

type BookingManager interface {
	Create(ctx context.Context, actorID string, req services.BookingRequest) (*models.Booking, error)
	CreateMany(ctx context.Context, actorID, campaignID string, screenIDs []string, start, end time.Time) ([]services.BulkBookingResult, error)
	Transition(ctx context.Context, actorID, id string, target models.BookingStatus) (*models.Booking, error)
	Board(ctx context.Context, viewerID string, role models.UserRole) (*services.BookingBoard, error)
	Schedule(ctx context.Context, ownerID string) ([]services.ScheduleEntry, error)
}

type AnalyticsProvider interface {
	Dashboard(ctx context.Context, userID string, role models.UserRole, r services.AnalyticsRange) (*services.Analytics, error)
}
