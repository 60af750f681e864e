package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"dooh/internal/api/middleware"
	"dooh/internal/api/validator"
	"dooh/internal/models"
	"dooh/internal/services"
	"dooh/internal/session"
)

type mockAuth struct{ mock.Mock }

func (m *mockAuth) SignUp(ctx context.Context, in services.SignUpInput) (*models.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockAuth) SignIn(ctx context.Context, email, password string, client services.ClientInfo) (*services.SignInResult, error) {
	args := m.Called(ctx, email, password, client)
	r, _ := args.Get(0).(*services.SignInResult)
	return r, args.Error(1)
}

func (m *mockAuth) SignOut(ctx context.Context, sess *session.Session) error {
	return m.Called(ctx, sess).Error(0)
}

func (m *mockAuth) ResolveSession(ctx context.Context, sess *session.Session) (*session.Session, error) {
	args := m.Called(ctx, sess)
	s, _ := args.Get(0).(*session.Session)
	return s, args.Error(1)
}

func (m *mockAuth) UpdateProfile(ctx context.Context, sess *session.Session, in services.ProfileUpdate) (*session.Session, error) {
	args := m.Called(ctx, sess, in)
	s, _ := args.Get(0).(*session.Session)
	return s, args.Error(1)
}

type mockCampaigns struct{ mock.Mock }

func (m *mockCampaigns) CreateCampaign(ctx context.Context, advertiserID string, in services.CreateCampaignInput) (*services.CreateCampaignResult, error) {
	args := m.Called(ctx, advertiserID, in)
	r, _ := args.Get(0).(*services.CreateCampaignResult)
	return r, args.Error(1)
}

func (m *mockCampaigns) ListCampaigns(ctx context.Context, advertiserID string) (*services.CampaignList, error) {
	args := m.Called(ctx, advertiserID)
	r, _ := args.Get(0).(*services.CampaignList)
	return r, args.Error(1)
}

func (m *mockCampaigns) SetCampaignStatus(ctx context.Context, actorID, id string, status models.CampaignStatus) (*models.Campaign, error) {
	args := m.Called(ctx, actorID, id, status)
	r, _ := args.Get(0).(*models.Campaign)
	return r, args.Error(1)
}

type mockScreens struct{ mock.Mock }

func (m *mockScreens) CreateScreen(ctx context.Context, ownerID string, in services.ScreenInput) (*models.Screen, error) {
	args := m.Called(ctx, ownerID, in)
	r, _ := args.Get(0).(*models.Screen)
	return r, args.Error(1)
}

func (m *mockScreens) ListOwnScreens(ctx context.Context, ownerID string) ([]models.Screen, error) {
	args := m.Called(ctx, ownerID)
	r, _ := args.Get(0).([]models.Screen)
	return r, args.Error(1)
}

func (m *mockScreens) SetScreenActive(ctx context.Context, actorID, id string, active bool) (*models.Screen, error) {
	args := m.Called(ctx, actorID, id, active)
	r, _ := args.Get(0).(*models.Screen)
	return r, args.Error(1)
}

func (m *mockScreens) UpdateScreen(ctx context.Context, actorID, id string, in services.ScreenInput) (*models.Screen, error) {
	args := m.Called(ctx, actorID, id, in)
	r, _ := args.Get(0).(*models.Screen)
	return r, args.Error(1)
}

type mockDiscovery struct{ mock.Mock }

func (m *mockDiscovery) Search(ctx context.Context, filter services.ScreenFilter) ([]services.ScreenListing, error) {
	args := m.Called(ctx, filter)
	r, _ := args.Get(0).([]services.ScreenListing)
	return r, args.Error(1)
}

func (m *mockDiscovery) Intent(ctx context.Context, ids []string) (*services.BookingIntent, error) {
	args := m.Called(ctx, ids)
	r, _ := args.Get(0).(*services.BookingIntent)
	return r, args.Error(1)
}

type mockBookings struct{ mock.Mock }

func (m *mockBookings) Create(ctx context.Context, actorID string, req services.BookingRequest) (*models.Booking, error) {
	args := m.Called(ctx, actorID, req)
	r, _ := args.Get(0).(*models.Booking)
	return r, args.Error(1)
}

func (m *mockBookings) CreateMany(ctx context.Context, actorID, campaignID string, ids []string, start, end time.Time) ([]services.BulkBookingResult, error) {
	args := m.Called(ctx, actorID, campaignID, ids, start, end)
	r, _ := args.Get(0).([]services.BulkBookingResult)
	return r, args.Error(1)
}

func (m *mockBookings) Transition(ctx context.Context, actorID, id string, target models.BookingStatus) (*models.Booking, error) {
	args := m.Called(ctx, actorID, id, target)
	r, _ := args.Get(0).(*models.Booking)
	return r, args.Error(1)
}

func (m *mockBookings) Board(ctx context.Context, viewerID string, role models.UserRole) (*services.BookingBoard, error) {
	args := m.Called(ctx, viewerID, role)
	r, _ := args.Get(0).(*services.BookingBoard)
	return r, args.Error(1)
}

func (m *mockBookings) Schedule(ctx context.Context, ownerID string) ([]services.ScheduleEntry, error) {
	args := m.Called(ctx, ownerID)
	r, _ := args.Get(0).([]services.ScheduleEntry)
	return r, args.Error(1)
}

type mockAnalytics struct{ mock.Mock }

func (m *mockAnalytics) Dashboard(ctx context.Context, userID string, role models.UserRole, r services.AnalyticsRange) (*services.Analytics, error) {
	args := m.Called(ctx, userID, role, r)
	out, _ := args.Get(0).(*services.Analytics)
	return out, args.Error(1)
}

// newContext builds an echo context carrying a session for role.
func newContext(t *testing.T, method, target, contentType string, body io.Reader, sess *session.Session) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validator.NewValidator()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sess != nil {
		middleware.SetSession(c, sess)
	}
	return c, rec
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

func sessionFor(userID string, role models.UserRole) *session.Session {
	return &session.Session{
		ID:     "sess-" + userID,
		UserID: userID,
		Email:  userID + "@example.com",
		Profile: &models.UserProfile{
			UserID:       userID,
			Role:         role,
			BusinessName: "Acme",
		},
	}
}
