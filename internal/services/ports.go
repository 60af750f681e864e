package services

import (
	"context"
	"time"

	"dooh/internal/models"
)

// Store contracts. Implementations return ErrNotFound for missing rows and
// ErrDuplicate for unique-key violations.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthAuditStore interface {
	Record(ctx context.Context, tx *models.AuthTransaction) error
	Revoke(ctx context.Context, sessionID string, at time.Time) error
}

type ProfileStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	Create(ctx context.Context, profile *models.UserProfile) error
	UpdateRole(ctx context.Context, userID string, role models.UserRole) error
	Update(ctx context.Context, profile *models.UserProfile) error
}

// ScreenFilter narrows discovery results. Zero fields are ignored.
type ScreenFilter struct {
	Term          string
	ScreenType    string
	MaxHourlyRate float64
	MinSizeInches float64
}

type ScreenStore interface {
	Create(ctx context.Context, screen *models.Screen) error
	Get(ctx context.Context, id string) (*models.Screen, error)
	GetMany(ctx context.Context, ids []string) ([]models.Screen, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Screen, error)
	// SearchActive returns active screens newest first with Owner preloaded.
	SearchActive(ctx context.Context, filter ScreenFilter) ([]models.Screen, error)
	SetActive(ctx context.Context, id string, active bool) error
	Update(ctx context.Context, screen *models.Screen) error
}

type CampaignStore interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	Get(ctx context.Context, id string) (*models.Campaign, error)
	// ListByAdvertiser returns campaigns newest first with Creative preloaded.
	ListByAdvertiser(ctx context.Context, advertiserID string) ([]models.Campaign, error)
	AttachCreative(ctx context.Context, campaignID, creativeID string) error
	SetStatus(ctx context.Context, id string, status models.CampaignStatus) error
}

type CreativeStore interface {
	Create(ctx context.Context, creative *models.Creative) error
}

type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	// Get preloads Campaign and Screen.
	Get(ctx context.Context, id string) (*models.Booking, error)
	// ApprovedOverlapping lists approved bookings on screenID intersecting
	// [start, end), skipping excludeID.
	ApprovedOverlapping(ctx context.Context, screenID string, start, end time.Time, excludeID string) ([]models.Booking, error)
	// UpdateStatusIf sets status to `to` only while it is still `from` and
	// reports whether a row changed.
	UpdateStatusIf(ctx context.Context, id string, from, to models.BookingStatus) (bool, error)
	// ListForAdvertiser / ListForOwner return bookings newest first with
	// Campaign and Screen preloaded.
	ListForAdvertiser(ctx context.Context, advertiserID string) ([]models.Booking, error)
	ListForOwner(ctx context.Context, ownerID string) ([]models.Booking, error)
	// ApprovedForOwnerSince lists approved bookings on the owner's screens
	// ending at or after since, ordered by start, with Campaign.Creative and
	// Screen preloaded.
	ApprovedForOwnerSince(ctx context.Context, ownerID string, since time.Time) ([]models.Booking, error)
	// WithScreenLock runs fn in a transaction holding a row lock on the
	// screen. The screen row is read, never written.
	WithScreenLock(ctx context.Context, screenID string, fn func(tx BookingStore) error) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

// RateLimiter admits or rejects one attempt for a key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// ObjectStorage stores a blob under key and returns its public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// Cache is a JSON value cache with expiry.
type Cache interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}
