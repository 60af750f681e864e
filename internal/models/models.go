package models

import (
	"time"

	"gorm.io/datatypes"
)

type Screen struct {
	Base
	OwnerID    string       `gorm:"type:uuid;not null;index" json:"ownerId"`
	Owner      *UserProfile `gorm:"foreignKey:OwnerID;references:UserID" json:"owner,omitempty"`
	Name       string       `gorm:"not null" json:"name" validate:"required,min=2"`
	Location   string       `gorm:"not null" json:"location" validate:"required"`
	Address    string       `json:"address"`
	ScreenType string       `gorm:"not null" json:"screenType" validate:"required"`
	SizeInches float64      `json:"sizeInches" validate:"gte=0"`
	Resolution string       `json:"resolution"`
	HourlyRate float64      `gorm:"type:decimal(12,2);not null" json:"hourlyRate" validate:"gt=0"`
	Currency   string       `gorm:"not null;default:'USD'" json:"currency"`
	IsActive   bool         `gorm:"not null;default:true" json:"isActive"`
}

type Campaign struct {
	Base
	AdvertiserID string         `gorm:"type:uuid;not null;index" json:"advertiserId"`
	Name         string         `gorm:"not null" json:"name" validate:"required,min=2"`
	Description  *string        `json:"description,omitempty"`
	Budget       float64        `gorm:"type:decimal(12,2);not null" json:"budget" validate:"gt=0"`
	StartDate    time.Time      `gorm:"type:date;not null" json:"startDate"`
	EndDate      time.Time      `gorm:"type:date;not null" json:"endDate"`
	Status       CampaignStatus `gorm:"not null;default:'draft'" json:"status" validate:"required,campaign_status"`
	CreativeID   *string        `gorm:"type:uuid" json:"creativeId"`
	Creative     *Creative      `gorm:"foreignKey:CreativeID" json:"creative,omitempty"`
}

// IsRunning reports whether an active campaign's dates cover now.
func (c *Campaign) IsRunning(now time.Time) bool {
	return c.Status == CampaignStatusActive && !now.Before(c.StartDate) && !now.After(endOfDay(c.EndDate))
}

// IsUpcoming reports whether an active campaign has not started yet.
func (c *Campaign) IsUpcoming(now time.Time) bool {
	return c.Status == CampaignStatusActive && now.Before(c.StartDate)
}

func endOfDay(t time.Time) time.Time {
	return t.Truncate(24 * time.Hour).Add(24*time.Hour - time.Nanosecond)
}

type Creative struct {
	Base
	CampaignID      string  `gorm:"type:uuid;not null;index" json:"campaignId"`
	AdvertiserID    string  `gorm:"type:uuid;not null" json:"advertiserId"`
	Title           string  `gorm:"not null" json:"title"`
	Description     *string `json:"description,omitempty"`
	PublicURL       string  `gorm:"not null" json:"publicUrl"`
	FileType        string  `gorm:"not null" json:"fileType"`
	StoragePath     string  `gorm:"not null" json:"storagePath"`
	DurationSeconds *int    `json:"durationSeconds,omitempty"`
}

type Booking struct {
	Base
	CampaignID    string        `gorm:"type:uuid;not null;index" json:"campaignId"`
	Campaign      *Campaign     `json:"campaign,omitempty"`
	ScreenID      string        `gorm:"type:uuid;not null;index" json:"screenId"`
	Screen        *Screen       `json:"screen,omitempty"`
	StartDatetime time.Time     `gorm:"not null" json:"startDatetime"`
	EndDatetime   time.Time     `gorm:"not null" json:"endDatetime"`
	TotalCost     float64       `gorm:"type:decimal(12,2);not null" json:"totalCost"`
	Status        BookingStatus `gorm:"not null;default:'pending'" json:"status" validate:"required,booking_status"`
}

// View partitions the booking for display. Approved bookings whose window has
// ended read as completed; nothing is written back.
func (b *Booking) View(now time.Time) BookingView {
	switch {
	case b.Status == BookingStatusPending:
		return BookingViewPending
	case b.Status == BookingStatusApproved && !b.EndDatetime.Before(now):
		return BookingViewActive
	default:
		return BookingViewCompleted
	}
}

type Notification struct {
	Base
	RecipientID string           `gorm:"type:uuid;not null;index" json:"recipientId"`
	Type        NotificationType `gorm:"not null" json:"type"`
	Title       string           `gorm:"not null" json:"title"`
	Message     string           `gorm:"not null" json:"message"`
	Data        datatypes.JSON   `gorm:"type:jsonb" json:"data,omitempty"`
	IsRead      bool             `gorm:"not null;default:false" json:"isRead"`
}
