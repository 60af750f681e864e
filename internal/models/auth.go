package models

import (
	"time"

	"gorm.io/datatypes"
)

// User is the authenticated identity. Metadata holds what the user declared at
// signup ({"role": ..., "business_name": ...}) and is never rewritten by
// profile changes.
type User struct {
	Base
	Email    string         `gorm:"uniqueIndex;not null" json:"email"`
	Password string         `gorm:"not null" json:"-"`
	Metadata datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
}

type AuthTransaction struct {
	Base
	UserID    string     `gorm:"type:uuid;not null" json:"userId"`
	User      *User      `json:"user,omitempty"`
	SessionID string     `gorm:"not null;index" json:"sessionId"`
	IPAddress string     `json:"ipAddress"`
	UserAgent string     `json:"userAgent"`
	ExpiresAt time.Time  `json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}

type UserProfile struct {
	Base
	UserID       string   `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	Role         UserRole `gorm:"not null;default:'advertiser'" json:"role" validate:"required,user_role"`
	BusinessName string   `gorm:"not null" json:"businessName" validate:"required,min=2"`
	ContactEmail string   `gorm:"not null" json:"contactEmail" validate:"required,email"`
	Phone        *string  `json:"phone,omitempty"`
	Website      *string  `json:"website,omitempty" validate:"omitempty,url"`
	Description  *string  `json:"description,omitempty"`
	IsVerified   bool     `gorm:"not null;default:false" json:"isVerified"`
}
