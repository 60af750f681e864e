package session

import (
	"time"

	"dooh/internal/models"
)

// Session is the signed-in identity together with its resolved profile. It is
// created on sign-in, replaced when the profile changes and removed on
// sign-out.
type Session struct {
	ID        string              `json:"id"`
	UserID    string              `json:"userId"`
	Email     string              `json:"email"`
	Profile   *models.UserProfile `json:"profile"`
	Notice    string              `json:"notice,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
	ExpiresAt time.Time           `json:"expiresAt"`
}

// Role is the profile role, or "" when no profile could be resolved.
func (s *Session) Role() models.UserRole {
	if s == nil || s.Profile == nil {
		return ""
	}
	return s.Profile.Role
}

// HasRole reports whether the session has a profile with one of roles.
func (s *Session) HasRole(roles ...models.UserRole) bool {
	r := s.Role()
	if r == "" {
		return false
	}
	for _, want := range roles {
		if r == want {
			return true
		}
	}
	return false
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
