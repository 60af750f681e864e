package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SignupMetadata is what a user declared when signing up.
type SignupMetadata struct {
	Role         UserRole `json:"role,omitempty"`
	BusinessName string   `json:"business_name,omitempty"`
}

// ParseSignupMetadata reads signup metadata from a jsonb column. Missing or
// malformed metadata yields the zero value.
func ParseSignupMetadata(raw datatypes.JSON) SignupMetadata {
	var m SignupMetadata
	if len(raw) == 0 {
		return m
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return SignupMetadata{}
	}
	return m
}

func (m SignupMetadata) JSON() (datatypes.JSON, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// GetUserByEmail retrieves a user from the database by email
func GetUserByEmail(email string, db *gorm.DB) (*User, error) {
	user := &User{}
	if err := db.Where("email = ?", email).First(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}
