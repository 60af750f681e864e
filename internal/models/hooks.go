package models

import (
	"dooh/internal/events"

	"gorm.io/gorm"
)

func (p *UserProfile) AfterCreate(tx *gorm.DB) error {
	log.Info("Profile created for user %s as %s", p.UserID, p.Role)
	events.Emit(events.ProfileCreated, p)
	return nil
}

func (n *Notification) AfterCreate(tx *gorm.DB) error {
	events.Emit(events.NotificationCreated, n)
	return nil
}
