package models

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"dooh/internal/config"
	console "dooh/internal/utils/logger"
)

var log = console.New("SEEDER")

// CreateAdminFromEnv creates the first admin identity and its profile when
// ADMIN_EMAIL and ADMIN_PASSWORD are set. It is a no-op once an admin profile
// exists.
func CreateAdminFromEnv(db *gorm.DB, cfg *config.Config) error {
	var count int64
	if err := db.Model(&UserProfile{}).Where("role = ?", UserRoleAdmin).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	log.Info("Admin count: %d", count)
	if count > 0 {
		return nil
	}

	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		log.Warn("ADMIN_EMAIL / ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	metadata, err := SignupMetadata{Role: UserRoleAdmin, BusinessName: cfg.Admin.BusinessName}.JSON()
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		user := User{
			Email:    cfg.Admin.Email,
			Password: string(hashedPassword),
			Metadata: metadata,
		}
		err := tx.Where("email = ?", user.Email).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = tx.Create(&user).Error
		}
		if err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		profile := UserProfile{
			UserID:       user.ID,
			Role:         UserRoleAdmin,
			BusinessName: cfg.Admin.BusinessName,
			ContactEmail: user.Email,
			IsVerified:   true,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to create admin profile: %w", err)
		}
		log.Success("Seeded admin %s", user.Email)
		return nil
	})
}
