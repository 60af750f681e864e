package repository

import (
	"context"

	"gorm.io/gorm"

	"dooh/internal/models"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// Create inserts the profile. The unique user_id index turns a lost race
// into ErrDuplicate.
func (r *ProfileRepository) Create(ctx context.Context, p *models.UserProfile) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *ProfileRepository) UpdateRole(ctx context.Context, userID string, role models.UserRole) error {
	return affected(r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Update("role", role))
}

func (r *ProfileRepository) Update(ctx context.Context, p *models.UserProfile) error {
	return affected(r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("user_id = ?", p.UserID).
		Select("role", "business_name", "contact_email", "phone", "website", "description").
		Updates(p))
}
