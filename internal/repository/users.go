package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"dooh/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := models.GetUserByEmail(email, r.db.WithContext(ctx))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

type AuthAuditRepository struct {
	db *gorm.DB
}

func NewAuthAuditRepository(db *gorm.DB) *AuthAuditRepository {
	return &AuthAuditRepository{db: db}
}

func (r *AuthAuditRepository) Record(ctx context.Context, tx *models.AuthTransaction) error {
	return translate(r.db.WithContext(ctx).Create(tx).Error)
}

func (r *AuthAuditRepository) Revoke(ctx context.Context, sessionID string, at time.Time) error {
	return translate(r.db.WithContext(ctx).
		Model(&models.AuthTransaction{}).
		Where("session_id = ? AND revoked_at IS NULL", sessionID).
		Update("revoked_at", at).Error)
}
