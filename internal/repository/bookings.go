package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dooh/internal/models"
	"dooh/internal/services"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error)
}

func (r *BookingRepository) Get(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	err := r.db.WithContext(ctx).
		Preload("Campaign").
		Preload("Screen").
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *BookingRepository) ApprovedOverlapping(ctx context.Context, screenID string, start, end time.Time, excludeID string) ([]models.Booking, error) {
	q := r.db.WithContext(ctx).
		Where("screen_id = ? AND status = ?", screenID, models.BookingStatusApproved).
		Where("start_datetime < ? AND end_datetime > ?", end, start)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var out []models.Booking
	return out, translate(q.Find(&out).Error)
}

func (r *BookingRepository) UpdateStatusIf(ctx context.Context, id string, from, to models.BookingStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *BookingRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Campaign").
		Preload("Screen")
}

func (r *BookingRepository) ListForAdvertiser(ctx context.Context, advertiserID string) ([]models.Booking, error) {
	var out []models.Booking
	err := r.withRelations(ctx).
		Joins("JOIN campaigns ON campaigns.id = bookings.campaign_id").
		Where("campaigns.advertiser_id = ?", advertiserID).
		Order("bookings.created_at DESC").
		Find(&out).Error
	return out, translate(err)
}

func (r *BookingRepository) ListForOwner(ctx context.Context, ownerID string) ([]models.Booking, error) {
	var out []models.Booking
	err := r.withRelations(ctx).
		Joins("JOIN screens ON screens.id = bookings.screen_id").
		Where("screens.owner_id = ?", ownerID).
		Order("bookings.created_at DESC").
		Find(&out).Error
	return out, translate(err)
}

func (r *BookingRepository) ApprovedForOwnerSince(ctx context.Context, ownerID string, since time.Time) ([]models.Booking, error) {
	var out []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Campaign.Creative").
		Preload("Screen").
		Joins("JOIN screens ON screens.id = bookings.screen_id").
		Where("screens.owner_id = ? AND bookings.status = ? AND bookings.end_datetime >= ?", ownerID, models.BookingStatusApproved, since).
		Order("bookings.start_datetime ASC").
		Find(&out).Error
	return out, translate(err)
}

// WithScreenLock runs fn inside a transaction holding SELECT ... FOR UPDATE
// on the screen row, serialising overlap checks per screen.
func (r *BookingRepository) WithScreenLock(ctx context.Context, screenID string, fn func(tx services.BookingStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var screen models.Screen
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&screen, "id = ?", screenID).Error
		if err != nil {
			return translate(err)
		}
		return fn(&BookingRepository{db: tx})
	})
}
