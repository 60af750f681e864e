package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"dooh/internal/models"
	"dooh/internal/services"
)

type ScreenRepository struct {
	db *gorm.DB
}

func NewScreenRepository(db *gorm.DB) *ScreenRepository {
	return &ScreenRepository{db: db}
}

func (r *ScreenRepository) Create(ctx context.Context, s *models.Screen) error {
	return translate(r.db.WithContext(ctx).Omit("Owner").Create(s).Error)
}

func (r *ScreenRepository) Get(ctx context.Context, id string) (*models.Screen, error) {
	var s models.Screen
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *ScreenRepository) GetMany(ctx context.Context, ids []string) ([]models.Screen, error) {
	var screens []models.Screen
	if len(ids) == 0 {
		return screens, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&screens).Error
	return screens, translate(err)
}

func (r *ScreenRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Screen, error) {
	var screens []models.Screen
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&screens).Error
	return screens, translate(err)
}

func (r *ScreenRepository) SearchActive(ctx context.Context, f services.ScreenFilter) ([]models.Screen, error) {
	q := r.db.WithContext(ctx).
		Preload("Owner").
		Where("is_active = ?", true)

	if term := strings.TrimSpace(f.Term); term != "" {
		like := "%" + escapeLike(term) + "%"
		q = q.Where("(name ILIKE ? OR location ILIKE ? OR address ILIKE ?)", like, like, like)
	}
	if f.ScreenType != "" {
		q = q.Where("LOWER(screen_type) = LOWER(?)", f.ScreenType)
	}
	if f.MaxHourlyRate > 0 {
		q = q.Where("hourly_rate <= ?", f.MaxHourlyRate)
	}
	if f.MinSizeInches > 0 {
		q = q.Where("size_inches >= ?", f.MinSizeInches)
	}

	var screens []models.Screen
	err := q.Order("created_at DESC").Find(&screens).Error
	return screens, translate(err)
}

func (r *ScreenRepository) SetActive(ctx context.Context, id string, active bool) error {
	return affected(r.db.WithContext(ctx).
		Model(&models.Screen{}).
		Where("id = ?", id).
		Update("is_active", active))
}

func (r *ScreenRepository) Update(ctx context.Context, s *models.Screen) error {
	return affected(r.db.WithContext(ctx).
		Model(&models.Screen{}).
		Where("id = ?", s.ID).
		Select("name", "location", "address", "screen_type", "size_inches", "resolution", "hourly_rate", "currency").
		Updates(s))
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
