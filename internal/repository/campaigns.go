package repository

import (
	"context"

	"gorm.io/gorm"

	"dooh/internal/models"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func (r *CampaignRepository) Create(ctx context.Context, c *models.Campaign) error {
	return translate(r.db.WithContext(ctx).Omit("Creative").Create(c).Error)
}

func (r *CampaignRepository) Get(ctx context.Context, id string) (*models.Campaign, error) {
	var c models.Campaign
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CampaignRepository) ListByAdvertiser(ctx context.Context, advertiserID string) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := r.db.WithContext(ctx).
		Preload("Creative").
		Where("advertiser_id = ?", advertiserID).
		Order("created_at DESC").
		Find(&campaigns).Error
	return campaigns, translate(err)
}

func (r *CampaignRepository) AttachCreative(ctx context.Context, campaignID, creativeID string) error {
	return affected(r.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ?", campaignID).
		Update("creative_id", creativeID))
}

func (r *CampaignRepository) SetStatus(ctx context.Context, id string, status models.CampaignStatus) error {
	return affected(r.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ?", id).
		Update("status", status))
}

type CreativeRepository struct {
	db *gorm.DB
}

func NewCreativeRepository(db *gorm.DB) *CreativeRepository {
	return &CreativeRepository{db: db}
}

func (r *CreativeRepository) Create(ctx context.Context, c *models.Creative) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}
