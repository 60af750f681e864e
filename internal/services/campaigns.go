package services

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"dooh/internal/models"
	"dooh/internal/utils/logger"
)

// CreativeUpload is the optional asset sent with a new campaign.
type CreativeUpload struct {
	FileName        string
	ContentType     string
	Body            []byte
	Title           string
	Description     *string
	DurationSeconds *int
}

type CreateCampaignInput struct {
	Name        string
	Description *string
	Budget      float64
	StartDate   time.Time
	EndDate     time.Time
	Asset       *CreativeUpload
}

// CreateCampaignResult reports the campaign and, when an asset was supplied,
// either the attached creative or the error that stopped the attachment.
type CreateCampaignResult struct {
	Campaign    *models.Campaign
	Creative    *models.Creative
	AttachError error
}

type CampaignSummary struct {
	models.Campaign
	IsRunning  bool `json:"isRunning"`
	IsUpcoming bool `json:"isUpcoming"`
}

type CampaignList struct {
	Campaigns []CampaignSummary `json:"campaigns"`
	Total     int               `json:"total"`
	Running   int               `json:"running"`
	Upcoming  int               `json:"upcoming"`
	Drafts    int               `json:"drafts"`
}

type CampaignService struct {
	campaigns CampaignStore
	creatives CreativeStore
	storage   ObjectStorage
	log       *logger.Logger
	now       func() time.Time
}

func NewCampaignService(campaigns CampaignStore, creatives CreativeStore, storage ObjectStorage) *CampaignService {
	return &CampaignService{
		campaigns: campaigns,
		creatives: creatives,
		storage:   storage,
		log:       logger.New("CAMPAIGNS"),
		now:       time.Now,
	}
}

// CreateCampaign inserts a draft campaign and then, if an asset is present,
// uploads it, records the creative and links it. The three attachment steps
// are independent; a failure leaves the draft campaign in place without a
// creative and is reported in AttachError.
func (s *CampaignService) CreateCampaign(ctx context.Context, advertiserID string, in CreateCampaignInput) (*CreateCampaignResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("campaign name is required")
	}
	if in.Budget <= 0 {
		return nil, validationError("budget must be greater than zero")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, validationError("start and end dates are required")
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, validationError("end date must not be before start date")
	}

	campaign := &models.Campaign{
		AdvertiserID: advertiserID,
		Name:         name,
		Description:  in.Description,
		Budget:       in.Budget,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Status:       models.CampaignStatusDraft,
	}
	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	s.log.Info("Created campaign %s for %s", campaign.ID, advertiserID)

	result := &CreateCampaignResult{Campaign: campaign}
	if in.Asset == nil || len(in.Asset.Body) == 0 {
		return result, nil
	}

	creative, err := s.attach(ctx, campaign, in.Asset)
	if err != nil {
		s.log.Warn("Campaign %s kept as draft without creative: %v", campaign.ID, err)
		result.AttachError = err
		return result, nil
	}
	campaign.CreativeID = &creative.ID
	campaign.Creative = creative
	result.Creative = creative
	return result, nil
}

func (s *CampaignService) attach(ctx context.Context, campaign *models.Campaign, asset *CreativeUpload) (*models.Creative, error) {
	fileName := path.Base(strings.ReplaceAll(asset.FileName, "\\", "/"))
	if fileName == "." || fileName == "/" || fileName == "" {
		fileName = "creative"
	}
	key := StorageKey(campaign.AdvertiserID, s.now(), fileName)

	contentType := asset.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(fileName))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := s.storage.Upload(ctx, key, asset.Body, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}

	title := strings.TrimSpace(asset.Title)
	if title == "" {
		title = campaign.Name
	}
	creative := &models.Creative{
		CampaignID:      campaign.ID,
		AdvertiserID:    campaign.AdvertiserID,
		Title:           title,
		Description:     asset.Description,
		PublicURL:       url,
		FileType:        contentType,
		StoragePath:     key,
		DurationSeconds: asset.DurationSeconds,
	}
	if err := s.creatives.Create(ctx, creative); err != nil {
		return nil, fmt.Errorf("failed to record creative: %w", err)
	}
	if err := s.campaigns.AttachCreative(ctx, campaign.ID, creative.ID); err != nil {
		return nil, fmt.Errorf("failed to link creative: %w", err)
	}
	return creative, nil
}

// StorageKey is the per-identity, time-stamped object path of an upload.
func StorageKey(advertiserID string, at time.Time, fileName string) string {
	return fmt.Sprintf("%s/%d-%s", advertiserID, at.UnixMilli(), fileName)
}

func (s *CampaignService) ListCampaigns(ctx context.Context, advertiserID string) (*CampaignList, error) {
	campaigns, err := s.campaigns.ListByAdvertiser(ctx, advertiserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	now := s.now()
	list := &CampaignList{Campaigns: make([]CampaignSummary, 0, len(campaigns))}
	for i := range campaigns {
		c := campaigns[i]
		summary := CampaignSummary{
			Campaign:   c,
			IsRunning:  c.IsRunning(now),
			IsUpcoming: c.IsUpcoming(now),
		}
		if summary.IsRunning {
			list.Running++
		}
		if summary.IsUpcoming {
			list.Upcoming++
		}
		if c.Status == models.CampaignStatusDraft {
			list.Drafts++
		}
		list.Campaigns = append(list.Campaigns, summary)
	}
	list.Total = len(list.Campaigns)
	return list, nil
}

func (s *CampaignService) SetCampaignStatus(ctx context.Context, actorID, id string, status models.CampaignStatus) (*models.Campaign, error) {
	if !models.IsValidCampaignStatus(status) {
		return nil, validationError("unknown campaign status %q", status)
	}
	campaign, err := s.campaigns.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.AdvertiserID != actorID {
		return nil, ErrForbidden
	}
	if err := s.campaigns.SetStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update campaign status: %w", err)
	}
	campaign.Status = status
	return campaign, nil
}
