package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"dooh/internal/api/middleware"
	"dooh/internal/models"
	"dooh/internal/services"
	"dooh/internal/utils/logger"
)

const dateLayout = "2006-01-02"

// maxCreativeSize bounds a single creative upload.
const maxCreativeSize = 50 << 20

type CampaignHandler struct {
	campaigns CampaignManager
	log       *logger.Logger
}

func NewCampaignHandler(campaigns CampaignManager) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, log: logger.New("campaign_handler")}
}

// CreateCampaignRequest is accepted as JSON or multipart/form-data; the
// creative file is only read from multipart bodies.
type CreateCampaignRequest struct {
	Name                string  `json:"name" form:"name" validate:"required,min=2"`
	Description         string  `json:"description" form:"description"`
	Budget              float64 `json:"budget" form:"budget" validate:"gt=0"`
	StartDate           string  `json:"startDate" form:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate             string  `json:"endDate" form:"end_date" validate:"required,datetime=2006-01-02"`
	CreativeTitle       string  `json:"creativeTitle" form:"creative_title"`
	CreativeDescription string  `json:"creativeDescription" form:"creative_description"`
	DurationSeconds     int     `json:"durationSeconds" form:"duration_seconds" validate:"gte=0"`
}

type CampaignStatusRequest struct {
	Status string `json:"status" validate:"required,campaign_status"`
}

type CreateCampaignResponse struct {
	Campaign      *models.Campaign `json:"campaign"`
	Creative      *models.Creative `json:"creative,omitempty"`
	CreativeError string           `json:"creativeError,omitempty"`
}

// Create creates a draft campaign, optionally with its creative.
// @Summary Create campaign
// @Description Create a draft campaign. A creative file sent as "file" is uploaded and attached; an attachment failure keeps the campaign and is reported in creativeError.
// @Tags campaigns
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Campaign name"
// @Param budget formData number true "Budget"
// @Param start_date formData string true "Start date (YYYY-MM-DD)"
// @Param end_date formData string true "End date (YYYY-MM-DD)"
// @Param file formData file false "Creative asset"
// @Success 201 {object} CreateCampaignResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Router /api/v1/campaigns [post]
func (h *CampaignHandler) Create(c echo.Context) error {
	var req CreateCampaignRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	start, _ := time.Parse(dateLayout, req.StartDate)
	end, _ := time.Parse(dateLayout, req.EndDate)
	in := services.CreateCampaignInput{
		Name:      req.Name,
		Budget:    req.Budget,
		StartDate: start,
		EndDate:   end,
	}
	if d := strings.TrimSpace(req.Description); d != "" {
		in.Description = &d
	}

	asset, err := h.readAsset(c, &req)
	if err != nil {
		return err
	}
	in.Asset = asset

	res, err := h.campaigns.CreateCampaign(c.Request().Context(), middleware.GetUserID(c), in)
	if err != nil {
		return MapError(err)
	}

	out := CreateCampaignResponse{Campaign: res.Campaign, Creative: res.Creative}
	if res.AttachError != nil {
		out.CreativeError = "Campaign saved as draft, but the creative could not be attached: " + res.AttachError.Error()
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CampaignHandler) readAsset(c echo.Context, req *CreateCampaignRequest) (*services.CreativeUpload, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil
	}
	file, err := c.FormFile("file")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, badRequest("invalid creative file")
	}
	if file.Size > maxCreativeSize {
		return nil, badRequest("creative file is too large")
	}

	src, err := file.Open()
	if err != nil {
		return nil, h.log.Error("Failed to open creative", err)
	}
	defer src.Close()

	body, err := io.ReadAll(src)
	if err != nil {
		return nil, h.log.Error("Failed to read creative", err)
	}

	asset := &services.CreativeUpload{
		FileName:    file.Filename,
		ContentType: file.Header.Get(echo.HeaderContentType),
		Body:        body,
		Title:       req.CreativeTitle,
	}
	if d := strings.TrimSpace(req.CreativeDescription); d != "" {
		asset.Description = &d
	}
	if req.DurationSeconds > 0 {
		secs := req.DurationSeconds
		asset.DurationSeconds = &secs
	}
	return asset, nil
}

// List returns the caller's campaigns with summary counts.
// @Summary List campaigns
// @Tags campaigns
// @Security BearerAuth
// @Produce json
// @Success 200 {object} services.CampaignList
// @Router /api/v1/campaigns [get]
func (h *CampaignHandler) List(c echo.Context) error {
	list, err := h.campaigns.ListCampaigns(c.Request().Context(), middleware.GetUserID(c))
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusOK, list)
}

// SetStatus changes a campaign's status.
// @Summary Set campaign status
// @Tags campaigns
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Param request body CampaignStatusRequest true "New status"
// @Success 200 {object} models.Campaign
// @Failure 403 {object} map[string]string "Not your campaign"
// @Failure 404 {object} map[string]string "Not found"
// @Router /api/v1/campaigns/{id}/status [put]
func (h *CampaignHandler) SetStatus(c echo.Context) error {
	id, err := bindPathID(c)
	if err != nil {
		return err
	}
	var req CampaignStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	campaign, err := h.campaigns.SetCampaignStatus(c.Request().Context(), middleware.GetUserID(c), id, models.CampaignStatus(req.Status))
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusOK, campaign)
}
