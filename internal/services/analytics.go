package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"dooh/internal/models"
	"dooh/internal/utils/logger"
)

type AnalyticsRange string

const (
	Range7d  AnalyticsRange = "7d"
	Range30d AnalyticsRange = "30d"
	Range90d AnalyticsRange = "90d"

	DefaultAnalyticsRange = Range30d
)

var AnalyticsRanges = []AnalyticsRange{Range7d, Range30d, Range90d}

// Duration returns the length of the range, or false for unknown ranges.
func (r AnalyticsRange) Duration() (time.Duration, bool) {
	switch r {
	case Range7d:
		return 7 * 24 * time.Hour, true
	case Range30d:
		return 30 * 24 * time.Hour, true
	case Range90d:
		return 90 * 24 * time.Hour, true
	}
	return 0, false
}

// CampaignStat aggregates one campaign's bookings in a range. Spend and Hours
// count approved bookings only.
type CampaignStat struct {
	CampaignID string  `json:"campaignId"`
	Name       string  `json:"name"`
	Bookings   int     `json:"bookings"`
	Spend      float64 `json:"spend"`
	Hours      float64 `json:"hours"`
}

type AdvertiserStats struct {
	TotalSpend      float64        `json:"totalSpend"`
	Bookings        int            `json:"bookings"`
	ApprovedHours   float64        `json:"bookedHours"`
	AvgCostPerHour  float64        `json:"avgCostPerHour"`
	ActiveCampaigns int            `json:"activeCampaigns"`
	Campaigns       []CampaignStat `json:"campaigns"`
}

type ScreenStat struct {
	ScreenID string  `json:"screenId"`
	Name     string  `json:"name"`
	Bookings int     `json:"bookings"`
	Revenue  float64 `json:"revenue"`
	Hours    float64 `json:"hours"`
}

type OwnerStats struct {
	Revenue       float64      `json:"revenue"`
	Bookings      int          `json:"bookings"`
	ApprovedHours float64      `json:"bookedHours"`
	ActiveScreens int          `json:"activeScreens"`
	AvgHourlyRate float64      `json:"avgHourlyRate"`
	OccupancyRate float64      `json:"occupancyRate"`
	Screens       []ScreenStat `json:"screens"`
}

// Participant is a user with booking activity, used to prewarm the cache.
type Participant struct {
	UserID string
	Role   models.UserRole
}

// StatsStore runs the aggregation queries. Bookings are attributed to a range
// by their start time.
type StatsStore interface {
	AdvertiserStats(ctx context.Context, advertiserID string, since, until time.Time) (*AdvertiserStats, error)
	OwnerStats(ctx context.Context, ownerID string, since, until time.Time) (*OwnerStats, error)
	Participants(ctx context.Context, since time.Time) ([]Participant, error)
}

type Analytics struct {
	Role        models.UserRole  `json:"role"`
	Range       AnalyticsRange   `json:"range"`
	Since       time.Time        `json:"since"`
	Until       time.Time        `json:"until"`
	Advertiser  *AdvertiserStats `json:"advertiser,omitempty"`
	Owner       *OwnerStats      `json:"owner,omitempty"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

type AnalyticsService struct {
	stats StatsStore
	cache Cache
	ttl   time.Duration
	log   *logger.Logger
	now   func() time.Time
}

func NewAnalyticsService(stats StatsStore, cache Cache, ttl time.Duration) *AnalyticsService {
	return &AnalyticsService{
		stats: stats,
		cache: cache,
		ttl:   ttl,
		log:   logger.New("ANALYTICS"),
		now:   time.Now,
	}
}

func analyticsKey(role models.UserRole, userID string, r AnalyticsRange) string {
	return fmt.Sprintf("analytics:%s:%s:%s", role, userID, r)
}

// Dashboard returns the role's statistics for the range, served from cache
// when fresh. Cache failures fall through to the database.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID string, role models.UserRole, r AnalyticsRange) (*Analytics, error) {
	if r == "" {
		r = DefaultAnalyticsRange
	}
	if _, ok := r.Duration(); !ok {
		return nil, validationError("range must be one of 7d, 30d, 90d")
	}
	if role == "" {
		return nil, ErrNoProfile
	}

	if s.cache != nil {
		var cached Analytics
		hit, err := s.cache.Get(ctx, analyticsKey(role, userID, r), &cached)
		if err != nil {
			s.log.Warn("Analytics cache read failed: %v", err)
		} else if hit {
			return &cached, nil
		}
	}
	return s.compute(ctx, userID, role, r)
}

// Refresh recomputes and caches every range for the user.
func (s *AnalyticsService) Refresh(ctx context.Context, userID string, role models.UserRole) error {
	for _, r := range AnalyticsRanges {
		if _, err := s.compute(ctx, userID, role, r); err != nil {
			return err
		}
	}
	return nil
}

// RefreshAll prewarms the cache for everyone with bookings in the widest
// range and returns how many users were refreshed.
func (s *AnalyticsService) RefreshAll(ctx context.Context) (int, error) {
	widest, _ := Range90d.Duration()
	participants, err := s.stats.Participants(ctx, s.now().Add(-widest))
	if err != nil {
		return 0, fmt.Errorf("failed to list participants: %w", err)
	}
	refreshed := 0
	for _, p := range participants {
		if err := s.Refresh(ctx, p.UserID, p.Role); err != nil {
			s.log.Warn("Analytics refresh failed for %s: %v", p.UserID, err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

func (s *AnalyticsService) compute(ctx context.Context, userID string, role models.UserRole, r AnalyticsRange) (*Analytics, error) {
	d, _ := r.Duration()
	until := s.now()
	since := until.Add(-d)
	out := &Analytics{Role: role, Range: r, Since: since, Until: until, GeneratedAt: until}

	switch role {
	case models.UserRoleAdvertiser:
		st, err := s.stats.AdvertiserStats(ctx, userID, since, until)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate advertiser stats: %w", err)
		}
		if st.ApprovedHours > 0 {
			st.AvgCostPerHour = round2(st.TotalSpend / st.ApprovedHours)
		}
		if st.Campaigns == nil {
			st.Campaigns = []CampaignStat{}
		}
		out.Advertiser = st
	case models.UserRoleScreenOwner, models.UserRoleAdmin:
		st, err := s.stats.OwnerStats(ctx, userID, since, until)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate owner stats: %w", err)
		}
		if st.ActiveScreens > 0 {
			capacity := float64(st.ActiveScreens) * d.Hours()
			st.OccupancyRate = round2(math.Min(st.ApprovedHours/capacity, 1) * 100)
		}
		if st.Screens == nil {
			st.Screens = []ScreenStat{}
		}
		out.Owner = st
	default:
		return nil, ErrNoProfile
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, analyticsKey(role, userID, r), out, s.ttl); err != nil {
			s.log.Warn("Analytics cache write failed: %v", err)
		}
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
