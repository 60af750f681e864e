package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"dooh/internal/models"
	"dooh/internal/services"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// StatsRepository aggregates bookings with raw SQL over pgx.
type StatsRepository struct {
	db querier
}

func NewStatsRepository(db querier) *StatsRepository {
	return &StatsRepository{db: db}
}

const advertiserStatsQuery = `
SELECT c.id::text, c.name, c.status,
       COUNT(b.id),
       COALESCE(SUM(b.total_cost) FILTER (WHERE b.status = 'approved'), 0)::float8,
       COALESCE(SUM(EXTRACT(EPOCH FROM b.end_datetime - b.start_datetime) / 3600)
                FILTER (WHERE b.status = 'approved'), 0)::float8
FROM campaigns c
LEFT JOIN bookings b
       ON b.campaign_id = c.id
      AND b.start_datetime >= $2
      AND b.start_datetime < $3
WHERE c.advertiser_id = $1
GROUP BY c.id, c.name, c.status, c.created_at
ORDER BY c.created_at DESC`

func (r *StatsRepository) AdvertiserStats(ctx context.Context, advertiserID string, since, until time.Time) (*services.AdvertiserStats, error) {
	rows, err := r.db.Query(ctx, advertiserStatsQuery, advertiserID, since, until)
	if err != nil {
		return nil, fmt.Errorf("failed to query advertiser stats: %w", err)
	}
	defer rows.Close()

	out := &services.AdvertiserStats{Campaigns: []services.CampaignStat{}}
	for rows.Next() {
		var (
			st     services.CampaignStat
			status string
		)
		if err := rows.Scan(&st.CampaignID, &st.Name, &status, &st.Bookings, &st.Spend, &st.Hours); err != nil {
			return nil, fmt.Errorf("failed to scan campaign stat: %w", err)
		}
		st.Spend = round2(st.Spend)
		st.Hours = round2(st.Hours)

		out.Campaigns = append(out.Campaigns, st)
		out.Bookings += st.Bookings
		out.TotalSpend += st.Spend
		out.ApprovedHours += st.Hours
		if models.CampaignStatus(status) == models.CampaignStatusActive {
			out.ActiveCampaigns++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out.TotalSpend = round2(out.TotalSpend)
	out.ApprovedHours = round2(out.ApprovedHours)
	return out, nil
}

const ownerStatsQuery = `
SELECT s.id::text, s.name, s.is_active, s.hourly_rate::float8,
       COUNT(b.id),
       COALESCE(SUM(b.total_cost) FILTER (WHERE b.status = 'approved'), 0)::float8,
       COALESCE(SUM(EXTRACT(EPOCH FROM b.end_datetime - b.start_datetime) / 3600)
                FILTER (WHERE b.status = 'approved'), 0)::float8
FROM screens s
LEFT JOIN bookings b
       ON b.screen_id = s.id
      AND b.start_datetime >= $2
      AND b.start_datetime < $3
WHERE s.owner_id = $1
GROUP BY s.id, s.name, s.is_active, s.hourly_rate, s.created_at
ORDER BY s.created_at DESC`

func (r *StatsRepository) OwnerStats(ctx context.Context, ownerID string, since, until time.Time) (*services.OwnerStats, error) {
	rows, err := r.db.Query(ctx, ownerStatsQuery, ownerID, since, until)
	if err != nil {
		return nil, fmt.Errorf("failed to query owner stats: %w", err)
	}
	defer rows.Close()

	out := &services.OwnerStats{Screens: []services.ScreenStat{}}
	var rateSum float64
	for rows.Next() {
		var (
			st     services.ScreenStat
			active bool
			rate   float64
		)
		if err := rows.Scan(&st.ScreenID, &st.Name, &active, &rate, &st.Bookings, &st.Revenue, &st.Hours); err != nil {
			return nil, fmt.Errorf("failed to scan screen stat: %w", err)
		}
		st.Revenue = round2(st.Revenue)
		st.Hours = round2(st.Hours)

		out.Screens = append(out.Screens, st)
		out.Bookings += st.Bookings
		out.Revenue += st.Revenue
		out.ApprovedHours += st.Hours
		if active {
			out.ActiveScreens++
			rateSum += rate
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out.Revenue = round2(out.Revenue)
	out.ApprovedHours = round2(out.ApprovedHours)
	if out.ActiveScreens > 0 {
		out.AvgHourlyRate = round2(rateSum / float64(out.ActiveScreens))
	}
	return out, nil
}

const participantsQuery = `
SELECT DISTINCT p.user_id::text, p.role
FROM bookings b
JOIN campaigns c ON c.id = b.campaign_id
JOIN screens s ON s.id = b.screen_id
JOIN user_profiles p ON p.user_id IN (c.advertiser_id, s.owner_id)
WHERE b.start_datetime >= $1`

func (r *StatsRepository) Participants(ctx context.Context, since time.Time) ([]services.Participant, error) {
	rows, err := r.db.Query(ctx, participantsQuery, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (services.Participant, error) {
		var (
			p    services.Participant
			role string
		)
		err := row.Scan(&p.UserID, &role)
		p.Role = models.UserRole(role)
		return p, err
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
