//go:build integration

package repository

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"dooh/internal/config"
	"dooh/internal/db"
	"dooh/internal/models"
	"dooh/internal/services"
)

// setupPostgres starts a Postgres container, migrates it and returns the
// gorm handle plus a pgx-backed stats repository.
func setupPostgres(t *testing.T) (*gorm.DB, *StatsRepository) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test_user",
			"POSTGRES_PASSWORD": "test_password",
			"POSTGRES_DB":       "dooh_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := pgC.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := config.LoadTestConfig()
	cfg.Database.Host = host
	cfg.Database.Port, _ = strconv.Atoi(port.Port())
	cfg.Database.RunMigrations = true
	require.NoError(t, db.Connect(cfg))
	t.Cleanup(func() { _ = db.Close() })

	pool, err := db.NewPool(ctx, cfg.Database.URL())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return db.GetDB(), NewStatsRepository(pool)
}

func seedProfile(t *testing.T, gdb *gorm.DB, email string, role models.UserRole) *models.UserProfile {
	ctx := context.Background()
	user := &models.User{Email: email, Password: "x"}
	require.NoError(t, NewUserRepository(gdb).Create(ctx, user))
	p := &models.UserProfile{UserID: user.ID, Role: role, BusinessName: "Biz " + email, ContactEmail: email}
	require.NoError(t, NewProfileRepository(gdb).Create(ctx, p))
	return p
}

func TestRepositories(t *testing.T) {
	gdb, stats := setupPostgres(t)
	ctx := context.Background()

	owner := seedProfile(t, gdb, "owner@example.com", models.UserRoleScreenOwner)
	adv := seedProfile(t, gdb, "adv@example.com", models.UserRoleAdvertiser)

	profiles := NewProfileRepository(gdb)
	screens := NewScreenRepository(gdb)
	campaigns := NewCampaignRepository(gdb)
	bookings := NewBookingRepository(gdb)

	t.Run("duplicate profile", func(t *testing.T) {
		err := profiles.Create(ctx, &models.UserProfile{UserID: owner.UserID, Role: models.UserRoleAdvertiser, BusinessName: "Dup", ContactEmail: "d@example.com"})
		assert.ErrorIs(t, err, services.ErrDuplicate)

		_, err = profiles.GetByUserID(ctx, adv.ID)
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	screen := &models.Screen{OwnerID: owner.UserID, Name: "Times Square North", Location: "New York", ScreenType: "billboard", SizeInches: 400, HourlyRate: 25, Currency: "USD", IsActive: true}
	require.NoError(t, screens.Create(ctx, screen))
	other := &models.Screen{OwnerID: owner.UserID, Name: "Mall Atrium", Location: "Austin", ScreenType: "indoor", SizeInches: 80, HourlyRate: 10, Currency: "USD", IsActive: true}
	require.NoError(t, screens.Create(ctx, other))

	t.Run("search", func(t *testing.T) {
		found, err := screens.SearchActive(ctx, services.ScreenFilter{Term: "york"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, screen.ID, found[0].ID)
		require.NotNil(t, found[0].Owner)
		assert.Equal(t, owner.BusinessName, found[0].Owner.BusinessName)

		found, err = screens.SearchActive(ctx, services.ScreenFilter{MaxHourlyRate: 15})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, other.ID, found[0].ID)

		require.NoError(t, screens.SetActive(ctx, other.ID, false))
		found, err = screens.SearchActive(ctx, services.ScreenFilter{})
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	today := time.Now().UTC().Truncate(24 * time.Hour)
	campaign := &models.Campaign{AdvertiserID: adv.UserID, Name: "Launch", Budget: 1000, StartDate: today, EndDate: today.Add(72 * time.Hour), Status: models.CampaignStatusActive}
	require.NoError(t, campaigns.Create(ctx, campaign))

	t.Run("creative attach", func(t *testing.T) {
		creative := &models.Creative{CampaignID: campaign.ID, AdvertiserID: adv.UserID, Title: "Launch", PublicURL: "http://cdn/x.png", FileType: "image/png", StoragePath: "x.png"}
		require.NoError(t, NewCreativeRepository(gdb).Create(ctx, creative))
		require.NoError(t, campaigns.AttachCreative(ctx, campaign.ID, creative.ID))

		list, err := campaigns.ListByAdvertiser(ctx, adv.UserID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.NotNil(t, list[0].Creative)
		assert.Equal(t, creative.ID, list[0].Creative.ID)
	})

	start := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	approved := &models.Booking{CampaignID: campaign.ID, ScreenID: screen.ID, StartDatetime: start, EndDatetime: start.Add(4 * time.Hour), TotalCost: 100, Status: models.BookingStatusPending}
	require.NoError(t, bookings.Create(ctx, approved))

	t.Run("conditional transition", func(t *testing.T) {
		ok, err := bookings.UpdateStatusIf(ctx, approved.ID, models.BookingStatusPending, models.BookingStatusApproved)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = bookings.UpdateStatusIf(ctx, approved.ID, models.BookingStatusPending, models.BookingStatusRejected)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := bookings.Get(ctx, approved.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusApproved, got.Status)
		assert.Equal(t, "Launch", got.Campaign.Name)
		assert.Equal(t, screen.Name, got.Screen.Name)
	})

	t.Run("overlap", func(t *testing.T) {
		hits, err := bookings.ApprovedOverlapping(ctx, screen.ID, start.Add(3*time.Hour), start.Add(5*time.Hour), "")
		require.NoError(t, err)
		assert.Len(t, hits, 1)

		hits, err = bookings.ApprovedOverlapping(ctx, screen.ID, start.Add(4*time.Hour), start.Add(5*time.Hour), "")
		require.NoError(t, err)
		assert.Empty(t, hits)

		hits, err = bookings.ApprovedOverlapping(ctx, screen.ID, start, start.Add(time.Hour), approved.ID)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("screen lock serialises writers", func(t *testing.T) {
		slot := start.Add(24 * time.Hour)
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
		)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := bookings.WithScreenLock(ctx, screen.ID, func(tx services.BookingStore) error {
					hits, err := tx.ApprovedOverlapping(ctx, screen.ID, slot, slot.Add(time.Hour), "")
					if err != nil || len(hits) > 0 {
						return services.ErrBookingConflict
					}
					return tx.Create(ctx, &models.Booking{CampaignID: campaign.ID, ScreenID: screen.ID, StartDatetime: slot, EndDatetime: slot.Add(time.Hour), TotalCost: 25, Status: models.BookingStatusApproved})
				})
				if err == nil {
					mu.Lock()
					created++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, created)

		err := bookings.WithScreenLock(ctx, "00000000-0000-0000-0000-000000000000", func(services.BookingStore) error { return nil })
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("listings", func(t *testing.T) {
		forAdv, err := bookings.ListForAdvertiser(ctx, adv.UserID)
		require.NoError(t, err)
		assert.Len(t, forAdv, 2)

		forOwner, err := bookings.ListForOwner(ctx, owner.UserID)
		require.NoError(t, err)
		assert.Len(t, forOwner, 2)

		schedule, err := bookings.ApprovedForOwnerSince(ctx, owner.UserID, time.Now())
		require.NoError(t, err)
		require.Len(t, schedule, 2)
		assert.True(t, schedule[0].StartDatetime.Before(schedule[1].StartDatetime))
		require.NotNil(t, schedule[0].Campaign.Creative)
	})

	t.Run("stats", func(t *testing.T) {
		since := time.Now().Add(-30 * 24 * time.Hour)
		until := time.Now().Add(48 * time.Hour)

		advStats, err := stats.AdvertiserStats(ctx, adv.UserID, since, until)
		require.NoError(t, err)
		assert.Equal(t, 2, advStats.Bookings)
		assert.Equal(t, 125.0, advStats.TotalSpend)
		assert.Equal(t, 5.0, advStats.ApprovedHours)
		assert.Equal(t, 1, advStats.ActiveCampaigns)

		ownStats, err := stats.OwnerStats(ctx, owner.UserID, since, until)
		require.NoError(t, err)
		assert.Equal(t, 125.0, ownStats.Revenue)
		assert.Equal(t, 1, ownStats.ActiveScreens)
		assert.Equal(t, 25.0, ownStats.AvgHourlyRate)
		assert.Len(t, ownStats.Screens, 2)

		people, err := stats.Participants(ctx, since)
		require.NoError(t, err)
		assert.ElementsMatch(t, []services.Participant{
			{UserID: adv.UserID, Role: models.UserRoleAdvertiser},
			{UserID: owner.UserID, Role: models.UserRoleScreenOwner},
		}, people)
	})
}
