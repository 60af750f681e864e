package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dooh/internal/models"
)

var lobby = ScreenInput{
	Name:       "Lobby Wall",
	Location:   "Berlin",
	Address:    "Alexanderplatz 1",
	ScreenType: "indoor",
	SizeInches: 85,
	Resolution: "3840x2160",
	HourlyRate: 40,
}

func TestCreateScreenDefaults(t *testing.T) {
	db := newMemDB()
	svc := NewScreenService(memScreens{db})

	sc, err := svc.CreateScreen(context.Background(), "owner-1", lobby)
	require.NoError(t, err)
	assert.True(t, sc.IsActive)
	assert.Equal(t, "USD", sc.Currency)
	assert.Equal(t, "owner-1", sc.OwnerID)

	bad := lobby
	bad.HourlyRate = 0
	_, err = svc.CreateScreen(context.Background(), "owner-1", bad)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListOwnScreensNewestFirst(t *testing.T) {
	db := newMemDB()
	svc := NewScreenService(memScreens{db})
	first := db.addScreen("owner-1", "First", 10)
	second := db.addScreen("owner-1", "Second", 10)
	db.addScreen("owner-2", "Other", 10)

	screens, err := svc.ListOwnScreens(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, screens, 2)
	assert.Equal(t, second.ID, screens[0].ID)
	assert.Equal(t, first.ID, screens[1].ID)

	empty, err := svc.ListOwnScreens(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestDeactivateLeavesBookingsUntouched(t *testing.T) {
	db := newMemDB()
	svc := NewScreenService(memScreens{db})
	sc := db.addScreen("owner-1", "Lobby", 10)
	c := db.addCampaign("adv-1", "Camp")
	start := time.Date(2024, 7, 2, 10, 0, 0, 0, time.UTC)
	b := db.addBooking(c.ID, sc.ID, start, start.Add(2*time.Hour), models.BookingStatusApproved)
	before := *db.bookings[b.ID]
	db.resetWrites()

	_, err := svc.SetScreenActive(context.Background(), "owner-2", sc.ID, false)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.SetScreenActive(context.Background(), "owner-1", sc.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.False(t, db.screens[sc.ID].IsActive)

	assert.Equal(t, 0, db.writesTo("bookings"))
	assert.Equal(t, before, *db.bookings[b.ID])
}

func TestUpdateScreenOwnerOnly(t *testing.T) {
	db := newMemDB()
	svc := NewScreenService(memScreens{db})
	sc := db.addScreen("owner-1", "Lobby", 10)

	in := lobby
	in.HourlyRate = 55
	_, err := svc.UpdateScreen(context.Background(), "owner-2", sc.ID, in)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.UpdateScreen(context.Background(), "owner-1", sc.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 55.0, updated.HourlyRate)
	assert.True(t, db.screens[sc.ID].IsActive, "update does not change availability")
}
