package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-reservation-backend/internal/model"
)

func spotNumbers(spots []model.ParkingSpot) []int {
	nums := make([]int, len(spots))
	for i, s := range spots {
		nums[i] = s.SpotNumber
	}
	return nums
}

func TestCreateLotSeedsSpots(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	lot := seedLot(t, s, 3, 15)
	assert.Equal(t, 3, lot.TotalSlots)
	assert.Equal(t, 3, lot.AvailableSlots)
	require.Len(t, lot.Spots, 3)
	assert.Equal(t, []int{1, 2, 3}, spotNumbers(lot.Spots))
	assert.Equal(t, "S1", lot.Spots[0].Label())

	_, err := s.CreateLot(ctx, 1, LotUpdate{LocationName: "X", TotalSlots: 0})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.CreateLot(ctx, 1, LotUpdate{LocationName: "", TotalSlots: 2})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.CreateLot(ctx, 1, LotUpdate{LocationName: "X", TotalSlots: 2, PricePerHour: -1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateLotGrowReusesNumbers(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	lot := seedLot(t, s, 3, 15)

	// Drop spot 2, leaving a gap in the numbering.
	require.NoError(t, s.DeleteSpot(ctx, lot.Spots[1].ID))

	got, err := s.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, spotNumbers(got.Spots))
	assert.Equal(t, 2, got.TotalSlots)

	// Growing to 4 fills the gap first, then extends past the maximum.
	updated, err := s.UpdateLot(ctx, lot.ID, LotUpdate{
		LocationName: lot.LocationName,
		Address:      lot.Address,
		Pincode:      lot.Pincode,
		PricePerHour: lot.PricePerHour,
		TotalSlots:   4,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.TotalSlots)
	assert.Equal(t, 4, updated.AvailableSlots)

	got, err = s.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, spotNumbers(got.Spots))
}

func TestUpdateLotShrinkRemovesFreeSpotsOnly(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	lot := seedLot(t, s, 3, 15)

	// Occupy spot 1.
	_, err := s.AcquireHold(ctx, 1, lot.ID, lot.Spots[0].ID, 0)
	require.NoError(t, err)
	_, err = s.ConfirmBooking(ctx, 1, lot.ID, "KA01A1")
	require.NoError(t, err)

	updated, err := s.UpdateLot(ctx, lot.ID, LotUpdate{
		LocationName: lot.LocationName,
		PricePerHour: lot.PricePerHour,
		TotalSlots:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.TotalSlots)
	assert.Equal(t, 0, updated.AvailableSlots)

	// The occupied spot survived the shrink.
	got, err := s.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	require.Len(t, got.Spots, 1)
	assert.Equal(t, lot.Spots[0].ID, got.Spots[0].ID)
	assert.False(t, got.Spots[0].IsAvailable)
}

func TestUpdateLotShrinkInsufficientFreeSpots(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	lot := seedLot(t, s, 2, 15)
	fillLot(t, s, lot, 1)

	_, err := s.UpdateLot(ctx, lot.ID, LotUpdate{
		LocationName: lot.LocationName,
		PricePerHour: lot.PricePerHour,
		TotalSlots:   1,
	})
	assert.ErrorIs(t, err, ErrValidation)

	// Nothing was removed.
	got, err := s.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Len(t, got.Spots, 2)
	assert.Equal(t, 2, got.TotalSlots)
}

func TestDeleteSpotBlockedWhileOccupied(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	lot := seedLot(t, s, 2, 15)

	_, err := s.AcquireHold(ctx, 1, lot.ID, lot.Spots[0].ID, 0)
	require.NoError(t, err)
	_, err = s.ConfirmBooking(ctx, 1, lot.ID, "KA01A1")
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteSpot(ctx, lot.Spots[0].ID), ErrValidation)
	assert.ErrorIs(t, s.DeleteSpot(ctx, 9999), ErrNotFound)

	require.NoError(t, s.DeleteSpot(ctx, lot.Spots[1].ID))
	got, err := s.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalSlots)
	assert.Equal(t, 0, got.AvailableSlots)
}

func TestDeleteLotBlockedWhileActive(t *testing.T) {
	s, clock, _ := newTestStore(t)
	ctx := context.Background()
	lot := seedLot(t, s, 1, 15)
	bookings := fillLot(t, s, lot, 1)

	assert.ErrorIs(t, s.DeleteLot(ctx, lot.ID), ErrValidation)
	assert.ErrorIs(t, s.DeleteLot(ctx, 9999), ErrNotFound)

	clock.Advance(time.Minute)
	_, _, err := s.ReleaseBooking(ctx, bookings[0].ID, 1)
	require.NoError(t, err)

	require.NoError(t, s.DeleteLot(ctx, lot.ID))
	_, err = s.GetLot(ctx, lot.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Dependent rows went with it.
	var spots int64
	require.NoError(t, s.DB().Model(&model.ParkingSpot{}).Where("lot_id = ?", lot.ID).Count(&spots).Error)
	assert.Equal(t, int64(0), spots)
}

func TestMaintenanceWindowLifecycle(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	lot := seedLot(t, s, 2, 15)
	spot := lot.Spots[0]

	window, err := s.StartMaintenance(ctx, spot.ID, 1, "repainting", nil)
	require.NoError(t, err)
	assert.True(t, window.IsActive)
	assert.Nil(t, window.EndsAt)

	// One active window per spot.
	_, err = s.StartMaintenance(ctx, spot.ID, 1, "again", nil)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.StartMaintenance(ctx, 9999, 1, "ghost", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	// The spot leaves bookability but stays physically available.
	got, err := s.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableSlots)
	assert.True(t, got.Spots[0].IsAvailable)

	best, err := s.GetBookableSpot(ctx, lot.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, lot.Spots[1].ID, best.ID)

	require.NoError(t, s.StopMaintenance(ctx, spot.ID))
	assert.ErrorIs(t, s.StopMaintenance(ctx, spot.ID), ErrNotFound)

	got, err = s.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableSlots)
}
