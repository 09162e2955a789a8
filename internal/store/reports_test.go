package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLotOccupancyReport(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	lot := seedLot(t, s, 4, 10)

	// One occupied, one under maintenance, one held by someone else.
	_, err := s.AcquireHold(ctx, 1, lot.ID, lot.Spots[0].ID, 0)
	require.NoError(t, err)
	_, err = s.ConfirmBooking(ctx, 1, lot.ID, "KA01A1")
	require.NoError(t, err)
	_, err = s.StartMaintenance(ctx, lot.Spots[1].ID, 1, "repaving", nil)
	require.NoError(t, err)
	_, err = s.AcquireHold(ctx, 2, lot.ID, lot.Spots[2].ID, 0)
	require.NoError(t, err)

	rows, err := s.LotOccupancy(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, lot.ID, row.LotID)
	assert.Equal(t, 4, row.TotalSlots)
	assert.Equal(t, int64(1), row.OccupiedSpots)
	assert.Equal(t, int64(1), row.UnderMaintenance)
	assert.Equal(t, int64(1), row.BookableSpots, "held and maintained spots are not bookable")
	assert.InDelta(t, 25.0, row.OccupancyPct, 0.001)
}

func TestLotRevenueReport(t *testing.T) {
	s, clock, _ := newTestStore(t)
	ctx := context.Background()
	lot := seedLot(t, s, 2, 30)
	empty := seedLot(t, s, 1, 30)

	bookings := fillLot(t, s, lot, 1)
	clock.Advance(time.Hour)
	for _, b := range bookings {
		_, _, err := s.ReleaseBooking(ctx, b.ID, 1)
		require.NoError(t, err)
	}

	rows, err := s.LotRevenue(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byLot := map[int64]LotRevenueRow{}
	for _, r := range rows {
		byLot[r.LotID] = r
	}
	assert.Equal(t, int64(2), byLot[lot.ID].ReleasedBookings)
	assert.InDelta(t, 60.0, byLot[lot.ID].Revenue, 0.001)
	assert.Equal(t, int64(0), byLot[empty.ID].ReleasedBookings)
	assert.InDelta(t, 0.0, byLot[empty.ID].Revenue, 0.001)
}

func TestUserUsageReport(t *testing.T) {
	s, clock, _ := newTestStore(t)
	ctx := context.Background()
	lot := seedLot(t, s, 2, 20)

	_, err := s.AcquireHold(ctx, 1, lot.ID, lot.Spots[0].ID, 0)
	require.NoError(t, err)
	first, err := s.ConfirmBooking(ctx, 1, lot.ID, "KA01A1")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, _, err = s.ReleaseBooking(ctx, first.ID, 1)
	require.NoError(t, err)

	_, err = s.AcquireHold(ctx, 1, lot.ID, lot.Spots[1].ID, 0)
	require.NoError(t, err)
	_, err = s.ConfirmBooking(ctx, 1, lot.ID, "KA01A1")
	require.NoError(t, err)

	row, err := s.UserUsage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), row.TotalBookings)
	assert.Equal(t, int64(1), row.ActiveBookings)
	assert.InDelta(t, 40.0, row.TotalSpent, 0.001)
	assert.InDelta(t, 2.0, row.TotalHours, 0.001)
	require.NotNil(t, row.MostUsedLotID)
	assert.Equal(t, lot.ID, *row.MostUsedLotID)
	assert.Equal(t, "Central Lot", row.MostUsedLot)

	// A user with no history gets zeroes, not an error.
	blank, err := s.UserUsage(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(0), blank.TotalBookings)
	assert.Nil(t, blank.MostUsedLotID)
}
