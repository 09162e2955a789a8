package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-reservation-backend/internal/model"
)

func TestAcquireHoldExclusivity(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	lot := seedLot(t, s, 2, 10)
	spot1 := lot.Spots[0]

	hold, err := s.AcquireHold(ctx, 1, lot.ID, spot1.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, spot1.ID, hold.SpotID)
	assert.Equal(t, testEpoch.Add(DefaultHoldDuration), hold.ExpiresAt)

	// A rival cannot hold the same spot while the hold is effective.
	_, err = s.AcquireHold(ctx, 2, lot.ID, spot1.ID, 0)
	assert.ErrorIs(t, err, ErrSpotConflict)

	// The rival is steered to the next spot instead.
	next, err := s.GetBookableSpot(ctx, lot.ID, 2)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, lot.Spots[1].ID, next.ID)

	// The holder still sees their own held spot as bookable.
	own, err := s.GetBookableSpot(ctx, lot.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, own)
	assert.Equal(t, spot1.ID, own.ID)
}

func TestAcquireHoldRefreshAndSwitch(t *testing.T) {
	s, clock, _ := newTestStore(t)
	ctx := context.Background()
	lot := seedLot(t, s, 2, 10)

	first, err := s.AcquireHold(ctx, 1, lot.ID, lot.Spots[0].ID, 0)
	require.NoError(t, err)

	// Re-holding the same spot extends the expiry on the same row.
	clock.Advance(2 * time.Minute)
	refreshed, err := s.AcquireHold(ctx, 1, lot.ID, lot.Spots[0].ID, 0)
	require.NoError(t, err)
	assert.Equal(t, first.ID, refreshed.ID)
	assert.Equal(t, clock.Now().Add(DefaultHoldDuration), refreshed.ExpiresAt)

	// Holding a different spot cancels the old hold.
	switched, err := s.AcquireHold(ctx, 1, lot.ID, lot.Spots[1].ID, 0)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, switched.ID)

	var old model.SpotHold
	require.NoError(t, s.DB().First(&old, first.ID).Error)
	assert.Equal(t, model.HoldCancelled, old.Status)

	// The abandoned spot is immediately claimable by someone else.
	_, err = s.AcquireHold(ctx, 2, lot.ID, lot.Spots[0].ID, 0)
	assert.NoError(t, err)
}

func TestHoldExpiryIsSweptLazily(t *testing.T) {
	s, clock, _ := newTestStore(t)
	ctx := context.Background()
	lot := seedLot(t, s, 1, 10)
	spot := lot.Spots[0]

	hold, err := s.AcquireHold(ctx, 1, lot.ID, spot.ID, 0)
	require.NoError(t, err)

	clock.Advance(DefaultHoldDuration + time.Second)

	// The expired hold no longer blocks a rival.
	rival, err := s.AcquireHold(ctx, 2, lot.ID, spot.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, spot.ID, rival.SpotID)

	var swept model.SpotHold
	require.NoError(t, s.DB().First(&swept, hold.ID).Error)
	assert.Equal(t, model.HoldExpired, swept.Status)
}

func TestAcquireHoldValidation(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	lot := seedLot(t, s, 1, 10)
	other := seedLot(t, s, 1, 10)

	_, err := s.AcquireHold(ctx, 1, lot.ID, 9999, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	// A spot from another lot is rejected.
	_, err = s.AcquireHold(ctx, 1, lot.ID, other.Spots[0].ID, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAcquireHoldSkipsMaintenance(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	lot := seedLot(t, s, 1, 10)
	spot := lot.Spots[0]

	_, err := s.StartMaintenance(ctx, spot.ID, 1, "resurfacing", nil)
	require.NoError(t, err)

	_, err = s.AcquireHold(ctx, 1, lot.ID, spot.ID, 0)
	assert.ErrorIs(t, err, ErrSpotConflict)

	require.NoError(t, s.StopMaintenance(ctx, spot.ID))
	_, err = s.AcquireHold(ctx, 1, lot.ID, spot.ID, 0)
	assert.NoError(t, err)
}
