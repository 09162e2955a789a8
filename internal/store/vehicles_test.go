package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddVehicleNormalizesAndDefaults(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	first, created, err := s.AddVehicle(ctx, 1, " ka 01 ab 1234 ", "daily driver")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "KA01AB1234", first.PlateNumber)
	assert.True(t, first.IsDefault, "first vehicle becomes the default")

	second, created, err := s.AddVehicle(ctx, 1, "MH12XY99", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, second.IsDefault)

	// Re-adding the same plate is a no-op.
	again, created, err := s.AddVehicle(ctx, 1, "ka01ab1234", "ignored")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	_, _, err = s.AddVehicle(ctx, 1, "  ", "")
	assert.ErrorIs(t, err, ErrValidation)

	vehicles, err := s.ListVehicles(ctx, 1)
	require.NoError(t, err)
	require.Len(t, vehicles, 2)
	assert.Equal(t, first.ID, vehicles[0].ID, "default is listed first")
}

func TestSetDefaultVehicleSingleWinner(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	first, _, err := s.AddVehicle(ctx, 1, "KA01A1", "")
	require.NoError(t, err)
	second, _, err := s.AddVehicle(ctx, 1, "KA02A2", "")
	require.NoError(t, err)

	require.NoError(t, s.SetDefaultVehicle(ctx, 1, second.ID))

	vehicles, err := s.ListVehicles(ctx, 1)
	require.NoError(t, err)
	require.Len(t, vehicles, 2)
	assert.Equal(t, second.ID, vehicles[0].ID)
	assert.True(t, vehicles[0].IsDefault)
	assert.False(t, vehicles[1].IsDefault)

	// Another user's vehicle is out of reach.
	assert.ErrorIs(t, s.SetDefaultVehicle(ctx, 2, first.ID), ErrUnauthorized)
	assert.ErrorIs(t, s.SetDefaultVehicle(ctx, 1, 9999), ErrNotFound)
}

func TestRemoveVehiclePromotesOldestActive(t *testing.T) {
	s, clock, _ := newTestStore(t)
	ctx := context.Background()

	first, _, err := s.AddVehicle(ctx, 1, "KA01A1", "")
	require.NoError(t, err)
	clock.Advance(1)
	second, _, err := s.AddVehicle(ctx, 1, "KA02A2", "")
	require.NoError(t, err)
	clock.Advance(1)
	third, _, err := s.AddVehicle(ctx, 1, "KA03A3", "")
	require.NoError(t, err)

	// Removing the default promotes the oldest remaining vehicle.
	require.NoError(t, s.RemoveVehicle(ctx, 1, first.ID))

	vehicles, err := s.ListVehicles(ctx, 1)
	require.NoError(t, err)
	require.Len(t, vehicles, 2)
	assert.Equal(t, second.ID, vehicles[0].ID)
	assert.True(t, vehicles[0].IsDefault)

	// Removing a non-default leaves the default alone.
	require.NoError(t, s.RemoveVehicle(ctx, 1, third.ID))
	def, err := s.DefaultVehicle(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, second.ID, def.ID)

	// A removed vehicle cannot be removed twice.
	assert.ErrorIs(t, s.RemoveVehicle(ctx, 1, first.ID), ErrValidation)
	assert.ErrorIs(t, s.RemoveVehicle(ctx, 2, second.ID), ErrUnauthorized)
}

func TestAddVehicleRevivesSoftDeleted(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	first, _, err := s.AddVehicle(ctx, 1, "KA01A1", "")
	require.NoError(t, err)
	require.NoError(t, s.RemoveVehicle(ctx, 1, first.ID))

	def, err := s.DefaultVehicle(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, def)

	revived, created, err := s.AddVehicle(ctx, 1, "KA01A1", "back again")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, first.ID, revived.ID)
	assert.True(t, revived.IsActive)
}
