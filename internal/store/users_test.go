package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-reservation-backend/internal/db"
	"parking-reservation-backend/internal/model"
)

func TestCreateUserAndLookup(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "  Alice@Example.COM ", "hash", "Alice", "2 Oak St", "560002")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)

	// Duplicate registration, case-insensitive.
	_, err = s.CreateUser(ctx, "ALICE@example.com", "hash", "", "", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.CreateUser(ctx, "not-an-email", "hash", "", "", "")
	assert.ErrorIs(t, err, ErrValidation)

	found, err := s.UserByEmail(ctx, "Alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = s.UserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FullName)
}

func TestSeedAdminIdempotent(t *testing.T) {
	s, _, _ := newTestStore(t)

	require.NoError(t, db.SeedAdmin(s.DB(), "admin@example.com", "hash1"))
	require.NoError(t, db.SeedAdmin(s.DB(), "admin@example.com", "hash2"))

	var admins []model.User
	require.NoError(t, s.DB().Where("email = ?", "admin@example.com").Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, model.RoleAdmin, admins[0].Role)
	assert.Equal(t, "hash1", admins[0].PasswordHash, "existing account is left untouched")
}
