package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"parking-reservation-backend/internal/model"
)

// CleanupExpiredHolds transitions every active hold whose expiry has
// passed to expired. It is idempotent and called at the start of every
// allocation-sensitive operation. Returns the number of holds swept.
func (s *Store) CleanupExpiredHolds(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&model.SpotHold{}).
		Where("status = ? AND expires_at < ?", model.HoldActive, s.now()).
		Update("status", model.HoldExpired)
	return res.RowsAffected, res.Error
}

// ActiveHold returns the most recently created effective hold for the
// (user, lot) pair, or nil when none exists.
func (s *Store) ActiveHold(ctx context.Context, userID, lotID int64) (*model.SpotHold, error) {
	if _, err := s.CleanupExpiredHolds(ctx); err != nil {
		return nil, err
	}
	return s.activeHoldTx(s.db.WithContext(ctx), userID, lotID, s.now())
}

func (s *Store) activeHoldTx(tx *gorm.DB, userID, lotID int64, now time.Time) (*model.SpotHold, error) {
	var hold model.SpotHold
	err := tx.
		Where("user_id = ? AND lot_id = ? AND status = ? AND expires_at >= ?",
			userID, lotID, model.HoldActive, now).
		Order("created_at DESC").
		First(&hold).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &hold, nil
}

// AcquireHold creates or refreshes the caller's hold on a spot. If the
// caller already holds this spot the expiry is extended; if they hold a
// different spot in the lot, the old hold is cancelled and a fresh one is
// created. The claimability of the spot is re-validated inside the same
// transaction as the write, so two users can never end up holding the
// same spot.
func (s *Store) AcquireHold(ctx context.Context, userID, lotID, spotID int64, duration time.Duration) (*model.SpotHold, error) {
	if duration <= 0 {
		duration = DefaultHoldDuration
	}
	if err := s.sweep(ctx); err != nil {
		return nil, err
	}

	now := s.now()
	expiresAt := now.Add(duration)

	var hold model.SpotHold
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var spot model.ParkingSpot
		if err := tx.First(&spot, spotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("spot %d: %w", spotID, ErrNotFound)
			}
			return err
		}
		if spot.LotID != lotID {
			return fmt.Errorf("spot %d does not belong to lot %d: %w", spotID, lotID, ErrValidation)
		}
		if !spot.IsAvailable {
			return ErrSpotConflict
		}

		maintenance, err := s.activeMaintenanceTx(tx, lotID, now)
		if err != nil {
			return err
		}
		if _, down := maintenance[spot.ID]; down {
			return ErrSpotConflict
		}

		var rivals int64
		if err := tx.Model(&model.SpotHold{}).
			Where("spot_id = ? AND status = ? AND expires_at >= ? AND user_id <> ?",
				spotID, model.HoldActive, now, userID).
			Count(&rivals).Error; err != nil {
			return err
		}
		if rivals > 0 {
			return ErrSpotConflict
		}

		existing, err := s.activeHoldTx(tx, userID, lotID, now)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.SpotID == spotID {
				// Idempotent refresh of the same spot.
				if err := tx.Model(existing).Update("expires_at", expiresAt).Error; err != nil {
					return err
				}
				existing.ExpiresAt = expiresAt
				hold = *existing
				return nil
			}
			if err := tx.Model(existing).Update("status", model.HoldCancelled).Error; err != nil {
				return err
			}
		}

		hold = model.SpotHold{
			UserID:    userID,
			LotID:     lotID,
			SpotID:    spotID,
			Status:    model.HoldActive,
			CreatedAt: now,
			ExpiresAt: expiresAt,
		}
		return tx.Create(&hold).Error
	})
	if err != nil {
		return nil, err
	}
	return &hold, nil
}
