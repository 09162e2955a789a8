package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"parking-reservation-backend/internal/model"
)

// AddVehicle saves a plate for the user. The plate is normalized before
// storage; re-adding an active plate returns the existing vehicle with
// created=false. A soft-deleted vehicle with the same plate is revived.
// The user's first active vehicle becomes the default.
func (s *Store) AddVehicle(ctx context.Context, userID int64, plate, label string) (*model.Vehicle, bool, error) {
	plate = NormalizePlate(plate)
	if plate == "" {
		return nil, false, fmt.Errorf("vehicle number is required: %w", ErrValidation)
	}

	var vehicle model.Vehicle
	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("user_id = ? AND plate_number = ?", userID, plate).
			First(&vehicle).Error
		switch {
		case err == nil:
			if vehicle.IsActive {
				return nil
			}
			vehicle.IsActive = true
			vehicle.Label = label
			if err := tx.Save(&vehicle).Error; err != nil {
				return err
			}
			created = true
		case errors.Is(err, gorm.ErrRecordNotFound):
			vehicle = model.Vehicle{
				UserID:      userID,
				PlateNumber: plate,
				Label:       label,
				IsActive:    true,
				CreatedAt:   s.now(),
			}
			if err := tx.Create(&vehicle).Error; err != nil {
				return err
			}
			created = true
		default:
			return err
		}

		var actives int64
		if err := tx.Model(&model.Vehicle{}).
			Where("user_id = ? AND is_active = ? AND is_default = ?", userID, true, true).
			Count(&actives).Error; err != nil {
			return err
		}
		if actives == 0 {
			return tx.Model(&vehicle).Update("is_default", true).Error
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &vehicle, created, nil
}

// ListVehicles returns the user's active vehicles, default first.
func (s *Store) ListVehicles(ctx context.Context, userID int64) ([]model.Vehicle, error) {
	var vehicles []model.Vehicle
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("is_default DESC, created_at ASC").
		Find(&vehicles).Error
	return vehicles, err
}

// DefaultVehicle returns the user's default active vehicle, or nil when
// the user has none saved.
func (s *Store) DefaultVehicle(ctx context.Context, userID int64) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND is_default = ?", userID, true, true).
		First(&vehicle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// SetDefaultVehicle makes one of the user's active vehicles the default,
// clearing the flag on the rest.
func (s *Store) SetDefaultVehicle(ctx context.Context, userID, vehicleID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vehicle model.Vehicle
		if err := tx.First(&vehicle, vehicleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("vehicle %d: %w", vehicleID, ErrNotFound)
			}
			return err
		}
		if vehicle.UserID != userID {
			return fmt.Errorf("vehicle %d: %w", vehicleID, ErrUnauthorized)
		}
		if !vehicle.IsActive {
			return fmt.Errorf("vehicle %d is removed: %w", vehicleID, ErrValidation)
		}

		if err := tx.Model(&model.Vehicle{}).
			Where("user_id = ?", userID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&vehicle).Update("is_default", true).Error
	})
}

// RemoveVehicle soft-deletes a vehicle. If it was the default, the
// oldest remaining active vehicle is promoted.
func (s *Store) RemoveVehicle(ctx context.Context, userID, vehicleID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vehicle model.Vehicle
		if err := tx.First(&vehicle, vehicleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("vehicle %d: %w", vehicleID, ErrNotFound)
			}
			return err
		}
		if vehicle.UserID != userID {
			return fmt.Errorf("vehicle %d: %w", vehicleID, ErrUnauthorized)
		}
		if !vehicle.IsActive {
			return fmt.Errorf("vehicle %d already removed: %w", vehicleID, ErrValidation)
		}

		wasDefault := vehicle.IsDefault
		if err := tx.Model(&vehicle).Updates(map[string]any{
			"is_active":  false,
			"is_default": false,
		}).Error; err != nil {
			return err
		}
		if !wasDefault {
			return nil
		}

		var next model.Vehicle
		err := tx.
			Where("user_id = ? AND is_active = ?", userID, true).
			Order("created_at ASC").
			First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_default", true).Error
	})
}
