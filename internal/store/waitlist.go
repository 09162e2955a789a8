package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"parking-reservation-backend/internal/model"
)

// joinWaitlistTx appends the user to the lot's queue unless they already
// have a waiting entry there. Duplicate joins are no-ops: the existing
// entry is returned with created=false.
func (s *Store) joinWaitlistTx(tx *gorm.DB, userID, lotID int64, vehicleNo string, vehicleID *int64, requestedStart *time.Time, durationHours int, now time.Time) (*model.WaitlistEntry, bool, error) {
	var existing model.WaitlistEntry
	err := tx.
		Where("user_id = ? AND lot_id = ? AND status = ?", userID, lotID, model.WaitlistWaiting).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if durationHours < 1 {
		durationHours = 1
	}
	entry := model.WaitlistEntry{
		UserID:                 userID,
		LotID:                  lotID,
		VehicleID:              vehicleID,
		VehicleNo:              NormalizePlate(vehicleNo),
		RequestedStart:         requestedStart,
		RequestedDurationHours: durationHours,
		Status:                 model.WaitlistWaiting,
		CreatedAt:              now,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, false, err
	}
	return &entry, true, nil
}

// JoinWaitlist enrolls the user for the next freed spot in the lot.
func (s *Store) JoinWaitlist(ctx context.Context, userID, lotID int64, vehicleNo string, vehicleID *int64) (*model.WaitlistEntry, bool, error) {
	plate := NormalizePlate(vehicleNo)
	if plate == "" {
		return nil, false, fmt.Errorf("vehicle number is required: %w", ErrValidation)
	}

	var lot model.ParkingLot
	if err := s.db.WithContext(ctx).First(&lot, lotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("lot %d: %w", lotID, ErrNotFound)
		}
		return nil, false, err
	}

	var (
		entry   *model.WaitlistEntry
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		entry, created, err = s.joinWaitlistTx(tx, userID, lotID, plate, vehicleID, nil, 1, s.now())
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.notify.Notify(ctx, userID, "waitlist_joined", "Added to Waitlist",
			fmt.Sprintf("You were added to waitlist for %s.", lot.LocationName),
			model.ChannelInApp)
	}
	return entry, created, nil
}

// CancelWaitlist cancels the caller's waiting entry. Only waiting entries
// can be cancelled.
func (s *Store) CancelWaitlist(ctx context.Context, entryID, callerID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry model.WaitlistEntry
		if err := tx.First(&entry, entryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("waitlist entry %d: %w", entryID, ErrNotFound)
			}
			return err
		}
		if entry.UserID != callerID {
			return ErrUnauthorized
		}
		if entry.Status != model.WaitlistWaiting {
			return fmt.Errorf("only waiting entries can be cancelled: %w", ErrValidation)
		}
		return tx.Model(&entry).Update("status", model.WaitlistCancelled).Error
	})
}

// FulfillWaitlist assigns a freed spot to the oldest waiting entry for
// the lot. Exactly one entry is processed per invocation. When no entry
// is waiting both results are nil; when the entrant cannot be seated yet
// the entry is returned still waiting with a nil booking.
func (s *Store) FulfillWaitlist(ctx context.Context, lotID int64) (*model.WaitlistEntry, *model.Booking, error) {
	now := s.now()
	var (
		entry   model.WaitlistEntry
		booking model.Booking
		spot    *model.ParkingSpot
		lotName string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("lot_id = ? AND status = ?", lotID, model.WaitlistWaiting).
			Order("created_at ASC").
			First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		spot, err = s.bookableSpotTx(tx, lotID, entry.UserID, now)
		if err != nil {
			return err
		}
		if spot == nil {
			return nil
		}

		res := tx.Model(&model.ParkingSpot{}).
			Where("id = ? AND is_available = ?", spot.ID, true).
			Update("is_available", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSpotConflict
		}

		booking = model.Booking{
			UserID:    entry.UserID,
			LotID:     entry.LotID,
			SpotID:    spot.ID,
			VehicleNo: entry.VehicleNo,
			Status:    model.BookingActive,
			StartedAt: now,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		entry.Status = model.WaitlistFulfilled
		entry.FulfilledAt = &now
		entry.NotifiedAt = &now
		if err := tx.Save(&entry).Error; err != nil {
			return err
		}

		var lot model.ParkingLot
		if err := tx.First(&lot, lotID).Error; err != nil {
			return err
		}
		lotName = lot.LocationName

		return s.refreshAvailableSlotsTx(tx, lotID, now)
	})
	if err != nil {
		return nil, nil, err
	}
	if entry.ID == 0 {
		return nil, nil, nil
	}
	if spot == nil {
		return &entry, nil, nil
	}

	s.notify.Notify(ctx, entry.UserID, "waitlist_fulfilled", "Spot Assigned from Waitlist",
		fmt.Sprintf("Parking spot %s in %s is now assigned to you.", spot.Label(), lotName),
		model.ChannelInApp)

	return &entry, &booking, nil
}
