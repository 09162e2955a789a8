package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"parking-reservation-backend/internal/model"
)

// LotUpdate carries the editable lot fields for UpdateLot.
type LotUpdate struct {
	LocationName string
	Address      string
	Pincode      string
	PricePerHour float64
	TotalSlots   int
}

// CreateLot creates a lot and seeds its spots S1..Sn, all available.
func (s *Store) CreateLot(ctx context.Context, ownerID int64, u LotUpdate) (*model.ParkingLot, error) {
	if u.TotalSlots <= 0 {
		return nil, fmt.Errorf("total slots must be positive: %w", ErrValidation)
	}
	if u.PricePerHour < 0 {
		return nil, fmt.Errorf("price per hour must not be negative: %w", ErrValidation)
	}
	if u.LocationName == "" {
		return nil, fmt.Errorf("location name is required: %w", ErrValidation)
	}

	now := s.now()
	lot := model.ParkingLot{
		OwnerID:        ownerID,
		LocationName:   u.LocationName,
		Address:        u.Address,
		Pincode:        u.Pincode,
		PricePerHour:   u.PricePerHour,
		TotalSlots:     u.TotalSlots,
		AvailableSlots: u.TotalSlots,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lot).Error; err != nil {
			return err
		}
		spots := make([]model.ParkingSpot, 0, u.TotalSlots)
		for i := 1; i <= u.TotalSlots; i++ {
			spots = append(spots, model.ParkingSpot{
				LotID:       lot.ID,
				SpotNumber:  i,
				IsAvailable: true,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
		return tx.Create(&spots).Error
	})
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

// UpdateLot edits lot fields and resizes its spot set. Growing reuses
// the lowest missing spot numbers before extending past the current
// maximum; shrinking deletes available spots highest id first, after
// removing their dependent holds, bookings and maintenance rows. If
// fewer available spots exist than the shrink requires, the whole
// operation fails with no partial mutation.
func (s *Store) UpdateLot(ctx context.Context, lotID int64, u LotUpdate) (*model.ParkingLot, error) {
	if err := s.sweep(ctx); err != nil {
		return nil, err
	}
	if u.TotalSlots <= 0 {
		return nil, fmt.Errorf("total slots must be positive: %w", ErrValidation)
	}

	now := s.now()
	var lot model.ParkingLot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&lot, lotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("lot %d: %w", lotID, ErrNotFound)
			}
			return err
		}

		lot.LocationName = u.LocationName
		lot.Address = u.Address
		lot.Pincode = u.Pincode
		lot.PricePerHour = u.PricePerHour

		var existing []model.ParkingSpot
		if err := tx.Where("lot_id = ?", lotID).Find(&existing).Error; err != nil {
			return err
		}

		current := len(existing)
		switch {
		case u.TotalSlots > current:
			if err := growLotTx(tx, lotID, existing, u.TotalSlots-current, now); err != nil {
				return err
			}
		case u.TotalSlots < current:
			if err := s.shrinkLotTx(tx, lotID, current-u.TotalSlots); err != nil {
				return err
			}
		}

		lot.TotalSlots = u.TotalSlots
		if err := tx.Save(&lot).Error; err != nil {
			return err
		}
		return s.refreshAvailableSlotsTx(tx, lotID, now)
	})
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).First(&lot, lotID).Error; err != nil {
		return nil, err
	}
	return &lot, nil
}

// growLotTx adds spots, reusing gaps in the numbering before extending
// the range upward.
func growLotTx(tx *gorm.DB, lotID int64, existing []model.ParkingSpot, toAdd int, now time.Time) error {
	taken := make(map[int]bool, len(existing))
	maxNumber := 0
	for _, spot := range existing {
		taken[spot.SpotNumber] = true
		if spot.SpotNumber > maxNumber {
			maxNumber = spot.SpotNumber
		}
	}

	var missing []int
	for n := 1; n <= maxNumber; n++ {
		if !taken[n] {
			missing = append(missing, n)
		}
	}
	sort.Ints(missing)

	numbers := make([]int, 0, toAdd)
	for _, n := range missing {
		if len(numbers) == toAdd {
			break
		}
		numbers = append(numbers, n)
	}
	for len(numbers) < toAdd {
		maxNumber++
		numbers = append(numbers, maxNumber)
	}

	spots := make([]model.ParkingSpot, 0, len(numbers))
	for _, n := range numbers {
		spots = append(spots, model.ParkingSpot{
			LotID:       lotID,
			SpotNumber:  n,
			IsAvailable: true,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return tx.Create(&spots).Error
}

// shrinkLotTx removes toRemove available spots, highest id first, with
// their dependent rows. Occupied spots are never deleted; insufficient
// available spots fail the whole resize.
func (s *Store) shrinkLotTx(tx *gorm.DB, lotID int64, toRemove int) error {
	var removable []model.ParkingSpot
	if err := tx.
		Where("lot_id = ? AND is_available = ?", lotID, true).
		Order("id DESC").
		Find(&removable).Error; err != nil {
		return err
	}
	if len(removable) < toRemove {
		return fmt.Errorf("cannot reduce total slots, not enough free spots are available: %w", ErrValidation)
	}

	for _, spot := range removable[:toRemove] {
		if err := deleteSpotDependentsTx(tx, spot.ID); err != nil {
			return err
		}
		if err := tx.Delete(&model.ParkingSpot{}, spot.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

// deleteSpotDependentsTx removes the non-owning back-references to a spot
// before the spot row itself is deleted. These secondary relations are
// cleaned up explicitly, never via storage-level cascade.
func deleteSpotDependentsTx(tx *gorm.DB, spotID int64) error {
	if err := tx.Where("spot_id = ?", spotID).Delete(&model.SpotHold{}).Error; err != nil {
		return err
	}
	if err := tx.Where("spot_id = ?", spotID).Delete(&model.Booking{}).Error; err != nil {
		return err
	}
	return tx.Where("spot_id = ?", spotID).Delete(&model.SpotMaintenanceWindow{}).Error
}

// DeleteSpot removes one spot from a lot. Blocked while the spot is
// occupied or has an active booking; historical bookings for the spot
// are removed with it and the lot's counters are recomputed.
func (s *Store) DeleteSpot(ctx context.Context, spotID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var spot model.ParkingSpot
		if err := tx.First(&spot, spotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("spot %d: %w", spotID, ErrNotFound)
			}
			return err
		}
		if !spot.IsAvailable {
			return fmt.Errorf("cannot delete an occupied spot: %w", ErrValidation)
		}
		var activeBookings int64
		if err := tx.Model(&model.Booking{}).
			Where("spot_id = ? AND status = ?", spotID, model.BookingActive).
			Count(&activeBookings).Error; err != nil {
			return err
		}
		if activeBookings > 0 {
			return fmt.Errorf("cannot delete spot with active bookings: %w", ErrValidation)
		}

		if err := deleteSpotDependentsTx(tx, spotID); err != nil {
			return err
		}
		if err := tx.Delete(&model.ParkingSpot{}, spotID).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.ParkingLot{}).
			Where("id = ?", spot.LotID).
			Update("total_slots", gorm.Expr("total_slots - 1")).Error; err != nil {
			return err
		}
		return s.refreshAvailableSlotsTx(tx, spot.LotID, s.now())
	})
}

// DeleteLot removes a lot and everything referencing it. Blocked while
// any spot is occupied or any booking is active.
func (s *Store) DeleteLot(ctx context.Context, lotID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lot model.ParkingLot
		if err := tx.First(&lot, lotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("lot %d: %w", lotID, ErrNotFound)
			}
			return err
		}

		var occupied int64
		if err := tx.Model(&model.ParkingSpot{}).
			Where("lot_id = ? AND is_available = ?", lotID, false).
			Count(&occupied).Error; err != nil {
			return err
		}
		if occupied > 0 {
			return fmt.Errorf("cannot delete lot, some spots are still occupied: %w", ErrValidation)
		}
		var activeBookings int64
		if err := tx.Model(&model.Booking{}).
			Where("lot_id = ? AND status = ?", lotID, model.BookingActive).
			Count(&activeBookings).Error; err != nil {
			return err
		}
		if activeBookings > 0 {
			return fmt.Errorf("cannot delete lot with active bookings: %w", ErrValidation)
		}

		for _, m := range []any{
			&model.Booking{},
			&model.SpotHold{},
			&model.WaitlistEntry{},
			&model.ScheduledBooking{},
			&model.SpotMaintenanceWindow{},
			&model.ParkingSpot{},
		} {
			if err := tx.Where("lot_id = ?", lotID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.ParkingLot{}, lotID).Error
	})
}

// ListLots returns all lots ordered by id.
func (s *Store) ListLots(ctx context.Context) ([]model.ParkingLot, error) {
	var lots []model.ParkingLot
	err := s.db.WithContext(ctx).Order("id ASC").Find(&lots).Error
	return lots, err
}

// GetLot returns one lot with its spots preloaded in number order.
func (s *Store) GetLot(ctx context.Context, lotID int64) (*model.ParkingLot, error) {
	var lot model.ParkingLot
	err := s.db.WithContext(ctx).
		Preload("Spots", func(db *gorm.DB) *gorm.DB { return db.Order("spot_number ASC") }).
		First(&lot, lotID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lot %d: %w", lotID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

// StartMaintenance opens a maintenance window on a spot, taking it out
// of bookability. A spot has at most one active window at a time.
func (s *Store) StartMaintenance(ctx context.Context, spotID, adminID int64, reason string, endsAt *time.Time) (*model.SpotMaintenanceWindow, error) {
	now := s.now()
	var window model.SpotMaintenanceWindow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var spot model.ParkingSpot
		if err := tx.First(&spot, spotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("spot %d: %w", spotID, ErrNotFound)
			}
			return err
		}

		var active int64
		if err := tx.Model(&model.SpotMaintenanceWindow{}).
			Where("spot_id = ? AND is_active = ? AND (ends_at IS NULL OR ends_at > ?)", spotID, true, now).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("spot already has an active maintenance window: %w", ErrValidation)
		}

		window = model.SpotMaintenanceWindow{
			SpotID:    spotID,
			LotID:     spot.LotID,
			Reason:    reason,
			IsActive:  true,
			StartsAt:  now,
			EndsAt:    endsAt,
			CreatedBy: &adminID,
		}
		if err := tx.Create(&window).Error; err != nil {
			return err
		}
		return s.refreshAvailableSlotsTx(tx, spot.LotID, now)
	})
	if err != nil {
		return nil, err
	}
	return &window, nil
}

// StopMaintenance closes the active maintenance window on a spot and
// restores its bookability.
func (s *Store) StopMaintenance(ctx context.Context, spotID int64) error {
	now := s.now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var window model.SpotMaintenanceWindow
		err := tx.
			Where("spot_id = ? AND is_active = ?", spotID, true).
			Order("starts_at DESC").
			First(&window).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no active maintenance window for spot %d: %w", spotID, ErrNotFound)
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&window).Updates(map[string]any{
			"is_active": false,
			"ends_at":   now,
		}).Error; err != nil {
			return err
		}
		return s.refreshAvailableSlotsTx(tx, window.LotID, now)
	})
}
