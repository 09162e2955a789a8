package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"parking-reservation-backend/internal/model"
)

// activeHoldsBySpotTx returns the effective holds for a lot keyed by spot id.
func (s *Store) activeHoldsBySpotTx(tx *gorm.DB, lotID int64, now time.Time) (map[int64]model.SpotHold, error) {
	var holds []model.SpotHold
	if err := tx.
		Where("lot_id = ? AND status = ? AND expires_at >= ?", lotID, model.HoldActive, now).
		Find(&holds).Error; err != nil {
		return nil, err
	}
	bySpot := make(map[int64]model.SpotHold, len(holds))
	for _, h := range holds {
		bySpot[h.SpotID] = h
	}
	return bySpot, nil
}

// activeMaintenanceTx returns the active maintenance windows for a lot
// keyed by spot id. A window with a nil EndsAt is open-ended.
func (s *Store) activeMaintenanceTx(tx *gorm.DB, lotID int64, now time.Time) (map[int64]model.SpotMaintenanceWindow, error) {
	var windows []model.SpotMaintenanceWindow
	if err := tx.
		Where("lot_id = ? AND is_active = ? AND (ends_at IS NULL OR ends_at > ?)", lotID, true, now).
		Find(&windows).Error; err != nil {
		return nil, err
	}
	bySpot := make(map[int64]model.SpotMaintenanceWindow, len(windows))
	for _, w := range windows {
		bySpot[w.SpotID] = w
	}
	return bySpot, nil
}

// bookableSpotTx returns the first spot of the lot that is available, not
// under maintenance, and not held by a different user. Spots are scanned
// in ascending spot number order so the lowest number always wins ties.
// A spot held by userID itself is still returned: the hold is advisory
// for its holder. Returns nil when no spot qualifies.
func (s *Store) bookableSpotTx(tx *gorm.DB, lotID, userID int64, now time.Time) (*model.ParkingSpot, error) {
	holds, err := s.activeHoldsBySpotTx(tx, lotID, now)
	if err != nil {
		return nil, err
	}
	maintenance, err := s.activeMaintenanceTx(tx, lotID, now)
	if err != nil {
		return nil, err
	}

	var candidates []model.ParkingSpot
	if err := tx.
		Where("lot_id = ? AND is_available = ?", lotID, true).
		Order("spot_number ASC").
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	for i := range candidates {
		spot := candidates[i]
		if _, down := maintenance[spot.ID]; down {
			continue
		}
		if hold, held := holds[spot.ID]; held && hold.UserID != userID {
			continue
		}
		return &spot, nil
	}
	return nil, nil
}

// countBookableTx applies the same filter as bookableSpotTx and returns
// the cardinality. userID 0 means no caller: every effective hold excludes
// its spot.
func (s *Store) countBookableTx(tx *gorm.DB, lotID, userID int64, now time.Time) (int, error) {
	holds, err := s.activeHoldsBySpotTx(tx, lotID, now)
	if err != nil {
		return 0, err
	}
	maintenance, err := s.activeMaintenanceTx(tx, lotID, now)
	if err != nil {
		return 0, err
	}

	var candidates []model.ParkingSpot
	if err := tx.
		Where("lot_id = ? AND is_available = ?", lotID, true).
		Find(&candidates).Error; err != nil {
		return 0, err
	}

	count := 0
	for _, spot := range candidates {
		if _, down := maintenance[spot.ID]; down {
			continue
		}
		if hold, held := holds[spot.ID]; held && hold.UserID != userID {
			continue
		}
		count++
	}
	return count, nil
}

// refreshAvailableSlotsTx recomputes the lot's cached available count from
// live spot/hold/maintenance state. Always a full recompute, never an
// increment, so concurrent partial updates cannot make it drift.
func (s *Store) refreshAvailableSlotsTx(tx *gorm.DB, lotID int64, now time.Time) error {
	n, err := s.countBookableTx(tx, lotID, 0, now)
	if err != nil {
		return err
	}
	return tx.Model(&model.ParkingLot{}).
		Where("id = ?", lotID).
		Update("available_slots", n).Error
}

// GetBookableSpot sweeps expired holds and returns the spot the user
// would be assigned in this lot right now, or nil when the lot is full
// for them.
func (s *Store) GetBookableSpot(ctx context.Context, lotID, userID int64) (*model.ParkingSpot, error) {
	if _, err := s.CleanupExpiredHolds(ctx); err != nil {
		return nil, err
	}
	return s.bookableSpotTx(s.db.WithContext(ctx), lotID, userID, s.now())
}

// CountBookableSpots sweeps expired holds and counts the spots currently
// bookable by the given user (0 for no user).
func (s *Store) CountBookableSpots(ctx context.Context, lotID, userID int64) (int, error) {
	if _, err := s.CleanupExpiredHolds(ctx); err != nil {
		return 0, err
	}
	return s.countBookableTx(s.db.WithContext(ctx), lotID, userID, s.now())
}
