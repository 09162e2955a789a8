package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"parking-reservation-backend/internal/model"
)

// LotOccupancyRow summarizes the live occupancy of one lot.
type LotOccupancyRow struct {
	LotID            int64   `json:"lotId"`
	LocationName     string  `json:"locationName"`
	TotalSlots       int     `json:"totalSlots"`
	OccupiedSpots    int64   `json:"occupiedSpots"`
	BookableSpots    int64   `json:"bookableSpots"`
	UnderMaintenance int64   `json:"underMaintenance"`
	OccupancyPct     float64 `json:"occupancyPct"`
}

// LotRevenueRow summarizes released-booking revenue per lot.
type LotRevenueRow struct {
	LotID            int64   `json:"lotId"`
	LocationName     string  `json:"locationName"`
	ReleasedBookings int64   `json:"releasedBookings"`
	Revenue          float64 `json:"revenue"`
}

// UserUsageRow summarizes one user's booking activity.
type UserUsageRow struct {
	TotalBookings  int64   `json:"totalBookings"`
	ActiveBookings int64   `json:"activeBookings"`
	TotalSpent     float64 `json:"totalSpent"`
	TotalHours     float64 `json:"totalHours"`
	MostUsedLotID  *int64  `json:"mostUsedLotId,omitempty"`
	MostUsedLot    string  `json:"mostUsedLot,omitempty"`
	WaitlistJoins  int64   `json:"waitlistJoins"`
}

// LotOccupancy reports live occupancy for every lot. Expired holds are
// swept first so held-spot counts reflect only effective holds.
func (s *Store) LotOccupancy(ctx context.Context) ([]LotOccupancyRow, error) {
	if err := s.sweep(ctx); err != nil {
		return nil, err
	}

	lots, err := s.ListLots(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	type aggRow struct {
		LotID    int64
		Occupied int64
	}
	var occ []aggRow
	if err := s.db.WithContext(ctx).
		Model(&model.ParkingSpot{}).
		Select("lot_id as lot_id, COUNT(*) as occupied").
		Where("is_available = ?", false).
		Group("lot_id").
		Scan(&occ).Error; err != nil {
		return nil, err
	}
	occMap := make(map[int64]int64, len(occ))
	for _, a := range occ {
		occMap[a.LotID] = a.Occupied
	}

	var maint []aggRow
	if err := s.db.WithContext(ctx).
		Model(&model.SpotMaintenanceWindow{}).
		Select("lot_id as lot_id, COUNT(*) as occupied").
		Where("is_active = ? AND (ends_at IS NULL OR ends_at > ?)", true, now).
		Group("lot_id").
		Scan(&maint).Error; err != nil {
		return nil, err
	}
	maintMap := make(map[int64]int64, len(maint))
	for _, a := range maint {
		maintMap[a.LotID] = a.Occupied
	}

	rows := make([]LotOccupancyRow, 0, len(lots))
	for _, lot := range lots {
		bookable, err := s.CountBookableSpots(ctx, lot.ID, 0)
		if err != nil {
			return nil, err
		}
		occupied := occMap[lot.ID]
		pct := 0.0
		if lot.TotalSlots > 0 {
			pct = float64(occupied) / float64(lot.TotalSlots) * 100
		}
		rows = append(rows, LotOccupancyRow{
			LotID:            lot.ID,
			LocationName:     lot.LocationName,
			TotalSlots:       lot.TotalSlots,
			OccupiedSpots:    occupied,
			BookableSpots:    int64(bookable),
			UnderMaintenance: maintMap[lot.ID],
			OccupancyPct:     pct,
		})
	}
	return rows, nil
}

// LotRevenue reports total settled revenue per lot over released bookings.
func (s *Store) LotRevenue(ctx context.Context) ([]LotRevenueRow, error) {
	lots, err := s.ListLots(ctx)
	if err != nil {
		return nil, err
	}

	type aggRow struct {
		LotID    int64
		Released int64
		Revenue  float64
	}
	var aggs []aggRow
	if err := s.db.WithContext(ctx).
		Model(&model.Booking{}).
		Select("lot_id as lot_id, COUNT(*) as released, COALESCE(SUM(cost), 0) as revenue").
		Where("status = ?", model.BookingReleased).
		Group("lot_id").
		Scan(&aggs).Error; err != nil {
		return nil, err
	}
	aggMap := make(map[int64]aggRow, len(aggs))
	for _, a := range aggs {
		aggMap[a.LotID] = a
	}

	rows := make([]LotRevenueRow, 0, len(lots))
	for _, lot := range lots {
		a := aggMap[lot.ID]
		rows = append(rows, LotRevenueRow{
			LotID:            lot.ID,
			LocationName:     lot.LocationName,
			ReleasedBookings: a.Released,
			Revenue:          a.Revenue,
		})
	}
	return rows, nil
}

// UserUsage reports one user's lifetime booking activity.
func (s *Store) UserUsage(ctx context.Context, userID int64) (*UserUsageRow, error) {
	db := s.db.WithContext(ctx)
	var row UserUsageRow

	if err := db.Model(&model.Booking{}).
		Where("user_id = ?", userID).
		Count(&row.TotalBookings).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Booking{}).
		Where("user_id = ? AND status = ?", userID, model.BookingActive).
		Count(&row.ActiveBookings).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&model.Booking{}).
		Select("COALESCE(SUM(cost), 0)").
		Where("user_id = ? AND status = ?", userID, model.BookingReleased).
		Scan(&row.TotalSpent).Error; err != nil {
		return nil, err
	}

	// Duration arithmetic differs per dialect, so sum hours in Go.
	var released []model.Booking
	if err := db.
		Where("user_id = ? AND status = ?", userID, model.BookingReleased).
		Find(&released).Error; err != nil {
		return nil, err
	}
	for _, b := range released {
		if b.ReleasedAt != nil {
			row.TotalHours += b.ReleasedAt.Sub(b.StartedAt).Hours()
		}
	}

	type lotRow struct {
		LotID int64
		Uses  int64
	}
	var top lotRow
	err := db.Model(&model.Booking{}).
		Select("lot_id as lot_id, COUNT(*) as uses").
		Where("user_id = ?", userID).
		Group("lot_id").
		Order("uses DESC").
		Limit(1).
		Scan(&top).Error
	if err != nil {
		return nil, err
	}
	if top.LotID != 0 {
		var lot model.ParkingLot
		if err := db.First(&lot, top.LotID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resolve most used lot: %w", err)
		} else if err == nil {
			row.MostUsedLotID = &top.LotID
			row.MostUsedLot = lot.LocationName
		}
	}

	if err := db.Model(&model.WaitlistEntry{}).
		Where("user_id = ?", userID).
		Count(&row.WaitlistJoins).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
