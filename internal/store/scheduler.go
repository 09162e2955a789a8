package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"parking-reservation-backend/internal/model"
)

// MinScheduleLead is the shortest allowed gap between now and a scheduled
// booking's requested start.
const MinScheduleLead = 5 * time.Minute

// CreateScheduledBooking records a future booking request. The requested
// start must be at least MinScheduleLead in the future.
func (s *Store) CreateScheduledBooking(ctx context.Context, userID, lotID int64, vehicleNo string, vehicleID *int64, requestedStart time.Time, durationHours int) (*model.ScheduledBooking, error) {
	if err := s.sweep(ctx); err != nil {
		return nil, err
	}

	plate := NormalizePlate(vehicleNo)
	if plate == "" {
		return nil, fmt.Errorf("vehicle number is required: %w", ErrValidation)
	}
	now := s.now()
	if !requestedStart.After(now.Add(MinScheduleLead)) {
		return nil, fmt.Errorf("scheduled start must be at least %s in the future: %w", MinScheduleLead, ErrValidation)
	}
	if durationHours < 1 {
		durationHours = 1
	}

	var lot model.ParkingLot
	if err := s.db.WithContext(ctx).First(&lot, lotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lot %d: %w", lotID, ErrNotFound)
		}
		return nil, err
	}

	scheduled := model.ScheduledBooking{
		UserID:         userID,
		LotID:          lotID,
		VehicleID:      vehicleID,
		VehicleNo:      plate,
		RequestedStart: requestedStart.UTC(),
		DurationHours:  durationHours,
		Status:         model.ScheduledPending,
		CreatedAt:      now,
	}
	if err := s.db.WithContext(ctx).Create(&scheduled).Error; err != nil {
		return nil, err
	}

	when := scheduled.RequestedStart.Format("2006-01-02 15:04")
	s.notify.Notify(ctx, userID, "scheduled_booking_created", "Scheduled Booking Created",
		fmt.Sprintf("Your booking at %s is scheduled for %s.", lot.LocationName, when),
		model.ChannelInApp)
	s.notify.Notify(ctx, userID, "scheduled_booking_created_email", "Parking Booking Scheduled",
		fmt.Sprintf("Booking confirmed at %s for %s.", lot.LocationName, when),
		model.ChannelEmail)

	return &scheduled, nil
}

// pendingNote is a notification deferred until the sweep transaction
// commits.
type pendingNote struct {
	userID  int64
	typ     string
	subject string
	message string
	channel string
}

// ActivateDueScheduledBookings converts scheduled bookings whose
// requested start has passed, oldest deadline first, up to limit per
// sweep. A converted booking keeps the originally requested start as its
// displayed start time so billing stays fair regardless of when the
// sweep happened to run. When no spot is free the request is marked
// missed and the user is enrolled in the lot's waitlist.
//
// The sweep is invoked from every allocation-sensitive request path and
// from the cron runner; staleness is bounded by traffic, not wall-clock.
func (s *Store) ActivateDueScheduledBookings(ctx context.Context, limit int) (converted, deferred []model.ScheduledBooking, err error) {
	if limit <= 0 {
		limit = DefaultSweepLimit
	}
	if _, err := s.CleanupExpiredHolds(ctx); err != nil {
		return nil, nil, err
	}

	now := s.now()
	var notes []pendingNote
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var due []model.ScheduledBooking
		if err := tx.
			Where("status = ? AND requested_start <= ?", model.ScheduledPending, now).
			Order("requested_start ASC").
			Limit(limit).
			Find(&due).Error; err != nil {
			return err
		}

		for i := range due {
			scheduled := due[i]

			var lot model.ParkingLot
			if err := tx.First(&lot, scheduled.LotID).Error; err != nil {
				return err
			}

			spot, err := s.bookableSpotTx(tx, scheduled.LotID, scheduled.UserID, now)
			if err != nil {
				return err
			}

			if spot == nil {
				if _, _, err := s.joinWaitlistTx(tx, scheduled.UserID, scheduled.LotID,
					scheduled.VehicleNo, scheduled.VehicleID,
					&scheduled.RequestedStart, scheduled.DurationHours, now); err != nil {
					return err
				}
				scheduled.Status = model.ScheduledMissed
				if err := tx.Save(&scheduled).Error; err != nil {
					return err
				}
				deferred = append(deferred, scheduled)
				notes = append(notes, pendingNote{
					userID:  scheduled.UserID,
					typ:     "scheduled_booking_deferred",
					subject: "Scheduled Booking Deferred",
					message: "Your scheduled booking could not start on time and was moved to waitlist.",
					channel: model.ChannelInApp,
				})
				continue
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

			booking := model.Booking{
				UserID:    scheduled.UserID,
				LotID:     scheduled.LotID,
				SpotID:    spot.ID,
				VehicleNo: scheduled.VehicleNo,
				Status:    model.BookingActive,
				StartedAt: scheduled.RequestedStart,
			}
			if err := tx.Create(&booking).Error; err != nil {
				return err
			}

			scheduled.Status = model.ScheduledConverted
			scheduled.AssignedSpotID = &spot.ID
			scheduled.ConvertedBookingID = &booking.ID
			if err := tx.Save(&scheduled).Error; err != nil {
				return err
			}
			if err := s.refreshAvailableSlotsTx(tx, scheduled.LotID, now); err != nil {
				return err
			}

			converted = append(converted, scheduled)
			notes = append(notes, pendingNote{
				userID:  scheduled.UserID,
				typ:     "scheduled_booking_started",
				subject: "Scheduled Booking Started",
				message: fmt.Sprintf("Your scheduled booking is now active at %s, spot %s.", lot.LocationName, spot.Label()),
				channel: model.ChannelInApp,
			})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	for _, n := range notes {
		s.notify.Notify(ctx, n.userID, n.typ, n.subject, n.message, n.channel)
	}
	return converted, deferred, nil
}
