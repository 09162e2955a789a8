package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"gorm.io/gorm"

	"parking-reservation-backend/internal/model"
)

// ConfirmBooking converts the caller's hold into an active booking. The
// hold, the spot's availability and its maintenance state are re-validated
// inside the same transaction as the write: a pre-read can be stale by
// commit time, and the guarded spot update is the final arbiter against a
// concurrent claimant. An invalidated hold is marked expired and the
// caller retries allocation from scratch.
func (s *Store) ConfirmBooking(ctx context.Context, userID, lotID int64, vehicleNo string) (*model.Booking, error) {
	if err := s.sweep(ctx); err != nil {
		return nil, err
	}

	plate := NormalizePlate(vehicleNo)
	if plate == "" {
		return nil, fmt.Errorf("vehicle number is required: %w", ErrValidation)
	}

	now := s.now()
	var (
		booking model.Booking
		spot    model.ParkingSpot
		lot     model.ParkingLot
		opErr   error
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&lot, lotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("lot %d: %w", lotID, ErrNotFound)
			}
			return err
		}

		hold, err := s.activeHoldTx(tx, userID, lotID, now)
		if err != nil {
			return err
		}
		if hold == nil {
			opErr = ErrHoldExpired
			return nil
		}

		if err := tx.First(&spot, hold.SpotID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		maintenance, err := s.activeMaintenanceTx(tx, lotID, now)
		if err != nil {
			return err
		}
		_, down := maintenance[hold.SpotID]
		if spot.ID == 0 || !spot.IsAvailable || down {
			// The held spot was invalidated between hold-check and
			// commit. Expire the hold and keep that state change even
			// though the booking fails.
			if err := tx.Model(hold).Update("status", model.HoldExpired).Error; err != nil {
				return err
			}
			opErr = ErrSpotConflict
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

		if err := tx.Model(hold).Update("status", model.HoldConverted).Error; err != nil {
			return err
		}

		booking = model.Booking{
			UserID:    userID,
			LotID:     lotID,
			SpotID:    spot.ID,
			VehicleNo: plate,
			Status:    model.BookingActive,
			StartedAt: now,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		return s.refreshAvailableSlotsTx(tx, lotID, now)
	})
	if err != nil {
		return nil, err
	}
	if opErr != nil {
		return nil, opErr
	}

	s.notify.Notify(ctx, userID, "booking_confirmed", "Booking Confirmed",
		fmt.Sprintf("Parking spot %s at %s is now active.", spot.Label(), lot.LocationName),
		model.ChannelInApp)
	s.notify.Notify(ctx, userID, "booking_confirmed_email", "Parking Booking Confirmed",
		fmt.Sprintf("You booked spot %s at %s.", spot.Label(), lot.LocationName),
		model.ChannelEmail)

	return &booking, nil
}

// billedHours rounds the parked duration to the nearest hour with a
// one-hour minimum.
func billedHours(start, end time.Time) int {
	hours := int(math.Round(end.Sub(start).Hours()))
	if hours < 1 {
		return 1
	}
	return hours
}

// ReleaseBooking ends an active booking owned by the caller: it computes
// the cost, frees the spot, issues the invoice in the same transaction,
// and then attempts waitlist fulfillment for the freed lot.
func (s *Store) ReleaseBooking(ctx context.Context, bookingID, callerID int64) (*model.Booking, *model.Invoice, error) {
	if err := s.sweep(ctx); err != nil {
		return nil, nil, err
	}

	now := s.now()
	var (
		booking model.Booking
		invoice model.Invoice
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
			}
			return err
		}
		if booking.UserID != callerID {
			return ErrUnauthorized
		}
		if booking.Status != model.BookingActive {
			return ErrAlreadyReleased
		}

		var lot model.ParkingLot
		if err := tx.First(&lot, booking.LotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("booking %d references lot %d with no matching row: %w",
					booking.ID, booking.LotID, gorm.ErrInvalidData)
			}
			return err
		}

		hours := billedHours(booking.StartedAt, now)
		cost := float64(hours) * lot.PricePerHour

		booking.Status = model.BookingReleased
		booking.ReleasedAt = &now
		booking.Cost = &cost
		if err := tx.Save(&booking).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.ParkingSpot{}).
			Where("id = ?", booking.SpotID).
			Update("is_available", true).Error; err != nil {
			return err
		}
		if err := s.refreshAvailableSlotsTx(tx, booking.LotID, now); err != nil {
			return err
		}

		inv, err := s.generateInvoiceTx(tx, &booking, cost, now)
		if err != nil {
			return err
		}
		invoice = *inv
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.notify.Notify(ctx, callerID, "release_success", "Parking Released",
		fmt.Sprintf("Booking #%d released successfully. Invoice %s generated for %s %.2f.",
			booking.ID, invoice.InvoiceNo, invoice.Currency, invoice.Amount),
		model.ChannelInApp)
	s.notify.Notify(ctx, callerID, "release_success_email", "Parking Release Receipt",
		fmt.Sprintf("Release completed for booking #%d. Invoice: %s, Amount: %s %.2f.",
			booking.ID, invoice.InvoiceNo, invoice.Currency, invoice.Amount),
		model.ChannelEmail)

	// A release frees at most one spot, so at most one waitlist entry
	// can be advanced. The release itself is already committed and
	// invoiced; a fulfillment failure must not be reported as a failed
	// release.
	if _, _, err := s.FulfillWaitlist(ctx, booking.LotID); err != nil {
		log.Printf("Waitlist fulfillment after releasing booking %d failed: %v", booking.ID, err)
	}

	return &booking, &invoice, nil
}

// ListBookings returns the user's bookings, newest first.
func (s *Store) ListBookings(ctx context.Context, userID int64) ([]model.Booking, error) {
	var bookings []model.Booking
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&bookings).Error
	return bookings, err
}
