package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"parking-reservation-backend/internal/model"
)

// randomSuffix returns n random bytes as uppercase hex.
func randomSuffix(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// generateInvoiceTx issues the invoice for a released booking inside the
// release transaction. The invoice number is date + booking id + random
// suffix; settlement is instantaneous, so the invoice is born paid and
// immutable from then on.
func (s *Store) generateInvoiceTx(tx *gorm.DB, booking *model.Booking, totalCost float64, now time.Time) (*model.Invoice, error) {
	suffix, err := randomSuffix(2)
	if err != nil {
		return nil, err
	}

	invoice := model.Invoice{
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		InvoiceNo:  fmt.Sprintf("INV-%s-%d-%s", now.Format("20060102"), booking.ID, suffix),
		Amount:     math.Round(totalCost*100) / 100,
		Currency:   "INR",
		Status:     model.InvoiceStatusPaid,
		PaymentRef: "PAY-" + uuid.NewString(),
		IssuedAt:   now,
		PaidAt:     &now,
	}
	if err := tx.Create(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ListInvoices returns the user's invoices, newest first.
func (s *Store) ListInvoices(ctx context.Context, userID int64) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("issued_at DESC").
		Find(&invoices).Error
	return invoices, err
}
