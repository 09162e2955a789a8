package model

import "time"

// InvoiceStatusPaid models instantaneous settlement: invoices are issued
// already paid, there is no real payment gateway.
const InvoiceStatusPaid = "paid"

// Invoice is generated once per released booking and is immutable after
// issuing.
type Invoice struct {
	ID         int64      `gorm:"primaryKey" json:"id"`
	BookingID  int64      `gorm:"index;not null" json:"booking_id"`
	UserID     int64      `gorm:"index;not null" json:"user_id"`
	InvoiceNo  string     `gorm:"uniqueIndex;size:32;not null" json:"invoice_no"`
	Amount     float64    `gorm:"not null" json:"amount"`
	Currency   string     `gorm:"size:8;not null;default:INR" json:"currency"`
	Status     string     `gorm:"size:20;not null;default:paid" json:"status"`
	PaymentRef string     `gorm:"size:64" json:"payment_ref"`
	IssuedAt   time.Time  `gorm:"not null" json:"issued_at"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
}
