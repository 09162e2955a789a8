package model

import "time"

// Booking states.
const (
	BookingActive   = "active"
	BookingReleased = "released"
)

// Booking is an occupation of one spot by one user. An active booking
// owns its spot exclusively; releasing it computes the cost and frees
// the spot for waitlist fulfillment.
type Booking struct {
	ID         int64      `gorm:"primaryKey" json:"id"`
	UserID     int64      `gorm:"index;not null" json:"user_id"`
	LotID      int64      `gorm:"index;not null" json:"lot_id"`
	SpotID     int64      `gorm:"index;not null" json:"spot_id"`
	VehicleNo  string     `gorm:"size:20;not null" json:"vehicle_no"`
	Status     string     `gorm:"size:10;not null;default:active" json:"status"`
	StartedAt  time.Time  `gorm:"not null" json:"started_at"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
	Cost       *float64   `json:"cost,omitempty"`
}
