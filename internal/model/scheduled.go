package model

import "time"

// Scheduled booking states. "missed" means the due sweep ran but no spot
// was free; the request degrades into a waitlist entry.
const (
	ScheduledPending   = "scheduled"
	ScheduledConverted = "converted"
	ScheduledMissed    = "missed"
	ScheduledCancelled = "cancelled"
)

// ScheduledBooking is a future booking request, activated by the due
// sweep in requested-start order.
type ScheduledBooking struct {
	ID                 int64     `gorm:"primaryKey" json:"id"`
	UserID             int64     `gorm:"index;not null" json:"user_id"`
	LotID              int64     `gorm:"index;not null" json:"lot_id"`
	VehicleID          *int64    `json:"vehicle_id,omitempty"`
	VehicleNo          string    `gorm:"size:20;not null" json:"vehicle_no"`
	RequestedStart     time.Time `gorm:"index;not null" json:"requested_start"`
	DurationHours      int       `gorm:"not null;default:1" json:"duration_hours"`
	Status             string    `gorm:"size:20;not null;default:scheduled" json:"status"`
	AssignedSpotID     *int64    `json:"assigned_spot_id,omitempty"`
	ConvertedBookingID *int64    `json:"converted_booking_id,omitempty"`
	CreatedAt          time.Time `gorm:"not null" json:"created_at"`
}
