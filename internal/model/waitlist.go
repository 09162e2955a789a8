package model

import "time"

// Waitlist entry states.
const (
	WaitlistWaiting   = "waiting"
	WaitlistFulfilled = "fulfilled"
	WaitlistCancelled = "cancelled"
)

// WaitlistEntry queues a user for the next freed spot in a lot.
// Fulfillment is strictly FIFO by CreatedAt, one entry per release.
type WaitlistEntry struct {
	ID                     int64      `gorm:"primaryKey" json:"id"`
	UserID                 int64      `gorm:"index;not null" json:"user_id"`
	LotID                  int64      `gorm:"index;not null" json:"lot_id"`
	VehicleID              *int64     `json:"vehicle_id,omitempty"`
	VehicleNo              string     `gorm:"size:20;not null" json:"vehicle_no"`
	RequestedStart         *time.Time `json:"requested_start,omitempty"`
	RequestedDurationHours int        `gorm:"not null;default:1" json:"requested_duration_hours"`
	Status                 string     `gorm:"size:20;not null;default:waiting" json:"status"`
	CreatedAt              time.Time  `gorm:"not null" json:"created_at"`
	NotifiedAt             *time.Time `json:"notified_at,omitempty"`
	FulfilledAt            *time.Time `json:"fulfilled_at,omitempty"`
}
