package model

import "time"

// Spot hold states. A hold is effective only while it is active and
// unexpired; expiry is swept lazily on read paths, not by a timer.
const (
	HoldActive    = "active"
	HoldConverted = "converted"
	HoldExpired   = "expired"
	HoldCancelled = "cancelled"
)

// SpotHold is a short-lived exclusive claim on a spot while a user decides
// whether to confirm a booking. At most one effective hold exists per
// (user, lot) pair at any time.
type SpotHold struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	LotID     int64     `gorm:"index;not null" json:"lot_id"`
	SpotID    int64     `gorm:"index;not null" json:"spot_id"`
	Status    string    `gorm:"size:20;not null;default:active" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}
