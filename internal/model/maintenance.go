package model

import "time"

// SpotMaintenanceWindow marks a spot unbookable for a reason. A spot has
// at most one active window at a time; EndsAt nil means open-ended.
type SpotMaintenanceWindow struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	SpotID    int64      `gorm:"index;not null" json:"spot_id"`
	LotID     int64      `gorm:"index;not null" json:"lot_id"`
	Reason    string     `gorm:"size:200" json:"reason"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	StartsAt  time.Time  `gorm:"not null" json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	CreatedBy *int64     `json:"created_by,omitempty"`
}
