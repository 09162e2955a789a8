package model

import "time"

// Vehicle is a saved plate for a user. Vehicles are soft-deleted via
// IsActive; at most one active vehicle per user is the default.
type Vehicle struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	UserID      int64     `gorm:"uniqueIndex:uix_user_plate;not null" json:"user_id"`
	PlateNumber string    `gorm:"uniqueIndex:uix_user_plate;size:20;not null" json:"plate_number"`
	Label       string    `gorm:"size:50" json:"label"`
	IsDefault   bool      `gorm:"not null;default:false" json:"is_default"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}
