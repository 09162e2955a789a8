package model

import (
	"fmt"
	"time"
)

// ParkingSpot is a single numbered spot inside a lot.
//
// IsAvailable means physically free: it is independent of holds and
// maintenance windows, which are layered on top when computing bookability.
type ParkingSpot struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	LotID       int64     `gorm:"uniqueIndex:uix_lot_spot;not null" json:"lot_id"`
	SpotNumber  int       `gorm:"uniqueIndex:uix_lot_spot;not null" json:"spot_number"`
	IsAvailable bool      `gorm:"not null;default:true" json:"is_available"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// Label returns the stable display label for the spot, e.g. "S3".
func (s ParkingSpot) Label() string {
	return fmt.Sprintf("S%d", s.SpotNumber)
}
