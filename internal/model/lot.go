package model

import "time"

// ParkingLot represents a physical lot owning a set of numbered spots.
//
// AvailableSlots is a derived, cached count of currently bookable spots.
// It is recomputed from live spot/hold/maintenance state after every
// mutation and must never be used as the source of truth for allocation.
type ParkingLot struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	OwnerID        int64     `gorm:"index;not null" json:"owner_id"`
	LocationName   string    `gorm:"size:100;not null" json:"location_name"`
	Address        string    `gorm:"size:200;not null" json:"address"`
	Pincode        string    `gorm:"size:10;not null" json:"pincode"`
	PricePerHour   float64   `gorm:"not null" json:"price_per_hour"`
	TotalSlots     int       `gorm:"not null" json:"total_slots"`
	AvailableSlots int       `gorm:"not null" json:"available_slots"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`

	// Associations
	Spots []ParkingSpot `gorm:"foreignKey:LotID;constraint:OnDelete:CASCADE" json:"spots,omitempty"`
}
