package model

import "time"

// User roles. Admins manage lots and maintenance; users book spots.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account.
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:150;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	FullName     string    `gorm:"size:100" json:"full_name"`
	Address      string    `gorm:"size:200" json:"address"`
	Pincode      string    `gorm:"size:10" json:"pincode"`
	Role         string    `gorm:"size:10;not null;default:user" json:"role"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}
