package model

import "time"

// Notification channels.
const (
	ChannelInApp = "in_app"
	ChannelEmail = "email"
	ChannelPush  = "push"
	ChannelSMS   = "sms"
)

// Notification delivery states.
const (
	NotificationQueued = "queued"
	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

// NotificationLog records every outbound notification. Delivery failures
// are recorded here and never abort the business operation that caused
// the notification.
type NotificationLog struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	UserID       int64      `gorm:"index;not null" json:"user_id"`
	Channel      string     `gorm:"size:20;not null;default:in_app" json:"channel"`
	Type         string     `gorm:"column:notification_type;size:50;not null" json:"type"`
	Subject      string     `gorm:"size:120" json:"subject"`
	Message      string     `gorm:"type:text;not null" json:"message"`
	Status       string     `gorm:"size:20;not null;default:queued" json:"status"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	ErrorMessage string     `gorm:"type:text" json:"error_message"`
}
