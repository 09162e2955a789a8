// Package notification records and delivers user notifications. Every
// notification is logged; delivery failures are recorded on the log row
// and never surface to the operation that triggered them.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/smtp"
	"time"

	"gorm.io/gorm"

	"parking-reservation-backend/internal/model"
)

// Mailer sends one email. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers mail over plain SMTP.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.From, to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	return smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg))
}

// Service writes the notification log and routes deliveries per channel.
// A nil mailer or worker pool disables that channel; the log still
// records the attempt.
type Service struct {
	db     *gorm.DB
	mailer Mailer
	pool   *WorkerPool
	now    func() time.Time
}

func NewService(db *gorm.DB, mailer Mailer, pool *WorkerPool) *Service {
	return &Service{db: db, mailer: mailer, pool: pool, now: time.Now}
}

// SetClock overrides the service clock, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Notify logs one notification and attempts delivery on its channel.
// Delivery problems are recorded on the row, never returned.
func (s *Service) Notify(ctx context.Context, userID int64, notificationType, subject, message, channel string) {
	now := s.now()
	entry := model.NotificationLog{
		UserID:    userID,
		Channel:   channel,
		Type:      notificationType,
		Subject:   subject,
		Message:   message,
		Status:    model.NotificationQueued,
		CreatedAt: now,
	}

	switch channel {
	case model.ChannelInApp:
		entry.Status = model.NotificationSent
		entry.SentAt = &now
	case model.ChannelEmail:
		s.deliverEmail(ctx, &entry, now)
	case model.ChannelPush:
		s.deliverPush(&entry, now)
	case model.ChannelSMS:
		// No provider is wired; the row stays queued.
		entry.ErrorMessage = "SMS provider is not configured"
	default:
		entry.Status = model.NotificationFailed
		entry.ErrorMessage = fmt.Sprintf("unknown channel %q", channel)
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("Failed to write notification log for user %d: %v", userID, err)
	}
}

func (s *Service) deliverEmail(ctx context.Context, entry *model.NotificationLog, now time.Time) {
	if s.mailer == nil {
		entry.Status = model.NotificationFailed
		entry.ErrorMessage = "SMTP is not configured"
		return
	}
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, entry.UserID).Error; err != nil {
		entry.Status = model.NotificationFailed
		entry.ErrorMessage = fmt.Sprintf("resolve recipient: %v", err)
		return
	}
	if err := s.mailer.Send(user.Email, entry.Subject, entry.Message); err != nil {
		entry.Status = model.NotificationFailed
		entry.ErrorMessage = err.Error()
		return
	}
	entry.Status = model.NotificationSent
	entry.SentAt = &now
}

func (s *Service) deliverPush(entry *model.NotificationLog, now time.Time) {
	if s.pool == nil {
		entry.ErrorMessage = "push delivery is not configured"
		return
	}
	payload, err := json.Marshal(map[string]string{
		"type":    entry.Type,
		"title":   entry.Subject,
		"message": entry.Message,
	})
	if err != nil {
		entry.Status = model.NotificationFailed
		entry.ErrorMessage = err.Error()
		return
	}
	s.pool.Dispatch(entry.UserID, payload)
	entry.Status = model.NotificationSent
	entry.SentAt = &now
}
