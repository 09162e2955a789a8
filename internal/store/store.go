package store

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

// DefaultHoldDuration is how long a spot hold shields a spot while the
// user decides whether to confirm.
const DefaultHoldDuration = 5 * time.Minute

// DefaultSweepLimit bounds how many due scheduled bookings a single sweep
// may activate.
const DefaultSweepLimit = 20

// Notifier is the outbound notification capability consumed by the store.
// Implementations must never fail the calling operation: delivery errors
// are recorded on their side, not returned.
type Notifier interface {
	Notify(ctx context.Context, userID int64, notificationType, subject, message, channel string)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, int64, string, string, string, string) {}

// Store is the spot allocation and reservation lifecycle engine. Every
// public operation runs as one transaction against the shared database;
// time-based transitions (hold expiry, scheduled due-ness) are swept
// lazily at the start of allocation-sensitive operations rather than by
// a background timer.
type Store struct {
	db     *gorm.DB
	notify Notifier
	now    func() time.Time
}

// New creates a store. A nil notifier disables notifications.
func New(db *gorm.DB, notifier Notifier) *Store {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Store{
		db:     db,
		notify: notifier,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source. Tests freeze it to exercise hold
// expiry and billing windows deterministically.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// DB exposes the underlying handle for read-only report queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// NormalizePlate canonicalizes a vehicle plate: uppercase with all
// whitespace removed.
func NormalizePlate(raw string) string {
	return strings.Join(strings.Fields(strings.ToUpper(raw)), "")
}

// sweep runs the lazy time-based transitions required at the top of every
// allocation-sensitive entry point: due scheduled bookings first, then
// expired holds. Both are idempotent and bounded.
func (s *Store) sweep(ctx context.Context) error {
	if _, _, err := s.ActivateDueScheduledBookings(ctx, DefaultSweepLimit); err != nil {
		return err
	}
	_, err := s.CleanupExpiredHolds(ctx)
	return err
}
