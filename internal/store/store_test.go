package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"parking-reservation-backend/internal/db"
	"parking-reservation-backend/internal/model"
)

// notifyEvent records one Notify call for assertions.
type notifyEvent struct {
	UserID  int64
	Type    string
	Channel string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifyEvent
}

func (n *recordingNotifier) Notify(_ context.Context, userID int64, notificationType, _, _, channel string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notifyEvent{UserID: userID, Type: notificationType, Channel: channel})
}

func (n *recordingNotifier) typesFor(userID int64) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var types []string
	for _, e := range n.events {
		if e.UserID == userID {
			types = append(types, e.Type)
		}
	}
	return types
}

// fakeClock is a settable time source frozen between Advance calls.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var testEpoch = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// newTestStore opens an isolated in-memory database, migrates the full
// schema and returns a store with a frozen clock and recording notifier.
func newTestStore(t *testing.T) (*Store, *fakeClock, *recordingNotifier) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(testDB))

	notifier := &recordingNotifier{}
	s := New(testDB, notifier)
	clock := &fakeClock{t: testEpoch}
	s.SetClock(clock.Now)
	return s, clock, notifier
}

// seedLot creates a lot with n spots and returns it with spots loaded.
func seedLot(t *testing.T, s *Store, n int, pricePerHour float64) *model.ParkingLot {
	t.Helper()
	lot, err := s.CreateLot(context.Background(), 1, LotUpdate{
		LocationName: "Central Lot",
		Address:      "1 Main St",
		Pincode:      "560001",
		PricePerHour: pricePerHour,
		TotalSlots:   n,
	})
	require.NoError(t, err)
	full, err := s.GetLot(context.Background(), lot.ID)
	require.NoError(t, err)
	return full
}

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "KA01AB1234", NormalizePlate(" ka 01 ab 1234 "))
	assert.Equal(t, "MH12XY99", NormalizePlate("mh12xy99"))
	assert.Equal(t, "", NormalizePlate("   "))
}

func TestAvailableSlotsRecomputedNotIncremented(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	lot := seedLot(t, s, 3, 10)
	assert.Equal(t, 3, lot.AvailableSlots)

	// Occupy one spot through the full hold+book path.
	_, err := s.AcquireHold(ctx, 7, lot.ID, lot.Spots[0].ID, 0)
	require.NoError(t, err)
	_, err = s.ConfirmBooking(ctx, 7, lot.ID, "KA01A1")
	require.NoError(t, err)

	got, err := s.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableSlots)

	// The cached count always matches a fresh recompute.
	n, err := s.CountBookableSpots(ctx, lot.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, got.AvailableSlots, n)
}
