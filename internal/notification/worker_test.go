package notification

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// mockSender is a mock implementation of the PushSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// A helper function to create a mock database connection.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestWorkerPool_Dispatch(t *testing.T) {
	db, _ := newMockDB(t)
	wp := NewWorkerPool(1, db, &webpush.Options{})

	wp.Dispatch(123, []byte(`{"type":"booking_confirmed"}`))

	select {
	case job := <-wp.jobs:
		assert.Equal(t, int64(123), job.userID)
		assert.Equal(t, `{"type":"booking_confirmed"}`, string(job.payload))
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	gormDB, mock := newMockDB(t)
	wp := NewWorkerPool(1, gormDB, &webpush.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	// --- Test Case: payload fans out to every subscription of the user ---
	t.Run("sends payload to each subscription", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(2)

		userID := int64(7)
		payload := []byte(`{"type":"waitlist_promoted","title":"Spot assigned"}`)

		var mu sync.Mutex
		var endpoints []string
		wp.sender = &mockSender{
			SendFunc: func(got []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, string(payload), string(got))
				mu.Lock()
				endpoints = append(endpoints, sub.Endpoint)
				mu.Unlock()
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT .* FROM "push_subscriptions" WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "user_id", "p256dh", "auth", "created_at"}).
				AddRow("https://example.com/push/a", userID, "key_a", "auth_a", time.Now()).
				AddRow("https://example.com/push/b", userID, "key_b", "auth_b", time.Now()))

		wp.Dispatch(userID, payload)
		wg.Wait()
		assert.ElementsMatch(t, []string{"https://example.com/push/a", "https://example.com/push/b"}, endpoints)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	// --- Test Case: subscription expired, should be deleted ---
	t.Run("deletes expired subscription", func(t *testing.T) {
		userID := int64(8)
		endpoint := "https://example.com/push/expired"

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT .* FROM "push_subscriptions" WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "user_id", "p256dh", "auth", "created_at"}).
				AddRow(endpoint, userID, "key_gone", "auth_gone", time.Now()))

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"."endpoint" = \$1`).
			WithArgs(endpoint).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		wp.Dispatch(userID, []byte(`{}`))

		// A short sleep to allow the worker to process the job
		time.Sleep(100 * time.Millisecond)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	// --- Test Case: send failure keeps the subscription ---
	t.Run("keeps subscription on transport error", func(t *testing.T) {
		userID := int64(9)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return nil, errors.New("push endpoint unreachable")
			},
		}

		mock.ExpectQuery(`SELECT .* FROM "push_subscriptions" WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "user_id", "p256dh", "auth", "created_at"}).
				AddRow("https://example.com/push/flaky", userID, "key_f", "auth_f", time.Now()))

		wp.Dispatch(userID, []byte(`{}`))

		time.Sleep(100 * time.Millisecond)

		// No delete was expected; a pending delete would fail this check.
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
