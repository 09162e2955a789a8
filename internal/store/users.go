package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"parking-reservation-backend/internal/model"
)

// CreateUser registers an account. The email is lowercased; a duplicate
// registration fails with ErrValidation.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash, fullName, address, pincode string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required: %w", ErrValidation)
	}

	now := s.now()
	user := model.User{
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Address:      address,
		Pincode:      pincode,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.User{}).
			Where("email = ?", email).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("email %s is already registered: %w", email, ErrValidation)
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserByEmail looks up an account by email, case-insensitively.
func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser fetches one account by id.
func (s *Store) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListNotifications returns the user's notification log, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID int64) ([]model.NotificationLog, error) {
	var logs []model.NotificationLog
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&logs).Error
	return logs, err
}
