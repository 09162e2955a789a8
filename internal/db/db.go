package db

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"parking-reservation-backend/config"
	"parking-reservation-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate runs AutoMigrate for every entity. It is also used by tests
// against in-memory sqlite databases.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.ParkingLot{},
		&model.ParkingSpot{},
		&model.SpotHold{},
		&model.Booking{},
		&model.Vehicle{},
		&model.WaitlistEntry{},
		&model.ScheduledBooking{},
		&model.Invoice{},
		&model.NotificationLog{},
		&model.SpotMaintenanceWindow{},
		&model.PushSubscription{},
	)
}

// SeedAdmin ensures the bootstrap admin account exists. It runs once at
// process startup and is idempotent: an existing account with the
// configured email is left untouched.
func SeedAdmin(db *gorm.DB, email, passwordHash string) error {
	if email == "" {
		return nil
	}

	var existing model.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	admin := model.User{
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     "Admin",
		Address:      "Head Office",
		Pincode:      "000000",
		Role:         model.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	log.Printf("Admin user created: %s", email)
	return nil
}
