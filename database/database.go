package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/CUknot/messenger_backend/models"
)

// Connect establishes a connection to the database
func Connect(dsn string, log *logrus.Entry) (*gorm.DB, error) {
	gormLog := logger.New(log, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	log.Info("Database connection established")
	return db, nil
}

// Migrate automatically migrates the database schema
func Migrate(db *gorm.DB, log *logrus.Entry) error {
	if err := db.AutoMigrate(&models.User{}, &models.Room{}, &models.Message{}, &models.DirectMessage{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("Database migration completed")
	return nil
}

// DefaultRooms are provisioned on first start.
var DefaultRooms = []models.Room{
	{Slug: "general", Title: "💬 General"},
	{Slug: "random", Title: "🎮 Random"},
	{Slug: "help", Title: "❓ Help"},
}

// UserCreator persists a new user and assigns its public code.
type UserCreator interface {
	CreateUser(ctx context.Context, user *models.User) error
}

// Seed provisions the default rooms when none exist and the admin account when it is missing.
func Seed(ctx context.Context, db *gorm.DB, users UserCreator, adminPassword string, log *logrus.Entry) error {
	var rooms int64
	if err := db.WithContext(ctx).Model(&models.Room{}).Count(&rooms).Error; err != nil {
		return fmt.Errorf("seed: count rooms: %w", err)
	}
	if rooms == 0 {
		seed := make([]models.Room, len(DefaultRooms))
		copy(seed, DefaultRooms)
		if err := db.WithContext(ctx).Create(&seed).Error; err != nil {
			return fmt.Errorf("seed: create rooms: %w", err)
		}
		log.WithField("rooms", len(seed)).Info("Default rooms created")
	}

	var admin models.User
	err := db.WithContext(ctx).Where("username = ?", "admin").First(&admin).Error
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("seed: find admin: %w", err)
	}

	admin = models.User{
		Username: "admin",
		Email:    "admin@example.com",
		Password: adminPassword,
		IsAdmin:  true,
		IsActive: true,
	}
	if err := users.CreateUser(ctx, &admin); err != nil {
		return fmt.Errorf("seed: create admin: %w", err)
	}
	log.WithField("code", admin.Code).Info("Admin user created")
	return nil
}
