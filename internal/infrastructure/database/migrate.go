package database

import (
	"context"
	"fmt"
	"log"

	"github.com/sangkips/beautypos-api/internal/config"
	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"github.com/sangkips/beautypos-api/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.User{},

		&entity.Category{},
		&entity.Product{},
		&entity.Service{},
		&entity.StockMovement{},

		&entity.Client{},
		&entity.Invoice{},
		&entity.InvoiceLine{},

		&entity.Settings{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Bootstrap makes sure the settings row exists and, when configured, that the
// first admin account exists.
func Bootstrap(ctx context.Context, db *gorm.DB, cfg config.BootstrapConfig) error {
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(entity.DefaultSettings()).Error; err != nil {
		return fmt.Errorf("failed to create settings: %w", err)
	}

	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(&entity.User{}).Where("email = ?", cfg.AdminEmail).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := entity.User{
		Email:     cfg.AdminEmail,
		Password:  hash,
		FirstName: "Admin",
		LastName:  "Shop",
		Role:      enum.RoleAdmin,
		IsActive:  true,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	log.Printf("Admin user created: %s", cfg.AdminEmail)
	return nil
}
