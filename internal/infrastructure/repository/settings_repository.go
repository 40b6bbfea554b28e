package repository

import (
	"context"
	"errors"

	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

// Get retrieves the settings row, inserting defaults if it does not exist yet
func (r *settingsRepository) Get(ctx context.Context) (*entity.Settings, error) {
	return r.get(ctx, false)
}

// GetForUpdate retrieves the settings row under SELECT ... FOR UPDATE
func (r *settingsRepository) GetForUpdate(ctx context.Context) (*entity.Settings, error) {
	return r.get(ctx, true)
}

func (r *settingsRepository) get(ctx context.Context, lock bool) (*entity.Settings, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}

	q := conn(ctx, r.db)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var settings entity.Settings
	if err := q.First(&settings, "id = ?", entity.SettingsID).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) ensure(ctx context.Context) error {
	var count int64
	if err := conn(ctx, r.db).Model(&entity.Settings{}).Where("id = ?", entity.SettingsID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	err := conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(entity.DefaultSettings()).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	return nil
}

// Update saves the editable shop fields
func (r *settingsRepository) Update(ctx context.Context, settings *entity.Settings) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}
	return conn(ctx, r.db).Model(&entity.Settings{}).
		Where("id = ?", entity.SettingsID).
		Select("shop_name", "shop_address", "shop_phone", "shop_email", "default_tax_rate", "invoice_prefix", "updated_at").
		Updates(settings).Error
}

func (r *settingsRepository) AdvanceInvoiceCounter(ctx context.Context, current, next int64) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.Settings{}).
		Where("id = ? AND next_invoice_number = ?", entity.SettingsID, current).
		Update("next_invoice_number", next)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
