package repository

import (
	"context"

	"github.com/sangkips/beautypos-api/internal/domain/entity"
)

// SettingsRepository defines the interface for the singleton settings row
type SettingsRepository interface {
	// Get returns the settings row, creating it with defaults on first access.
	Get(ctx context.Context) (*entity.Settings, error)
	// GetForUpdate is Get with a row lock held until the surrounding transaction ends.
	GetForUpdate(ctx context.Context) (*entity.Settings, error)
	// Update saves the editable shop fields. The invoice counter is not written.
	Update(ctx context.Context, settings *entity.Settings) error
	// AdvanceInvoiceCounter sets the counter to next only if it still equals current.
	AdvanceInvoiceCounter(ctx context.Context, current, next int64) (bool, error)
}
