package service

import (
	"context"
	"strings"

	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/repository"
	"github.com/sangkips/beautypos-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// SettingsService handles the shop settings row
type SettingsService struct {
	settingsRepo repository.SettingsRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repository.SettingsRepository) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
	}
}

// GetSettings retrieves the settings, creating defaults on first access
func (s *SettingsService) GetSettings(ctx context.Context) (*entity.Settings, error) {
	return s.settingsRepo.Get(ctx)
}

// UpdateSettingsInput carries a partial update; nil fields are left unchanged.
type UpdateSettingsInput struct {
	ShopName       *string
	ShopAddress    *string
	ShopPhone      *string
	ShopEmail      *string
	DefaultTaxRate *decimal.Decimal
	InvoicePrefix  *string
}

// UpdateSettings applies input to the settings row. The invoice counter cannot be changed here.
func (s *SettingsService) UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*entity.Settings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if input.ShopName != nil {
		name := strings.TrimSpace(*input.ShopName)
		if name == "" {
			return nil, apperror.NewFieldError("shopName", "shop name cannot be empty")
		}
		settings.ShopName = name
	}
	if input.ShopAddress != nil {
		settings.ShopAddress = *input.ShopAddress
	}
	if input.ShopPhone != nil {
		settings.ShopPhone = *input.ShopPhone
	}
	if input.ShopEmail != nil {
		settings.ShopEmail = *input.ShopEmail
	}
	if input.DefaultTaxRate != nil {
		if appErr := ValidateTaxRate(*input.DefaultTaxRate); appErr != nil {
			return nil, appErr
		}
		settings.DefaultTaxRate = *input.DefaultTaxRate
	}
	if input.InvoicePrefix != nil {
		prefix := strings.TrimSpace(*input.InvoicePrefix)
		if prefix == "" {
			return nil, apperror.NewFieldError("invoicePrefix", "invoice prefix cannot be empty")
		}
		settings.InvoicePrefix = prefix
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, err
	}
	return s.settingsRepo.Get(ctx)
}
