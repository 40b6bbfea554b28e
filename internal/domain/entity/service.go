package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is a billable treatment. MinDuration is nil exactly when BillingType is FLAT.
type Service struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	Name        string           `gorm:"size:255;not null;index" json:"name"`
	Description *string          `gorm:"type:text" json:"description,omitempty"`
	BillingType enum.BillingType `gorm:"size:20;not null" json:"billingType"`
	UnitPrice   decimal.Decimal  `gorm:"type:numeric(14,4);not null" json:"unitPrice"`
	MinDuration *int             `json:"minDuration"`
	IsActive    bool             `gorm:"not null" json:"isActive"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new service
func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Service model
func (Service) TableName() string {
	return "services"
}
