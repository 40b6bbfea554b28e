package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"gorm.io/gorm"
)

// StockMovement is an append-only stock ledger entry.
type StockMovement struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	ProductID uuid.UUID         `gorm:"type:uuid;not null;index" json:"productId"`
	Type      enum.MovementType `gorm:"size:10;not null" json:"type"`
	Quantity  int               `gorm:"not null" json:"quantity"`
	Reason    string            `gorm:"size:255;not null" json:"reason"`
	UserID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"userId"`
	InvoiceID *uuid.UUID        `gorm:"type:uuid;index" json:"invoiceId,omitempty"`
	CreatedAt time.Time         `gorm:"index" json:"createdAt"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// BeforeCreate generates a UUID before creating a new movement
func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StockMovement model
func (StockMovement) TableName() string {
	return "stock_movements"
}
