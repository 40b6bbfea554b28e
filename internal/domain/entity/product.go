package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a retail item sold over the counter. Stock only changes through stock movements.
type Product struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	CategoryID     *uuid.UUID      `gorm:"type:uuid;index" json:"categoryId,omitempty"`
	Name           string          `gorm:"size:255;not null;index" json:"name"`
	Description    *string         `gorm:"type:text" json:"description,omitempty"`
	SellingPrice   decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"sellingPrice"`
	PurchasePrice  decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"purchasePrice"`
	Stock          int             `gorm:"not null;default:0" json:"stock"`
	AlertThreshold int             `gorm:"not null" json:"alertThreshold"`
	IsActive       bool            `gorm:"not null" json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// IsLowStock reports whether stock has reached the alert threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.AlertThreshold
}

// Category groups products
type Category struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name        string         `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description *string        `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Products []Product `gorm:"foreignKey:CategoryID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}
