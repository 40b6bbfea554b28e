package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// SettingsID is the primary key of the singleton settings row.
	SettingsID = 1

	InvoiceNumberWidth = 5
)

// Settings is the single shop configuration row, including the invoice counter.
type Settings struct {
	ID                uint            `gorm:"primaryKey;autoIncrement:false" json:"-"`
	ShopName          string          `gorm:"size:255;not null" json:"shopName"`
	ShopAddress       string          `gorm:"type:text" json:"shopAddress"`
	ShopPhone         string          `gorm:"size:50" json:"shopPhone"`
	ShopEmail         string          `gorm:"size:255" json:"shopEmail"`
	DefaultTaxRate    decimal.Decimal `gorm:"type:numeric(7,4);not null" json:"defaultTaxRate"`
	InvoicePrefix     string          `gorm:"size:20;not null" json:"invoicePrefix"`
	NextInvoiceNumber int64           `gorm:"not null" json:"nextInvoiceNumber"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// TableName returns the table name for the Settings model
func (Settings) TableName() string {
	return "settings"
}

// DefaultSettings is the row created on first access.
func DefaultSettings() *Settings {
	return &Settings{
		ID:                SettingsID,
		ShopName:          "Beauty Shop",
		DefaultTaxRate:    decimal.NewFromInt(20),
		InvoicePrefix:     "INV-",
		NextInvoiceNumber: 1,
	}
}

// FormatInvoiceNumber renders prefix followed by n zero-padded to InvoiceNumberWidth.
func FormatInvoiceNumber(prefix string, n int64) string {
	return fmt.Sprintf("%s%0*d", prefix, InvoiceNumberWidth, n)
}
