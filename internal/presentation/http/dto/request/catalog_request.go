package request

import (
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// ServiceRequest represents a billable service create/update request
type ServiceRequest struct {
	Name        string           `json:"name" binding:"required,max=255"`
	Description *string          `json:"description"`
	BillingType enum.BillingType `json:"billingType" binding:"required"`
	UnitPrice   *decimal.Decimal `json:"unitPrice" binding:"required"`
	MinDuration *int             `json:"minDuration" binding:"omitempty,min=1"`
	IsActive    *bool            `json:"isActive"`
}

// ServiceFilterRequest represents service list parameters
type ServiceFilterRequest struct {
	Search      string `form:"search"`
	BillingType string `form:"billingType" binding:"omitempty,oneof=FLAT PER_MINUTE PER_HOUR"`
	IsActive    *bool  `form:"isActive"`
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
}

// ClientRequest represents a client create/update request
type ClientRequest struct {
	FirstName string  `json:"firstName" binding:"required,max=255"`
	LastName  string  `json:"lastName" binding:"required,max=255"`
	Phone     string  `json:"phone" binding:"required,max=50"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Notes     *string `json:"notes"`
}

// UpdateSettingsRequest carries a partial settings update
type UpdateSettingsRequest struct {
	ShopName       *string          `json:"shopName" binding:"omitempty,max=255"`
	ShopAddress    *string          `json:"shopAddress"`
	ShopPhone      *string          `json:"shopPhone" binding:"omitempty,max=50"`
	ShopEmail      *string          `json:"shopEmail" binding:"omitempty,email"`
	DefaultTaxRate *decimal.Decimal `json:"defaultTaxRate"`
	InvoicePrefix  *string          `json:"invoicePrefix" binding:"omitempty,max=20"`
}
