package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceItemRequest is one requested line: either a product with a quantity or a
// service with an optional duration in minutes.
type InvoiceItemRequest struct {
	ProductID *uuid.UUID `json:"productId"`
	ServiceID *uuid.UUID `json:"serviceId"`
	Quantity  *int       `json:"quantity" binding:"omitempty,min=1"`
	Duration  *int       `json:"duration" binding:"omitempty,min=1"`
}

// CreateInvoiceRequest represents an invoice creation request
type CreateInvoiceRequest struct {
	ClientID uuid.UUID            `json:"clientId" binding:"required"`
	Items    []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	TaxRate  *decimal.Decimal     `json:"taxRate"`
	Notes    *string              `json:"notes"`
}

// InvoiceFilterRequest represents invoice list parameters. Dates accept
// YYYY-MM-DD or RFC 3339.
type InvoiceFilterRequest struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Status    string `form:"status" binding:"omitempty,oneof=DRAFT VALIDATED CANCELLED"`
	ClientID  string `form:"clientId" binding:"omitempty,uuid"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

// StatsSummaryRequest represents the summary date range
type StatsSummaryRequest struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}
