package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	CategoryID     *uuid.UUID       `json:"categoryId"`
	Name           string           `json:"name" binding:"required,max=255"`
	Description    *string          `json:"description"`
	SellingPrice   *decimal.Decimal `json:"sellingPrice" binding:"required"`
	PurchasePrice  *decimal.Decimal `json:"purchasePrice"`
	Stock          int              `json:"stock" binding:"min=0"`
	AlertThreshold int              `json:"alertThreshold" binding:"min=0"`
	IsActive       *bool            `json:"isActive"`
}

// UpdateProductRequest represents a product update request. Stock is changed
// through the adjust-stock endpoint.
type UpdateProductRequest struct {
	CategoryID     *uuid.UUID       `json:"categoryId"`
	Name           *string          `json:"name" binding:"omitempty,max=255"`
	Description    *string          `json:"description"`
	SellingPrice   *decimal.Decimal `json:"sellingPrice"`
	PurchasePrice  *decimal.Decimal `json:"purchasePrice"`
	AlertThreshold *int             `json:"alertThreshold" binding:"omitempty,min=0"`
	IsActive       *bool            `json:"isActive"`
}

// AdjustStockRequest is a signed manual stock correction
type AdjustStockRequest struct {
	Quantity int    `json:"quantity" binding:"required"`
	Reason   string `json:"reason" binding:"required,max=255"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search     string `form:"search"`
	CategoryID string `form:"categoryId" binding:"omitempty,uuid"`
	IsActive   *bool  `form:"isActive"`
	LowStock   bool   `form:"lowStock"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

// CategoryRequest represents a category create/update request
type CategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description *string `json:"description"`
}
