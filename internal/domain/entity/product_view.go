package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// ProductView is the product shape visible to restricted roles. It has no purchase price.
type ProductView struct {
	ID             uuid.UUID       `json:"id"`
	CategoryID     *uuid.UUID      `json:"categoryId,omitempty"`
	Name           string          `json:"name"`
	Description    *string         `json:"description,omitempty"`
	SellingPrice   decimal.Decimal `json:"sellingPrice"`
	Stock          int             `json:"stock"`
	AlertThreshold int             `json:"alertThreshold"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Category       *Category       `json:"category,omitempty"`
}

// ProductAdminView adds the purchase price for unrestricted roles.
type ProductAdminView struct {
	ProductView
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
}

func NewProductView(p *Product) ProductView {
	return ProductView{
		ID:             p.ID,
		CategoryID:     p.CategoryID,
		Name:           p.Name,
		Description:    p.Description,
		SellingPrice:   p.SellingPrice,
		Stock:          p.Stock,
		AlertThreshold: p.AlertThreshold,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Category:       p.Category,
	}
}

// ProjectProduct returns the view of p that role is allowed to see.
func ProjectProduct(p *Product, role enum.Role) interface{} {
	if role.IsRestricted() {
		return NewProductView(p)
	}
	return ProductAdminView{ProductView: NewProductView(p), PurchasePrice: p.PurchasePrice}
}

// ProjectProducts applies ProjectProduct to each product.
func ProjectProducts(products []Product, role enum.Role) []interface{} {
	out := make([]interface{}, 0, len(products))
	for i := range products {
		out = append(out, ProjectProduct(&products[i], role))
	}
	return out
}
