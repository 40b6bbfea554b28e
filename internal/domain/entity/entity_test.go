package entity_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
)

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-00001", entity.FormatInvoiceNumber("INV-", 1))
	assert.Equal(t, "F2024-00042", entity.FormatInvoiceNumber("F2024-", 42))
	assert.Equal(t, "X123456", entity.FormatInvoiceNumber("X", 123456))
}

func TestProjectProduct_HidesPurchasePriceForSeller(t *testing.T) {
	p := &entity.Product{
		ID:            uuid.New(),
		Name:          "Cream",
		SellingPrice:  decimal.RequireFromString("35.99"),
		PurchasePrice: decimal.RequireFromString("18.50"),
		Stock:         10,
	}

	sellerJSON, err := json.Marshal(entity.ProjectProduct(p, enum.RoleSeller))
	require.NoError(t, err)
	assert.NotContains(t, string(sellerJSON), "purchasePrice")
	assert.Contains(t, string(sellerJSON), `"sellingPrice":35.99`)

	adminJSON, err := json.Marshal(entity.ProjectProduct(p, enum.RoleAdmin))
	require.NoError(t, err)
	assert.Contains(t, string(adminJSON), `"purchasePrice":18.5`)
}

func TestProduct_IsLowStock(t *testing.T) {
	p := entity.Product{Stock: 3, AlertThreshold: 5}
	assert.True(t, p.IsLowStock())

	p.Stock = 6
	assert.False(t, p.IsLowStock())
}
