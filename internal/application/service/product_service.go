package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"github.com/sangkips/beautypos-api/internal/domain/repository"
	"github.com/sangkips/beautypos-api/pkg/apperror"
	"github.com/sangkips/beautypos-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ProductService handles product-related operations
type ProductService struct {
	tx           repository.Transactor
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	movementRepo repository.StockMovementRepository
	stats        StatsInvalidator
}

// NewProductService creates a new product service
func NewProductService(
	tx repository.Transactor,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	movementRepo repository.StockMovementRepository,
	stats StatsInvalidator,
) *ProductService {
	return &ProductService{
		tx:           tx,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		movementRepo: movementRepo,
		stats:        stats,
	}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	CategoryID     *uuid.UUID
	Name           string
	Description    *string
	SellingPrice   decimal.Decimal
	PurchasePrice  decimal.Decimal
	InitialStock   int
	AlertThreshold int
	IsActive       *bool
}

// UpdateProductInput carries a partial update; stock is changed through AdjustStock only.
type UpdateProductInput struct {
	CategoryID     *uuid.UUID
	Name           *string
	Description    *string
	SellingPrice   *decimal.Decimal
	PurchasePrice  *decimal.Decimal
	AlertThreshold *int
	IsActive       *bool
}

func validatePrices(selling, purchase *decimal.Decimal) error {
	if selling != nil && selling.IsNegative() {
		return apperror.NewFieldError("sellingPrice", "selling price cannot be negative")
	}
	if purchase != nil && purchase.IsNegative() {
		return apperror.NewFieldError("purchasePrice", "purchase price cannot be negative")
	}
	return nil
}

func (s *ProductService) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	category, err := s.categoryRepo.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	if category == nil {
		return apperror.NewNotFoundError("Category")
	}
	return nil
}

// CreateProduct creates a new product. Initial stock is booked as an IN movement.
func (s *ProductService) CreateProduct(ctx context.Context, actor Actor, input *CreateProductInput) (*entity.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldError("name", "name is required")
	}
	if err := validatePrices(&input.SellingPrice, &input.PurchasePrice); err != nil {
		return nil, err
	}
	if input.InitialStock < 0 {
		return nil, apperror.NewFieldError("stock", "stock cannot be negative")
	}
	if input.AlertThreshold < 0 {
		return nil, apperror.NewFieldError("alertThreshold", "alert threshold cannot be negative")
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product := &entity.Product{
		CategoryID:     input.CategoryID,
		Name:           name,
		Description:    input.Description,
		SellingPrice:   input.SellingPrice,
		PurchasePrice:  input.PurchasePrice,
		Stock:          input.InitialStock,
		AlertThreshold: input.AlertThreshold,
		IsActive:       input.IsActive == nil || *input.IsActive,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.productRepo.Create(ctx, product); err != nil {
			return err
		}
		if product.Stock == 0 {
			return nil
		}
		return s.movementRepo.Create(ctx, &entity.StockMovement{
			ProductID: product.ID,
			Type:      enum.MovementIn,
			Quantity:  product.Stock,
			Reason:    "Initial stock",
			UserID:    actor.UserID,
		})
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.stats)
	return s.productRepo.GetByID(ctx, product.ID)
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// UpdateProduct applies a partial update
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validatePrices(input.SellingPrice, input.PurchasePrice); err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if err := s.checkCategory(ctx, input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = input.CategoryID
		product.Category = nil
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewFieldError("name", "name cannot be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.SellingPrice != nil {
		product.SellingPrice = *input.SellingPrice
	}
	if input.PurchasePrice != nil {
		product.PurchasePrice = *input.PurchasePrice
	}
	if input.AlertThreshold != nil {
		if *input.AlertThreshold < 0 {
			return nil, apperror.NewFieldError("alertThreshold", "alert threshold cannot be negative")
		}
		product.AlertThreshold = *input.AlertThreshold
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	invalidate(ctx, s.stats)
	return s.productRepo.GetByID(ctx, id)
}

// DeleteProduct soft-deletes a product; invoice lines keep their snapshot
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, s.stats)
	return nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	params.Pagination.Normalize()
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(products, params.Pagination, total), nil
}

// GetLowStockProducts lists active products at or below their alert threshold
func (s *ProductService) GetLowStockProducts(ctx context.Context) ([]entity.Product, error) {
	return s.productRepo.GetLowStock(ctx)
}

// AdjustStockInput is a signed manual stock correction
type AdjustStockInput struct {
	Quantity int
	Reason   string
}

// AdjustStock applies a manual correction and records it as an IN or OUT movement.
// Stock never goes below zero.
func (s *ProductService) AdjustStock(ctx context.Context, actor Actor, id uuid.UUID, input *AdjustStockInput) (*entity.Product, error) {
	if input.Quantity == 0 {
		return nil, apperror.NewFieldError("quantity", "quantity cannot be zero")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, apperror.NewFieldError("reason", "reason is required")
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		movement := &entity.StockMovement{
			ProductID: product.ID,
			Reason:    reason,
			UserID:    actor.UserID,
		}

		if input.Quantity > 0 {
			if err := s.productRepo.AtomicIncrementStock(ctx, product.ID, input.Quantity); err != nil {
				return err
			}
			movement.Type = enum.MovementIn
			movement.Quantity = input.Quantity
		} else {
			amount := -input.Quantity
			ok, err := s.productRepo.AtomicDecrementStock(ctx, product.ID, amount)
			if err != nil {
				return err
			}
			if !ok {
				current, err := s.productRepo.GetByID(ctx, product.ID)
				if err != nil {
					return err
				}
				available := 0
				if current != nil {
					available = current.Stock
				}
				return apperror.NewInsufficientStockError(product.Name, available, amount)
			}
			movement.Type = enum.MovementOut
			movement.Quantity = amount
		}

		return s.movementRepo.Create(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.stats)
	return s.productRepo.GetByID(ctx, id)
}

// ListMovements returns a product's stock ledger, newest first
func (s *ProductService) ListMovements(ctx context.Context, id uuid.UUID, params pagination.Params) (*pagination.PaginatedResult[entity.StockMovement], error) {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}
	params.Normalize()
	movements, total, err := s.movementRepo.ListByProduct(ctx, id, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(movements, params, total), nil
}
