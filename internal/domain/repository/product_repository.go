package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/pkg/pagination"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// GetByIDs retrieves multiple products by their IDs in a single query
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
	GetLowStock(ctx context.Context) ([]entity.Product, error)
	CountLowStock(ctx context.Context, threshold int) (int64, error)
	// AtomicDecrementStock decrements stock only if enough remains.
	// Returns (true, nil) on success, (false, nil) if stock is insufficient.
	AtomicDecrementStock(ctx context.Context, id uuid.UUID, amount int) (bool, error)
	// AtomicIncrementStock adds amount to stock.
	AtomicIncrementStock(ctx context.Context, id uuid.UUID, amount int) error
}

// ProductFilterParams contains filtering parameters for product queries
type ProductFilterParams struct {
	Pagination pagination.Params
	Search     string
	CategoryID *uuid.UUID
	IsActive   *bool
	LowStock   bool
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string) ([]entity.Category, error)
	CountProducts(ctx context.Context, id uuid.UUID) (int64, error)
}

// StockMovementRepository is the append-only stock ledger
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]entity.StockMovement, int64, error)
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]entity.StockMovement, error)
}
