package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/beautypos-api/internal/domain/repository"
	"github.com/sangkips/beautypos-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type stockMovementRepository struct {
	db *gorm.DB
}

// NewStockMovementRepository creates a new stock movement repository
func NewStockMovementRepository(db *gorm.DB) domainRepo.StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) Create(ctx context.Context, movement *entity.StockMovement) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(movement).Error
}

func (r *stockMovementRepository) ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]entity.StockMovement, int64, error) {
	var movements []entity.StockMovement
	var total int64

	query := conn(ctx, r.db).Model(&entity.StockMovement{}).Where("product_id = ?", productID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Normalize()
	err := query.Offset(params.Offset()).Limit(params.Limit).
		Order("created_at DESC").
		Find(&movements).Error
	return movements, total, err
}

func (r *stockMovementRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]entity.StockMovement, error) {
	var movements []entity.StockMovement
	err := conn(ctx, r.db).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, err
}
