package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/beautypos-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := conn(ctx, r.db).
		Preload("Category").
		First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetByIDs retrieves multiple products by their IDs in a single query
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := conn(ctx, r.db).
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

// Update saves everything except stock, which only moves through the atomic helpers.
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return conn(ctx, r.db).Omit(clause.Associations, "stock").Save(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Delete(&entity.Product{}, "id = ?", id).Error
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	var products []entity.Product
	var total int64

	query := conn(ctx, r.db).Model(&entity.Product{})

	if params.Search != "" {
		p := likePattern(params.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", p, p)
	}
	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}
	if params.IsActive != nil {
		query = query.Where("is_active = ?", *params.IsActive)
	}
	if params.LowStock {
		query = query.Where("stock <= alert_threshold")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Normalize()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.Limit).
		Preload("Category").
		Order("name ASC").
		Find(&products).Error

	return products, total, err
}

func (r *productRepository) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := conn(ctx, r.db).
		Where("is_active = ? AND stock <= alert_threshold", true).
		Preload("Category").
		Order("stock ASC, name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepository) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Product{}).
		Where("is_active = ? AND stock < ?", true, threshold).
		Count(&count).Error
	return count, err
}

// AtomicDecrementStock decrements stock only if sufficient, in a single UPDATE.
// The WHERE clause makes the check and the write indivisible.
func (r *productRepository) AtomicDecrementStock(ctx context.Context, id uuid.UUID, amount int) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.Product{}).
		Where("id = ? AND stock >= ?", id, amount).
		Update("stock", gorm.Expr("stock - ?", amount))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *productRepository) AtomicIncrementStock(ctx context.Context, id uuid.UUID, amount int) error {
	return conn(ctx, r.db).Model(&entity.Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", amount)).Error
}
