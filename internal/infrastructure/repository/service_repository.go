package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/beautypos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type serviceRepository struct {
	db *gorm.DB
}

// NewServiceRepository creates a new billable service repository
func NewServiceRepository(db *gorm.DB) domainRepo.ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) Create(ctx context.Context, service *entity.Service) error {
	return conn(ctx, r.db).Create(service).Error
}

func (r *serviceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	var service entity.Service
	err := conn(ctx, r.db).First(&service, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &service, err
}

func (r *serviceRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Service, error) {
	if len(ids) == 0 {
		return []entity.Service{}, nil
	}
	var services []entity.Service
	err := conn(ctx, r.db).Where("id IN ?", ids).Find(&services).Error
	return services, err
}

func (r *serviceRepository) Update(ctx context.Context, service *entity.Service) error {
	return conn(ctx, r.db).Save(service).Error
}

func (r *serviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Delete(&entity.Service{}, "id = ?", id).Error
}

func (r *serviceRepository) List(ctx context.Context, params *domainRepo.ServiceFilterParams) ([]entity.Service, int64, error) {
	var services []entity.Service
	var total int64

	query := conn(ctx, r.db).Model(&entity.Service{})
	if params.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(params.Search))
	}
	if params.BillingType != nil {
		query = query.Where("billing_type = ?", *params.BillingType)
	}
	if params.IsActive != nil {
		query = query.Where("is_active = ?", *params.IsActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Normalize()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.Limit).
		Order("name ASC").
		Find(&services).Error
	return services, total, err
}
