package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"github.com/sangkips/beautypos-api/pkg/pagination"
)

// ServiceRepository defines the interface for billable service data operations
type ServiceRepository interface {
	Create(ctx context.Context, service *entity.Service) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Service, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Service, error)
	Update(ctx context.Context, service *entity.Service) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *ServiceFilterParams) ([]entity.Service, int64, error)
}

// ServiceFilterParams contains filtering parameters for service queries
type ServiceFilterParams struct {
	Pagination  pagination.Params
	Search      string
	BillingType *enum.BillingType
	IsActive    *bool
}
