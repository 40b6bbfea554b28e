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

// ServiceCatalog manages billable services (treatments)
type ServiceCatalog struct {
	serviceRepo repository.ServiceRepository
}

// NewServiceCatalog creates a new service catalog
func NewServiceCatalog(serviceRepo repository.ServiceRepository) *ServiceCatalog {
	return &ServiceCatalog{serviceRepo: serviceRepo}
}

// ServiceInput represents the create/update service input
type ServiceInput struct {
	Name        string
	Description *string
	BillingType enum.BillingType
	UnitPrice   decimal.Decimal
	MinDuration *int
	IsActive    *bool
}

// normalize enforces that MinDuration is set for timed services and cleared for FLAT.
func (in *ServiceInput) normalize() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperror.NewFieldError("name", "name is required")
	}
	if !in.BillingType.IsValid() {
		return apperror.NewFieldError("billingType", "billing type must be FLAT, PER_MINUTE or PER_HOUR")
	}
	if in.UnitPrice.IsNegative() {
		return apperror.NewFieldError("unitPrice", "unit price cannot be negative")
	}

	if !in.BillingType.IsTimed() {
		in.MinDuration = nil
		return nil
	}
	if in.MinDuration == nil {
		return apperror.NewFieldError("minDuration", "minimum duration is required for time-billed services")
	}
	if *in.MinDuration < 1 {
		return apperror.NewFieldError("minDuration", "minimum duration must be at least 1 minute")
	}
	return nil
}

func (in *ServiceInput) apply(svc *entity.Service) {
	svc.Name = strings.TrimSpace(in.Name)
	svc.Description = in.Description
	svc.BillingType = in.BillingType
	svc.UnitPrice = in.UnitPrice
	svc.MinDuration = in.MinDuration
	if in.IsActive != nil {
		svc.IsActive = *in.IsActive
	}
}

// CreateService creates a new billable service
func (s *ServiceCatalog) CreateService(ctx context.Context, input *ServiceInput) (*entity.Service, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}
	svc := &entity.Service{IsActive: true}
	input.apply(svc)

	if err := s.serviceRepo.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// GetService retrieves a service by ID
func (s *ServiceCatalog) GetService(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, apperror.NewNotFoundError("Service")
	}
	return svc, nil
}

// UpdateService replaces a service definition. Existing invoice lines keep their snapshot.
func (s *ServiceCatalog) UpdateService(ctx context.Context, id uuid.UUID, input *ServiceInput) (*entity.Service, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}
	svc, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	input.apply(svc)

	if err := s.serviceRepo.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// DeleteService soft-deletes a service
func (s *ServiceCatalog) DeleteService(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetService(ctx, id); err != nil {
		return err
	}
	return s.serviceRepo.Delete(ctx, id)
}

// ListServices lists services with filtering
func (s *ServiceCatalog) ListServices(ctx context.Context, params *repository.ServiceFilterParams) (*pagination.PaginatedResult[entity.Service], error) {
	params.Pagination.Normalize()
	services, total, err := s.serviceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(services, params.Pagination, total), nil
}
