package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/repository"
	"github.com/sangkips/beautypos-api/pkg/apperror"
	"github.com/sangkips/beautypos-api/pkg/pagination"
)

// ClientService handles client-related operations
type ClientService struct {
	clientRepo  repository.ClientRepository
	invoiceRepo repository.InvoiceRepository
	stats       StatsInvalidator
}

// NewClientService creates a new client service
func NewClientService(clientRepo repository.ClientRepository, invoiceRepo repository.InvoiceRepository, stats StatsInvalidator) *ClientService {
	return &ClientService{clientRepo: clientRepo, invoiceRepo: invoiceRepo, stats: stats}
}

// ClientInput represents the create/update client input
type ClientInput struct {
	FirstName string
	LastName  string
	Phone     string
	Email     *string
	Notes     *string
}

func (in *ClientInput) validate() error {
	var fields []apperror.FieldError
	if strings.TrimSpace(in.FirstName) == "" {
		fields = append(fields, apperror.FieldError{Field: "firstName", Message: "first name is required"})
	}
	if strings.TrimSpace(in.LastName) == "" {
		fields = append(fields, apperror.FieldError{Field: "lastName", Message: "last name is required"})
	}
	if strings.TrimSpace(in.Phone) == "" {
		fields = append(fields, apperror.FieldError{Field: "phone", Message: "phone is required"})
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields...)
	}
	return nil
}

func (in *ClientInput) apply(c *entity.Client) {
	c.FirstName = strings.TrimSpace(in.FirstName)
	c.LastName = strings.TrimSpace(in.LastName)
	c.Phone = strings.TrimSpace(in.Phone)
	c.Email = in.Email
	c.Notes = in.Notes
}

// CreateClient creates a new client
func (s *ClientService) CreateClient(ctx context.Context, input *ClientInput) (*entity.Client, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	client := &entity.Client{}
	input.apply(client)

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	invalidate(ctx, s.stats)
	return client, nil
}

// GetClient retrieves a client together with the invoices the actor may see
func (s *ClientService) GetClient(ctx context.Context, actor Actor, id uuid.UUID) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	invoices, _, err := s.invoiceRepo.List(ctx, &repository.InvoiceFilterParams{
		ClientID: &client.ID,
		UserID:   actor.ScopeUserID(),
	})
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		invoices[i].Client = nil
	}
	client.Invoices = invoices
	return client, nil
}

// UpdateClient replaces a client's contact details
func (s *ClientService) UpdateClient(ctx context.Context, id uuid.UUID, input *ClientInput) (*entity.Client, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	input.apply(client)

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// DeleteClient soft-deletes a client; their invoices are kept
func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if client == nil {
		return apperror.NewNotFoundError("Client")
	}
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, s.stats)
	return nil
}

// ListClients lists clients ordered by name
func (s *ClientService) ListClients(ctx context.Context, params pagination.Params, search string) (*pagination.PaginatedResult[entity.Client], error) {
	params.Normalize()
	clients, total, err := s.clientRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(clients, params, total), nil
}
