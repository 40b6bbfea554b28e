package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"github.com/sangkips/beautypos-api/pkg/pagination"
)

// InvoiceRepository defines the interface for invoice data operations
type InvoiceRepository interface {
	// Create persists the invoice together with its lines.
	Create(ctx context.Context, invoice *entity.Invoice) error
	// GetByID loads the invoice with client, user and ordered lines.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*entity.Invoice, error)
	// List returns a page of invoices. A zero Pagination.Limit returns every match.
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	// TransitionStatus moves the invoice from one status to another only if it is
	// still in from. Returns false when no row matched.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enum.InvoiceStatus, at time.Time) (bool, error)
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination pagination.Params
	Status     *enum.InvoiceStatus
	ClientID   *uuid.UUID
	// UserID restricts results to invoices created by that user.
	UserID    *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}
