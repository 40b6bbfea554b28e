package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/beautypos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	return conn(ctx, r.db).Omit("Client", "User").Create(invoice).Error
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *invoiceRepository) withDetails(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).
		Preload("Client").
		Preload("User").
		Preload("Lines", orderedLines)
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.withDetails(ctx).First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) GetByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.withDetails(ctx).First(&invoice, "invoice_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) List(ctx context.Context, params *domainRepo.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := conn(ctx, r.db).Model(&entity.Invoice{})
	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.ClientID != nil {
		query = query.Where("client_id = ?", *params.ClientID)
	}
	if params.StartDate != nil {
		query = query.Where("created_at >= ?", params.StartDate.UTC())
	}
	if params.EndDate != nil {
		query = query.Where("created_at <= ?", params.EndDate.UTC())
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Pagination.Limit > 0 {
		params.Pagination.Normalize()
		query = query.Offset(params.Pagination.Offset()).Limit(params.Pagination.Limit)
	}

	err := query.
		Preload("Client").
		Preload("User").
		Preload("Lines", orderedLines).
		Order("created_at DESC, invoice_number DESC").
		Find(&invoices).Error
	return invoices, total, err
}

// TransitionStatus is a compare-and-swap on status. ValidatedAt is stamped when
// moving to VALIDATED.
func (r *invoiceRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enum.InvoiceStatus, at time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if to == enum.InvoiceStatusValidated {
		updates["validated_at"] = at.UTC()
	}

	result := conn(ctx, r.db).Model(&entity.Invoice{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
