package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"github.com/sangkips/beautypos-api/internal/domain/repository"
	"github.com/sangkips/beautypos-api/pkg/apperror"
	"github.com/sangkips/beautypos-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// StatsInvalidator drops cached rollups after the data behind them changes.
type StatsInvalidator interface {
	Invalidate(ctx context.Context)
}

func invalidate(ctx context.Context, stats StatsInvalidator) {
	if stats != nil {
		stats.Invalidate(ctx)
	}
}

// InvoiceService creates, validates and lists invoices
type InvoiceService struct {
	tx           repository.Transactor
	invoiceRepo  repository.InvoiceRepository
	clientRepo   repository.ClientRepository
	productRepo  repository.ProductRepository
	serviceRepo  repository.ServiceRepository
	settingsRepo repository.SettingsRepository
	movementRepo repository.StockMovementRepository
	stats        StatsInvalidator
	now          func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	tx repository.Transactor,
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	productRepo repository.ProductRepository,
	serviceRepo repository.ServiceRepository,
	settingsRepo repository.SettingsRepository,
	movementRepo repository.StockMovementRepository,
	stats StatsInvalidator,
) *InvoiceService {
	return &InvoiceService{
		tx:           tx,
		invoiceRepo:  invoiceRepo,
		clientRepo:   clientRepo,
		productRepo:  productRepo,
		serviceRepo:  serviceRepo,
		settingsRepo: settingsRepo,
		movementRepo: movementRepo,
		stats:        stats,
		now:          time.Now,
	}
}

// InvoiceItemInput is one requested line: a product with a quantity, or a
// service with an optional duration in minutes.
type InvoiceItemInput struct {
	ProductID *uuid.UUID
	ServiceID *uuid.UUID
	Quantity  *int
	Duration  *int
}

// CreateInvoiceInput represents the create invoice input
type CreateInvoiceInput struct {
	ClientID uuid.UUID
	Items    []InvoiceItemInput
	// TaxRate overrides the shop default when set.
	TaxRate *decimal.Decimal
	Notes   *string
}

// CreateInvoice prices every line from the live catalog and stores a DRAFT invoice
// numbered from the settings counter.
func (s *InvoiceService) CreateInvoice(ctx context.Context, actor Actor, input *CreateInvoiceInput) (*entity.Invoice, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewFieldError("items", "an invoice needs at least one item")
	}
	if input.TaxRate != nil {
		if appErr := ValidateTaxRate(*input.TaxRate); appErr != nil {
			return nil, appErr
		}
	}

	client, err := s.clientRepo.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	products, services, err := s.loadCatalog(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	lines := make([]entity.InvoiceLine, 0, len(input.Items))
	requested := make(map[uuid.UUID]int)
	subtotal := decimal.Zero

	for i, item := range input.Items {
		field := fmt.Sprintf("items[%d]", i)
		hasProduct, hasService := item.ProductID != nil, item.ServiceID != nil
		if hasProduct == hasService {
			return nil, apperror.NewFieldError(field, "exactly one of productId and serviceId must be set")
		}

		line := entity.InvoiceLine{Position: i + 1}

		if hasProduct {
			product, ok := products[*item.ProductID]
			if !ok {
				return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", *item.ProductID))
			}
			if !product.IsActive {
				return nil, apperror.NewFieldError(field, "product "+product.Name+" is not active")
			}
			if item.Quantity == nil || *item.Quantity < 1 {
				return nil, apperror.NewFieldError(field+".quantity", "quantity must be at least 1")
			}
			qty := *item.Quantity

			// Advisory check; validation re-checks under the transaction.
			requested[product.ID] += qty
			if requested[product.ID] > product.Stock {
				return nil, apperror.NewInsufficientStockError(product.Name, product.Stock, requested[product.ID])
			}

			id := product.ID
			line.Type = enum.LineTypeProduct
			line.ProductID = &id
			line.Name = product.Name
			line.Quantity = qty
			line.UnitPrice = product.SellingPrice
			line.Total = PriceProduct(product, qty)
		} else {
			svc, ok := services[*item.ServiceID]
			if !ok {
				return nil, apperror.NewNotFoundError(fmt.Sprintf("Service %s", *item.ServiceID))
			}
			if !svc.IsActive {
				return nil, apperror.NewFieldError(field, "service "+svc.Name+" is not active")
			}
			priced, appErr := PriceService(svc, item.Duration)
			if appErr != nil {
				return nil, appErr
			}

			id := svc.ID
			line.Type = enum.LineTypeService
			line.ServiceID = &id
			line.Name = svc.Name
			line.Quantity = 1
			line.Duration = priced.Duration
			line.UnitPrice = svc.UnitPrice
			line.Total = priced.Total
		}

		subtotal = subtotal.Add(line.Total)
		lines = append(lines, line)
	}

	invoice := &entity.Invoice{
		ClientID: client.ID,
		UserID:   actor.UserID,
		Subtotal: subtotal,
		Status:   enum.InvoiceStatusDraft,
		Notes:    input.Notes,
		Lines:    lines,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		settings, err := s.settingsRepo.GetForUpdate(ctx)
		if err != nil {
			return err
		}

		taxRate := settings.DefaultTaxRate
		if input.TaxRate != nil {
			taxRate = *input.TaxRate
		}
		invoice.TaxRate = taxRate
		invoice.TaxAmount, invoice.Total = ComputeTax(subtotal, taxRate)

		number, err := s.nextInvoiceNumber(ctx, settings)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number

		return s.invoiceRepo.Create(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	return s.invoiceRepo.GetByID(ctx, invoice.ID)
}

// nextInvoiceNumber formats the current counter and advances it. It must run
// inside the transaction that persists the invoice.
func (s *InvoiceService) nextInvoiceNumber(ctx context.Context, settings *entity.Settings) (string, error) {
	current := settings.NextInvoiceNumber
	ok, err := s.settingsRepo.AdvanceInvoiceCounter(ctx, current, current+1)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperror.NewConflictError("Invoice counter changed concurrently, please retry")
	}
	return entity.FormatInvoiceNumber(settings.InvoicePrefix, current), nil
}

func (s *InvoiceService) loadCatalog(ctx context.Context, items []InvoiceItemInput) (map[uuid.UUID]*entity.Product, map[uuid.UUID]*entity.Service, error) {
	var productIDs, serviceIDs []uuid.UUID
	for _, item := range items {
		if item.ProductID != nil {
			productIDs = append(productIDs, *item.ProductID)
		}
		if item.ServiceID != nil {
			serviceIDs = append(serviceIDs, *item.ServiceID)
		}
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, nil, err
	}
	services, err := s.serviceRepo.GetByIDs(ctx, serviceIDs)
	if err != nil {
		return nil, nil, err
	}

	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}
	serviceMap := make(map[uuid.UUID]*entity.Service, len(services))
	for i := range services {
		serviceMap[services[i].ID] = &services[i]
	}
	return productMap, serviceMap, nil
}

// ValidateInvoice commits a DRAFT invoice: stock is decremented and an OUT movement
// is written for every product line, then the status becomes VALIDATED. Everything
// happens in one transaction; any failure leaves stock and status untouched.
func (s *InvoiceService) ValidateInvoice(ctx context.Context, actor Actor, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if !invoice.IsDraft() {
		return nil, apperror.NewInvalidStateError("Only draft invoices can be validated")
	}
	if !actor.CanAccess(invoice.UserID) {
		return nil, apperror.NewForbiddenError("You can only validate your own invoices")
	}

	now := s.now().UTC()
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// Compare-and-swap on status; a concurrent validation loses here.
		ok, err := s.invoiceRepo.TransitionStatus(ctx, invoice.ID, enum.InvoiceStatusDraft, enum.InvoiceStatusValidated, now)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewInvalidStateError("Only draft invoices can be validated")
		}

		for _, line := range invoice.Lines {
			if line.Type != enum.LineTypeProduct || line.ProductID == nil {
				continue
			}
			if err := s.consumeStock(ctx, actor, invoice, &line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.stats)
	return s.invoiceRepo.GetByID(ctx, invoice.ID)
}

func (s *InvoiceService) consumeStock(ctx context.Context, actor Actor, invoice *entity.Invoice, line *entity.InvoiceLine) error {
	ok, err := s.productRepo.AtomicDecrementStock(ctx, *line.ProductID, line.Quantity)
	if err != nil {
		return err
	}
	if !ok {
		product, err := s.productRepo.GetByID(ctx, *line.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return apperror.NewNotFoundError("Product " + line.Name)
		}
		return apperror.NewInsufficientStockError(product.Name, product.Stock, line.Quantity)
	}

	invoiceID := invoice.ID
	return s.movementRepo.Create(ctx, &entity.StockMovement{
		ProductID: *line.ProductID,
		Type:      enum.MovementOut,
		Quantity:  line.Quantity,
		Reason:    invoice.InvoiceNumber,
		UserID:    actor.UserID,
		InvoiceID: &invoiceID,
	})
}

// GetInvoice retrieves an invoice the actor is allowed to see
func (s *InvoiceService) GetInvoice(ctx context.Context, actor Actor, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if !actor.CanAccess(invoice.UserID) {
		return nil, apperror.NewForbiddenError("You can only view your own invoices")
	}
	return invoice, nil
}

// InvoiceFilter holds the caller-facing list filters
type InvoiceFilter struct {
	Pagination pagination.Params
	Status     *enum.InvoiceStatus
	ClientID   *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

func (s *InvoiceService) filterParams(actor Actor, f InvoiceFilter) (*repository.InvoiceFilterParams, error) {
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return nil, apperror.NewFieldError("endDate", "end date is before start date")
	}
	return &repository.InvoiceFilterParams{
		Pagination: f.Pagination,
		Status:     f.Status,
		ClientID:   f.ClientID,
		UserID:     actor.ScopeUserID(),
		StartDate:  f.StartDate,
		EndDate:    f.EndDate,
	}, nil
}

// ListInvoices lists invoices visible to the actor. Restricted roles only see
// the invoices they created.
func (s *InvoiceService) ListInvoices(ctx context.Context, actor Actor, f InvoiceFilter) (*pagination.PaginatedResult[entity.Invoice], error) {
	f.Pagination.Normalize()
	params, err := s.filterParams(actor, f)
	if err != nil {
		return nil, err
	}

	invoices, total, err := s.invoiceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(invoices, f.Pagination, total), nil
}

// AllInvoices returns every invoice matching f without paging.
func (s *InvoiceService) AllInvoices(ctx context.Context, actor Actor, f InvoiceFilter) ([]entity.Invoice, error) {
	f.Pagination = pagination.Params{}
	params, err := s.filterParams(actor, f)
	if err != nil {
		return nil, err
	}

	invoices, _, err := s.invoiceRepo.List(ctx, params)
	return invoices, err
}
