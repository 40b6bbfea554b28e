package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sangkips/beautypos-api/internal/application/service"
	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/beautypos-api/internal/domain/repository"
	"github.com/sangkips/beautypos-api/internal/infrastructure/cache"
	"github.com/sangkips/beautypos-api/internal/infrastructure/database/dbtest"
	"github.com/sangkips/beautypos-api/internal/infrastructure/repository"
	"github.com/sangkips/beautypos-api/pkg/printer"
)

type fixture struct {
	db  *gorm.DB
	ctx context.Context

	productRepo  domainRepo.ProductRepository
	serviceRepo  domainRepo.ServiceRepository
	clientRepo   domainRepo.ClientRepository
	invoiceRepo  domainRepo.InvoiceRepository
	settingsRepo domainRepo.SettingsRepository
	movementRepo domainRepo.StockMovementRepository

	invoices *service.InvoiceService
	products *service.ProductService
	clients  *service.ClientService
	stats    *service.StatsService
	printer  *service.PrinterService
	exporter *service.ExportService

	admin       service.Actor
	seller      service.Actor
	otherSeller service.Actor
	client      *entity.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.New(t)
	f := &fixture{
		db:           db,
		ctx:          context.Background(),
		productRepo:  repository.NewProductRepository(db),
		serviceRepo:  repository.NewServiceRepository(db),
		clientRepo:   repository.NewClientRepository(db),
		invoiceRepo:  repository.NewInvoiceRepository(db),
		settingsRepo: repository.NewSettingsRepository(db),
		movementRepo: repository.NewStockMovementRepository(db),
	}
	tx := repository.NewTransactor(db)

	f.stats = service.NewStatsService(
		repository.NewStatsRepository(db), f.clientRepo, f.productRepo,
		cache.NewMemory(), time.Minute, 10,
	)
	f.invoices = service.NewInvoiceService(
		tx, f.invoiceRepo, f.clientRepo, f.productRepo, f.serviceRepo,
		f.settingsRepo, f.movementRepo, f.stats,
	)
	f.products = service.NewProductService(tx, f.productRepo, repository.NewCategoryRepository(db), f.movementRepo, f.stats)
	f.clients = service.NewClientService(f.clientRepo, f.invoiceRepo, f.stats)
	f.printer = service.NewPrinterService(printer.NewNullPrinter(), printer.Width58mm, f.invoiceRepo, f.settingsRepo)
	f.exporter = service.NewExportService(f.invoices)

	userRepo := repository.NewUserRepository(db)
	f.admin = f.user(t, userRepo, "admin@shop.test", "Alice", enum.RoleAdmin)
	f.seller = f.user(t, userRepo, "seller@shop.test", "Sam", enum.RoleSeller)
	f.otherSeller = f.user(t, userRepo, "other@shop.test", "Olga", enum.RoleSeller)

	f.client = &entity.Client{FirstName: "Marie", LastName: "Dupont", Phone: "0600000000"}
	require.NoError(t, f.clientRepo.Create(f.ctx, f.client))

	return f
}

func (f *fixture) user(t *testing.T, repo domainRepo.UserRepository, email, name string, role enum.Role) service.Actor {
	t.Helper()
	u := &entity.User{Email: email, Password: "hash", FirstName: name, LastName: "Staff", Role: role, IsActive: true}
	require.NoError(t, repo.Create(f.ctx, u))
	return service.Actor{UserID: u.ID, Role: role}
}

func (f *fixture) product(t *testing.T, name, price string, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{
		Name:          name,
		SellingPrice:  dec(price),
		PurchasePrice: dec(price).Div(decimal.NewFromInt(2)),
		Stock:         stock,
		IsActive:      true,
	}
	require.NoError(t, f.productRepo.Create(f.ctx, p))
	return p
}

func (f *fixture) treatment(t *testing.T, name string, billing enum.BillingType, price string, minDuration *int) *entity.Service {
	t.Helper()
	s := &entity.Service{Name: name, BillingType: billing, UnitPrice: dec(price), MinDuration: minDuration, IsActive: true}
	require.NoError(t, f.serviceRepo.Create(f.ctx, s))
	return s
}

func (f *fixture) stockOf(t *testing.T, p *entity.Product) int {
	t.Helper()
	current, err := f.productRepo.GetByID(f.ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	return current.Stock
}

// sale creates a DRAFT invoice for the fixture client selling qty of p.
func (f *fixture) sale(t *testing.T, actor service.Actor, p *entity.Product, qty int) *entity.Invoice {
	t.Helper()
	inv, err := f.invoices.CreateInvoice(f.ctx, actor, &service.CreateInvoiceInput{
		ClientID: f.client.ID,
		Items:    []service.InvoiceItemInput{{ProductID: &p.ID, Quantity: intPtr(qty)}},
	})
	require.NoError(t, err)
	return inv
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(i int) *int {
	return &i
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
