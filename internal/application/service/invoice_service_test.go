package service_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/beautypos-api/internal/application/service"
	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"github.com/sangkips/beautypos-api/pkg/apperror"
	"github.com/sangkips/beautypos-api/pkg/pagination"
)

func TestCreateInvoice_ProductSale(t *testing.T) {
	f := newFixture(t)
	serum := f.product(t, "Serum", "35.99", 10)

	inv := f.sale(t, f.seller, serum, 3)

	assert.Equal(t, "INV-00001", inv.InvoiceNumber)
	assert.Equal(t, enum.InvoiceStatusDraft, inv.Status)
	assert.Equal(t, f.seller.UserID, inv.UserID)
	assert.Nil(t, inv.ValidatedAt)
	assertDec(t, "107.97", inv.Subtotal)
	assertDec(t, "20", inv.TaxRate)
	assertDec(t, "21.594", inv.TaxAmount)
	assertDec(t, "129.564", inv.Total)

	require.Len(t, inv.Lines, 1)
	line := inv.Lines[0]
	assert.Equal(t, enum.LineTypeProduct, line.Type)
	assert.Equal(t, "Serum", line.Name)
	assert.Equal(t, 3, line.Quantity)
	assertDec(t, "35.99", line.UnitPrice)
	assertDec(t, "107.97", line.Total)

	// creation reserves nothing
	assert.Equal(t, 10, f.stockOf(t, serum))

	settings, err := f.settingsRepo.Get(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, settings.NextInvoiceNumber)

	second := f.sale(t, f.seller, serum, 1)
	assert.Equal(t, "INV-00002", second.InvoiceNumber)
}

func TestCreateInvoice_ServiceLinesAndTaxOverride(t *testing.T) {
	f := newFixture(t)
	manicure := f.treatment(t, "Manicure", enum.BillingFlat, "30", nil)
	massage := f.treatment(t, "Massage", enum.BillingPerMinute, "0.5", intPtr(15))
	spa := f.treatment(t, "Spa", enum.BillingPerHour, "60", intPtr(30))

	inv, err := f.invoices.CreateInvoice(f.ctx, f.seller, &service.CreateInvoiceInput{
		ClientID: f.client.ID,
		Items: []service.InvoiceItemInput{
			{ServiceID: &manicure.ID, Duration: intPtr(45)},
			{ServiceID: &massage.ID, Duration: intPtr(40)},
			{ServiceID: &spa.ID, Duration: intPtr(90)},
		},
		TaxRate: decPtr("0"),
	})
	require.NoError(t, err)

	require.Len(t, inv.Lines, 3)
	assert.Nil(t, inv.Lines[0].Duration)
	assert.Equal(t, 1, inv.Lines[0].Quantity)
	assertDec(t, "30", inv.Lines[0].Total)
	assert.Equal(t, intPtr(40), inv.Lines[1].Duration)
	assertDec(t, "20", inv.Lines[1].Total)
	assertDec(t, "90", inv.Lines[2].Total)

	assertDec(t, "140", inv.Subtotal)
	assertDec(t, "0", inv.TaxRate)
	assertDec(t, "0", inv.TaxAmount)
	assertDec(t, "140", inv.Total)
}

func TestCreateInvoice_Rejects(t *testing.T) {
	f := newFixture(t)
	serum := f.product(t, "Serum", "35.99", 2)
	spa := f.treatment(t, "Spa", enum.BillingPerHour, "60", intPtr(30))
	missing := uuid.New()

	tests := []struct {
		name  string
		input service.CreateInvoiceInput
		want  error
	}{
		{
			name:  "no items",
			input: service.CreateInvoiceInput{ClientID: f.client.ID},
			want:  apperror.ErrValidation,
		},
		{
			name:  "unknown client",
			input: service.CreateInvoiceInput{ClientID: missing, Items: []service.InvoiceItemInput{{ProductID: &serum.ID, Quantity: intPtr(1)}}},
			want:  apperror.ErrNotFound,
		},
		{
			name:  "unknown product",
			input: service.CreateInvoiceInput{ClientID: f.client.ID, Items: []service.InvoiceItemInput{{ProductID: &missing, Quantity: intPtr(1)}}},
			want:  apperror.ErrNotFound,
		},
		{
			name:  "product and service on one item",
			input: service.CreateInvoiceInput{ClientID: f.client.ID, Items: []service.InvoiceItemInput{{ProductID: &serum.ID, ServiceID: &spa.ID, Quantity: intPtr(1)}}},
			want:  apperror.ErrValidation,
		},
		{
			name:  "missing quantity",
			input: service.CreateInvoiceInput{ClientID: f.client.ID, Items: []service.InvoiceItemInput{{ProductID: &serum.ID}}},
			want:  apperror.ErrValidation,
		},
		{
			name:  "duration below minimum",
			input: service.CreateInvoiceInput{ClientID: f.client.ID, Items: []service.InvoiceItemInput{{ServiceID: &spa.ID, Duration: intPtr(10)}}},
			want:  apperror.ErrValidation,
		},
		{
			name:  "more than in stock",
			input: service.CreateInvoiceInput{ClientID: f.client.ID, Items: []service.InvoiceItemInput{{ProductID: &serum.ID, Quantity: intPtr(3)}}},
			want:  apperror.ErrInsufficientStock,
		},
		{
			name: "same product across lines exceeds stock",
			input: service.CreateInvoiceInput{ClientID: f.client.ID, Items: []service.InvoiceItemInput{
				{ProductID: &serum.ID, Quantity: intPtr(2)},
				{ProductID: &serum.ID, Quantity: intPtr(1)},
			}},
			want: apperror.ErrInsufficientStock,
		},
		{
			name:  "tax rate out of range",
			input: service.CreateInvoiceInput{ClientID: f.client.ID, Items: []service.InvoiceItemInput{{ProductID: &serum.ID, Quantity: intPtr(1)}}, TaxRate: decPtr("150")},
			want:  apperror.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := f.invoices.CreateInvoice(f.ctx, f.seller, &input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&entity.Invoice{}).Count(&count).Error)
	assert.Zero(t, count)

	settings, err := f.settingsRepo.Get(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, settings.NextInvoiceNumber)
}

func TestCreateInvoice_InactiveProduct(t *testing.T) {
	f := newFixture(t)
	serum := f.product(t, "Serum", "10", 5)
	serum.IsActive = false
	require.NoError(t, f.productRepo.Update(f.ctx, serum))

	_, err := f.invoices.CreateInvoice(f.ctx, f.seller, &service.CreateInvoiceInput{
		ClientID: f.client.ID,
		Items:    []service.InvoiceItemInput{{ProductID: &serum.ID, Quantity: intPtr(1)}},
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCreateInvoice_ConcurrentNumbersAreUnique(t *testing.T) {
	f := newFixture(t)
	serum := f.product(t, "Serum", "10", 100)

	const n = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]bool)
		errs    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv, err := f.invoices.CreateInvoice(f.ctx, f.seller, &service.CreateInvoiceInput{
				ClientID: f.client.ID,
				Items:    []service.InvoiceItemInput{{ProductID: &serum.ID, Quantity: intPtr(1)}},
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers[inv.InvoiceNumber] = true
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Len(t, numbers, n)

	settings, err := f.settingsRepo.Get(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, n+1, settings.NextInvoiceNumber)
}

func TestValidateInvoice_ConcurrentNeverOverdraws(t *testing.T) {
	f := newFixture(t)
	serum := f.product(t, "Serum", "10", 5)

	a := f.sale(t, f.seller, serum, 3)
	b := f.sale(t, f.seller, serum, 3)
	c := f.sale(t, f.seller, serum, 1)
	qty := map[string]int{a.InvoiceNumber: 3, b.InvoiceNumber: 3, c.InvoiceNumber: 1}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes = make(map[string]int)
		failures  []error
	)
	for _, inv := range []*entity.Invoice{a, a, b, c} {
		wg.Add(1)
		go func(inv *entity.Invoice) {
			defer wg.Done()
			_, err := f.invoices.ValidateInvoice(f.ctx, f.seller, inv.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			successes[inv.InvoiceNumber]++
		}(inv)
	}
	wg.Wait()

	sold := 0
	for number, n := range successes {
		assert.Equalf(t, 1, n, "%s validated %d times", number, n)
		sold += qty[number]
	}
	for _, err := range failures {
		isExpected := errors.Is(err, apperror.ErrInvalidState) || errors.Is(err, apperror.ErrInsufficientStock)
		assert.Truef(t, isExpected, "unexpected error: %v", err)
	}
	assert.Len(t, failures, 4-len(successes))
	assert.LessOrEqual(t, sold, 5)

	stock := f.stockOf(t, serum)
	assert.GreaterOrEqual(t, stock, 0)
	assert.Equal(t, 5-sold, stock)

	for _, inv := range []*entity.Invoice{a, b, c} {
		movements, err := f.movementRepo.ListByInvoice(f.ctx, inv.ID)
		require.NoError(t, err)
		current, err := f.invoices.GetInvoice(f.ctx, f.admin, inv.ID)
		require.NoError(t, err)
		if successes[inv.InvoiceNumber] == 1 {
			assert.Equal(t, enum.InvoiceStatusValidated, current.Status)
			require.Len(t, movements, 1)
			assert.Equal(t, enum.MovementOut, movements[0].Type)
			assert.Equal(t, qty[inv.InvoiceNumber], movements[0].Quantity)
		} else {
			assert.Equal(t, enum.InvoiceStatusDraft, current.Status)
			assert.Empty(t, movements)
		}
	}
}

func TestCreateInvoice_UsesConfiguredPrefix(t *testing.T) {
	f := newFixture(t)
	serum := f.product(t, "Serum", "10", 5)

	settings, err := f.settingsRepo.Get(f.ctx)
	require.NoError(t, err)
	settings.InvoicePrefix = "BS-"
	require.NoError(t, f.settingsRepo.Update(f.ctx, settings))

	inv := f.sale(t, f.admin, serum, 1)
	assert.Equal(t, "BS-00001", inv.InvoiceNumber)
}

func TestValidateInvoice_ConsumesStock(t *testing.T) {
	f := newFixture(t)
	serum := f.product(t, "Serum", "35.99", 10)
	spa := f.treatment(t, "Spa", enum.BillingFlat, "50", nil)

	inv, err := f.invoices.CreateInvoice(f.ctx, f.seller, &service.CreateInvoiceInput{
		ClientID: f.client.ID,
		Items: []service.InvoiceItemInput{
			{ProductID: &serum.ID, Quantity: intPtr(3)},
			{ServiceID: &spa.ID},
		},
	})
	require.NoError(t, err)

	validated, err := f.invoices.ValidateInvoice(f.ctx, f.seller, inv.ID)
	require.NoError(t, err)

	assert.Equal(t, enum.InvoiceStatusValidated, validated.Status)
	require.NotNil(t, validated.ValidatedAt)
	assert.WithinDuration(t, time.Now(), *validated.ValidatedAt, time.Minute)
	assert.Equal(t, 7, f.stockOf(t, serum))

	movements, err := f.movementRepo.ListByInvoice(f.ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, enum.MovementOut, movements[0].Type)
	assert.Equal(t, 3, movements[0].Quantity)
	assert.Equal(t, inv.InvoiceNumber, movements[0].Reason)
	assert.Equal(t, serum.ID, movements[0].ProductID)
	assert.Equal(t, f.seller.UserID, movements[0].UserID)
}

func TestValidateInvoice_Twice(t *testing.T) {
	f := newFixture(t)
	serum := f.product(t, "Serum", "10", 10)
	inv := f.sale(t, f.seller, serum, 4)

	_, err := f.invoices.ValidateInvoice(f.ctx, f.seller, inv.ID)
	require.NoError(t, err)

	_, err = f.invoices.ValidateInvoice(f.ctx, f.admin, inv.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidState)
	assert.Equal(t, 6, f.stockOf(t, serum))

	movements, err := f.movementRepo.ListByInvoice(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, movements, 1)
}

func TestValidateInvoice_InsufficientStockRollsBack(t *testing.T) {
	f := newFixture(t)
	serum := f.product(t, "Serum", "10", 5)
	cream := f.product(t, "Cream", "20", 2)

	inv, err := f.invoices.CreateInvoice(f.ctx, f.seller, &service.CreateInvoiceInput{
		ClientID: f.client.ID,
		Items: []service.InvoiceItemInput{
			{ProductID: &serum.ID, Quantity: intPtr(3)},
			{ProductID: &cream.ID, Quantity: intPtr(2)},
		},
	})
	require.NoError(t, err)

	// another sale drains the cream before this one is validated
	other := f.sale(t, f.admin, cream, 1)
	_, err = f.invoices.ValidateInvoice(f.ctx, f.admin, other.ID)
	require.NoError(t, err)

	_, err = f.invoices.ValidateInvoice(f.ctx, f.seller, inv.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)

	assert.Equal(t, 5, f.stockOf(t, serum))
	assert.Equal(t, 1, f.stockOf(t, cream))

	reloaded, err := f.invoices.GetInvoice(f.ctx, f.seller, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusDraft, reloaded.Status)
	assert.Nil(t, reloaded.ValidatedAt)

	movements, err := f.movementRepo.ListByInvoice(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestValidateInvoice_Access(t *testing.T) {
	f := newFixture(t)
	serum := f.product(t, "Serum", "10", 10)

	t.Run("other seller is forbidden", func(t *testing.T) {
		inv := f.sale(t, f.seller, serum, 1)
		_, err := f.invoices.ValidateInvoice(f.ctx, f.otherSeller, inv.ID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("admin validates any invoice", func(t *testing.T) {
		inv := f.sale(t, f.seller, serum, 1)
		validated, err := f.invoices.ValidateInvoice(f.ctx, f.admin, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, enum.InvoiceStatusValidated, validated.Status)
	})

	t.Run("state is checked before ownership", func(t *testing.T) {
		inv := f.sale(t, f.seller, serum, 1)
		_, err := f.invoices.ValidateInvoice(f.ctx, f.seller, inv.ID)
		require.NoError(t, err)

		_, err = f.invoices.ValidateInvoice(f.ctx, f.otherSeller, inv.ID)
		assert.ErrorIs(t, err, apperror.ErrInvalidState)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		_, err := f.invoices.ValidateInvoice(f.ctx, f.admin, uuid.New())
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestGetInvoice_Access(t *testing.T) {
	f := newFixture(t)
	serum := f.product(t, "Serum", "10", 10)
	inv := f.sale(t, f.seller, serum, 1)

	got, err := f.invoices.GetInvoice(f.ctx, f.seller, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, got.InvoiceNumber)
	require.NotNil(t, got.Client)
	assert.Equal(t, "Dupont", got.Client.LastName)

	_, err = f.invoices.GetInvoice(f.ctx, f.admin, inv.ID)
	assert.NoError(t, err)

	_, err = f.invoices.GetInvoice(f.ctx, f.otherSeller, inv.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.invoices.GetInvoice(f.ctx, f.admin, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListInvoices_ScopesAndFilters(t *testing.T) {
	f := newFixture(t)
	serum := f.product(t, "Serum", "10", 50)

	mine := f.sale(t, f.seller, serum, 1)
	f.sale(t, f.seller, serum, 2)
	f.sale(t, f.otherSeller, serum, 1)

	_, err := f.invoices.ValidateInvoice(f.ctx, f.seller, mine.ID)
	require.NoError(t, err)

	list := func(actor service.Actor, filter service.InvoiceFilter) *pagination.PaginatedResult[entity.Invoice] {
		t.Helper()
		res, err := f.invoices.ListInvoices(f.ctx, actor, filter)
		require.NoError(t, err)
		return res
	}

	sellerView := list(f.seller, service.InvoiceFilter{})
	assert.EqualValues(t, 2, sellerView.Pagination.Total)
	for _, inv := range sellerView.Items {
		assert.Equal(t, f.seller.UserID, inv.UserID)
	}

	assert.EqualValues(t, 3, list(f.admin, service.InvoiceFilter{}).Pagination.Total)

	validated := enum.InvoiceStatusValidated
	byStatus := list(f.admin, service.InvoiceFilter{Status: &validated})
	require.Len(t, byStatus.Items, 1)
	assert.Equal(t, mine.ID, byStatus.Items[0].ID)

	future := time.Now().Add(24 * time.Hour)
	assert.Empty(t, list(f.admin, service.InvoiceFilter{StartDate: &future}).Items)

	past := time.Now().Add(-time.Hour)
	assert.EqualValues(t, 3, list(f.admin, service.InvoiceFilter{StartDate: &past, EndDate: &future}).Pagination.Total)

	paged := list(f.admin, service.InvoiceFilter{Pagination: pagination.Params{Page: 2, Limit: 2}})
	assert.Len(t, paged.Items, 1)

	_, err = f.invoices.ListInvoices(f.ctx, f.admin, service.InvoiceFilter{StartDate: &future, EndDate: &past})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
