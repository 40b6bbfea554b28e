package service_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/beautypos-api/internal/application/service"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"github.com/sangkips/beautypos-api/pkg/apperror"
	"github.com/sangkips/beautypos-api/pkg/printer"
)

func TestInvoiceReceipt(t *testing.T) {
	f := newFixture(t)
	serum := f.product(t, "Serum", "35.99", 10)
	massage := f.treatment(t, "Massage", enum.BillingPerMinute, "0.5", intPtr(15))

	inv, err := f.invoices.CreateInvoice(f.ctx, f.seller, &service.CreateInvoiceInput{
		ClientID: f.client.ID,
		Items: []service.InvoiceItemInput{
			{ProductID: &serum.ID, Quantity: intPtr(3)},
			{ServiceID: &massage.ID, Duration: intPtr(40)},
		},
	})
	require.NoError(t, err)

	rendered, err := f.printer.InvoiceReceipt(f.ctx, f.seller, inv.ID)
	require.NoError(t, err)

	assert.Equal(t, "Beauty Shop", rendered.Receipt.Header.ShopName)
	assert.Equal(t, "Marie Dupont", rendered.Receipt.Client)
	assert.Equal(t, "Sam Staff", rendered.Receipt.Seller)
	require.Len(t, rendered.Receipt.Items, 2)
	assertDec(t, "153.564", rendered.Receipt.Total)

	assert.Contains(t, rendered.Preview, "INV-00001")
	assert.Contains(t, rendered.Preview, "3x Serum")
	assert.Contains(t, rendered.Preview, "40 min @ 0.50")
	assert.Contains(t, rendered.Preview, "153.56")
	assert.Contains(t, rendered.Preview, "Status:")

	raw, err := base64.StdEncoding.DecodeString(rendered.ESCPOS)
	require.NoError(t, err)
	assert.Equal(t, []byte{printer.ESC, '@'}, raw[:2])

	_, err = f.printer.InvoiceReceipt(f.ctx, f.otherSeller, inv.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestPrintInvoice_RequiresValidated(t *testing.T) {
	f := newFixture(t)
	serum := f.product(t, "Serum", "10", 10)
	inv := f.sale(t, f.seller, serum, 1)

	_, err := f.printer.PrintInvoice(f.ctx, f.seller, inv.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	_, err = f.invoices.ValidateInvoice(f.ctx, f.seller, inv.ID)
	require.NoError(t, err)

	rendered, err := f.printer.PrintInvoice(f.ctx, f.seller, inv.ID)
	require.NoError(t, err)
	assert.NotContains(t, rendered.Preview, "Status:")
	assert.Equal(t, service.PrinterStatus{Type: "none"}, f.printer.GetStatus())
}
