package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"github.com/sangkips/beautypos-api/internal/domain/repository"
	"github.com/sangkips/beautypos-api/pkg/apperror"
	"github.com/sangkips/beautypos-api/pkg/printer"
)

const receiptDateLayout = "2006-01-02 15:04"

// PrinterService renders invoice receipts and sends them to the shop printer
type PrinterService struct {
	printer      printer.Printer
	width        int
	invoiceRepo  repository.InvoiceRepository
	settingsRepo repository.SettingsRepository
}

// NewPrinterService creates a new printer service
func NewPrinterService(p printer.Printer, width int, invoiceRepo repository.InvoiceRepository, settingsRepo repository.SettingsRepository) *PrinterService {
	if p == nil {
		p = printer.NewNullPrinter()
	}
	return &PrinterService{
		printer:      p,
		width:        width,
		invoiceRepo:  invoiceRepo,
		settingsRepo: settingsRepo,
	}
}

// PrinterStatus reports the configured backend
type PrinterStatus struct {
	Type      string `json:"type"`
	Connected bool   `json:"connected"`
}

// GetStatus returns the printer backend and whether it is reachable
func (s *PrinterService) GetStatus() PrinterStatus {
	return PrinterStatus{
		Type:      s.printer.Kind(),
		Connected: s.printer.IsConnected(),
	}
}

// RenderedReceipt is a receipt in both printer and human-readable form.
type RenderedReceipt struct {
	Receipt *entity.Receipt `json:"receipt"`
	ESCPOS  string          `json:"escpos"`
	Preview string          `json:"preview"`
}

// InvoiceReceipt renders the receipt of an invoice the actor may see
func (s *PrinterService) InvoiceReceipt(ctx context.Context, actor Actor, invoiceID uuid.UUID) (*RenderedReceipt, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if !actor.CanAccess(invoice.UserID) {
		return nil, apperror.NewForbiddenError("You can only print your own invoices")
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	receipt := BuildReceipt(invoice, settings)
	doc := FormatReceipt(receipt, s.width)

	return &RenderedReceipt{
		Receipt: receipt,
		ESCPOS:  base64.StdEncoding.EncodeToString(doc.Bytes()),
		Preview: doc.Preview(),
	}, nil
}

// PrintInvoice sends the receipt to the configured printer. Only validated
// invoices are printed.
func (s *PrinterService) PrintInvoice(ctx context.Context, actor Actor, invoiceID uuid.UUID) (*RenderedReceipt, error) {
	rendered, err := s.InvoiceReceipt(ctx, actor, invoiceID)
	if err != nil {
		return nil, err
	}
	if rendered.Receipt.Status != string(enum.InvoiceStatusValidated) {
		return nil, apperror.NewInvalidStateError("Only validated invoices can be printed")
	}

	raw, _ := base64.StdEncoding.DecodeString(rendered.ESCPOS)
	if err := s.printer.Print(raw); err != nil {
		log.Printf("Printer error (invoice %s): %v", rendered.Receipt.InvoiceNumber, err)
		return rendered, fmt.Errorf("failed to print receipt: %w", err)
	}
	return rendered, nil
}

// BuildReceipt composes a receipt from an invoice loaded with its client, user and lines.
func BuildReceipt(invoice *entity.Invoice, settings *entity.Settings) *entity.Receipt {
	receipt := &entity.Receipt{
		Header: entity.ReceiptHeader{
			ShopName: settings.ShopName,
			Address:  settings.ShopAddress,
			Phone:    settings.ShopPhone,
			Email:    settings.ShopEmail,
		},
		InvoiceNumber: invoice.InvoiceNumber,
		Status:        string(invoice.Status),
		Date:          invoice.CreatedAt.Format(receiptDateLayout),
		Subtotal:      invoice.Subtotal,
		TaxRate:       invoice.TaxRate,
		TaxAmount:     invoice.TaxAmount,
		Total:         invoice.Total,
	}
	if invoice.ValidatedAt != nil {
		receipt.Date = invoice.ValidatedAt.Format(receiptDateLayout)
	}
	if invoice.User != nil {
		receipt.Seller = invoice.User.FullName()
	}
	if invoice.Client != nil {
		receipt.Client = invoice.Client.FullName()
	}
	if invoice.Notes != nil {
		receipt.Notes = *invoice.Notes
	}

	for _, l := range invoice.Lines {
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:      l.Name,
			Quantity:  l.Quantity,
			Duration:  l.Duration,
			UnitPrice: l.UnitPrice,
			Total:     l.Total,
		})
	}
	return receipt
}

// FormatReceipt lays the receipt out for a thermal printer of the given width.
func FormatReceipt(r *entity.Receipt, width int) *printer.Document {
	doc := printer.NewDocument(width)

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.ShopName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	for _, h := range []string{r.Header.Address, r.Header.Phone, r.Header.Email} {
		if h != "" {
			doc.Text(h)
		}
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-').
		KeyValue("Invoice:", r.InvoiceNumber).
		KeyValue("Date:", r.Date)

	if r.Status != string(enum.InvoiceStatusValidated) {
		doc.KeyValue("Status:", r.Status)
	}
	if r.Seller != "" {
		doc.KeyValue("Seller:", r.Seller)
	}
	if r.Client != "" {
		doc.KeyValue("Client:", r.Client)
	}

	doc.Separator('-')

	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, item.Total.StringFixed(2))
		switch {
		case item.Duration != nil:
			doc.TextF("  %d min @ %s", *item.Duration, item.UnitPrice.StringFixed(2))
		case item.Quantity > 1:
			doc.TextF("  @ %s each", item.UnitPrice.StringFixed(2))
		}
	}

	doc.Separator('-').
		KeyValue("Subtotal:", r.Subtotal.StringFixed(2)).
		KeyValue(fmt.Sprintf("Tax (%s%%):", r.TaxRate.String()), r.TaxAmount.StringFixed(2)).
		SetBold(true).
		KeyValue("TOTAL:", r.Total.StringFixed(2)).
		SetBold(false)

	if r.Notes != "" {
		doc.Separator('-').Text(r.Notes)
	}

	doc.Separator('-').
		SetAlign(printer.AlignCenter).
		Text("Thank you for your visit!").
		SetAlign(printer.AlignLeft).
		FeedLines(3).
		PartialCut()

	return doc
}
