package service

import (
	"bytes"
	"context"
	"strconv"

	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/pkg/apperror"
	"github.com/xuri/excelize/v2"
)

const (
	invoiceSheet = "Invoices"
	lineSheet    = "Lines"

	// built-in excelize number format "0.00"
	numFmtTwoDecimals = 2
)

// ExportService writes invoice lists as spreadsheets
type ExportService struct {
	invoices *InvoiceService
}

// NewExportService creates a new export service
func NewExportService(invoices *InvoiceService) *ExportService {
	return &ExportService{invoices: invoices}
}

// ExportInvoices writes every invoice matching f that the actor can see to an
// .xlsx workbook with one sheet of invoices and one of their lines.
func (s *ExportService) ExportInvoices(ctx context.Context, actor Actor, f InvoiceFilter) (*bytes.Buffer, error) {
	invoices, err := s.invoices.AllInvoices(ctx, actor, f)
	if err != nil {
		return nil, err
	}

	wb, err := buildInvoiceWorkbook(invoices)
	if err != nil {
		return nil, apperror.NewInternalError("export invoices", err)
	}
	defer wb.Close()

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, apperror.NewInternalError("export invoices", err)
	}
	return buf, nil
}

func buildInvoiceWorkbook(invoices []entity.Invoice) (*excelize.File, error) {
	wb := excelize.NewFile()

	if err := wb.SetSheetName("Sheet1", invoiceSheet); err != nil {
		return nil, err
	}
	if _, err := wb.NewSheet(lineSheet); err != nil {
		return nil, err
	}

	header, err := wb.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	money, err := wb.NewStyle(&excelize.Style{NumFmt: numFmtTwoDecimals})
	if err != nil {
		return nil, err
	}

	invoiceHeader := []interface{}{"Number", "Date", "Status", "Client", "Seller", "Subtotal", "Tax rate", "Tax", "Total", "Validated at"}
	lineHeader := []interface{}{"Invoice", "Position", "Type", "Name", "Quantity", "Duration (min)", "Unit price", "Total"}

	if err := wb.SetSheetRow(invoiceSheet, "A1", &invoiceHeader); err != nil {
		return nil, err
	}
	if err := wb.SetSheetRow(lineSheet, "A1", &lineHeader); err != nil {
		return nil, err
	}
	if err := wb.SetRowStyle(invoiceSheet, 1, 1, header); err != nil {
		return nil, err
	}
	if err := wb.SetRowStyle(lineSheet, 1, 1, header); err != nil {
		return nil, err
	}

	lineRow := 2
	for i, inv := range invoices {
		row := i + 2

		var client, seller, validatedAt string
		if inv.Client != nil {
			client = inv.Client.FullName()
		}
		if inv.User != nil {
			seller = inv.User.FullName()
		}
		if inv.ValidatedAt != nil {
			validatedAt = inv.ValidatedAt.Format(receiptDateLayout)
		}

		values := []interface{}{
			inv.InvoiceNumber,
			inv.CreatedAt.Format(receiptDateLayout),
			string(inv.Status),
			client,
			seller,
			inv.Subtotal.InexactFloat64(),
			inv.TaxRate.InexactFloat64(),
			inv.TaxAmount.InexactFloat64(),
			inv.Total.InexactFloat64(),
			validatedAt,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := wb.SetSheetRow(invoiceSheet, cell, &values); err != nil {
			return nil, err
		}

		for _, l := range inv.Lines {
			var duration interface{}
			if l.Duration != nil {
				duration = *l.Duration
			}
			lineValues := []interface{}{
				inv.InvoiceNumber,
				l.Position,
				string(l.Type),
				l.Name,
				l.Quantity,
				duration,
				l.UnitPrice.InexactFloat64(),
				l.Total.InexactFloat64(),
			}
			cell, _ := excelize.CoordinatesToCellName(1, lineRow)
			if err := wb.SetSheetRow(lineSheet, cell, &lineValues); err != nil {
				return nil, err
			}
			lineRow++
		}
	}

	if n := len(invoices); n > 0 {
		if err := wb.SetCellStyle(invoiceSheet, "F2", "I"+strconv.Itoa(n+1), money); err != nil {
			return nil, err
		}
	}
	if lineRow > 2 {
		if err := wb.SetCellStyle(lineSheet, "G2", "H"+strconv.Itoa(lineRow-1), money); err != nil {
			return nil, err
		}
	}

	_ = wb.SetColWidth(invoiceSheet, "A", "E", 18)
	_ = wb.SetColWidth(lineSheet, "A", "D", 18)

	return wb, nil
}
