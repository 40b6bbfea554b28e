package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/beautypos-api/internal/application/service"
	"github.com/sangkips/beautypos-api/internal/presentation/http/dto/response"
)

// PrinterHandler handles receipt rendering and printing.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	response.OK(c, "Printer status retrieved", h.printerService.GetStatus())
}

// Receipt renders the receipt of an invoice without printing it.
// @Summary Invoice Receipt
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /invoices/{id}/receipt [get]
func (h *PrinterHandler) Receipt(c *gin.Context) {
	actor, ok := GetActor(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	rendered, err := h.printerService.InvoiceReceipt(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt generated", rendered)
}

// Print sends the receipt of a validated invoice to the printer. When the
// device fails the rendered receipt is still returned with a warning.
func (h *PrinterHandler) Print(c *gin.Context) {
	actor, ok := GetActor(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	rendered, err := h.printerService.PrintInvoice(c.Request.Context(), actor, id)
	if err != nil {
		if rendered != nil {
			response.OK(c, "Receipt generated but printing failed", gin.H{
				"receipt": rendered,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt printed successfully", rendered)
}
