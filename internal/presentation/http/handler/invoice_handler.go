package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/beautypos-api/internal/application/service"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"github.com/sangkips/beautypos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/beautypos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/beautypos-api/pkg/apperror"
	"github.com/sangkips/beautypos-api/pkg/pagination"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	exportService  *service.ExportService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService, exportService *service.ExportService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		exportService:  exportService,
	}
}

// Create handles invoice creation. Lines are priced from the current catalog
// and the invoice starts as DRAFT.
// @Summary Create Invoice
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body request.CreateInvoiceRequest true "Invoice"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	actor, ok := GetActor(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	items := make([]service.InvoiceItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.InvoiceItemInput{
			ProductID: item.ProductID,
			ServiceID: item.ServiceID,
			Quantity:  item.Quantity,
			Duration:  item.Duration,
		})
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), actor, &service.CreateInvoiceInput{
		ClientID: req.ClientID,
		Items:    items,
		TaxRate:  req.TaxRate,
		Notes:    req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Invoice created successfully", invoice)
}

// List handles listing invoices; sellers only see their own.
// @Summary List Invoices
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Param startDate query string false "YYYY-MM-DD or RFC 3339"
// @Param endDate query string false "YYYY-MM-DD or RFC 3339"
// @Param status query string false "DRAFT, VALIDATED or CANCELLED"
// @Param clientId query string false "Client ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.APIResponse
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	actor, ok := GetActor(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	filter, err := bindInvoiceFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, "Invoices retrieved successfully", result)
}

func (h *InvoiceHandler) Get(c *gin.Context) {
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

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Invoice retrieved successfully", invoice)
}

// Validate moves a DRAFT invoice to VALIDATED and consumes product stock.
// @Summary Validate Invoice
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /invoices/{id}/validate [post]
func (h *InvoiceHandler) Validate(c *gin.Context) {
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

	invoice, err := h.invoiceService.ValidateInvoice(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Invoice validated successfully", invoice)
}

// Export streams the filtered invoices as an Excel workbook.
func (h *InvoiceHandler) Export(c *gin.Context) {
	actor, ok := GetActor(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	filter, err := bindInvoiceFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	buf, err := h.exportService.ExportInvoices(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("invoices-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func bindInvoiceFilter(c *gin.Context) (service.InvoiceFilter, error) {
	var req request.InvoiceFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return service.InvoiceFilter{}, apperror.NewBadRequestError("Invalid query parameters: " + err.Error())
	}

	from, to, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return service.InvoiceFilter{}, err
	}
	clientID, err := parseOptionalID("clientId", req.ClientID)
	if err != nil {
		return service.InvoiceFilter{}, err
	}

	filter := service.InvoiceFilter{
		Pagination: pagination.Params{Page: req.Page, Limit: req.Limit},
		ClientID:   clientID,
		StartDate:  from,
		EndDate:    to,
	}
	if req.Status != "" {
		status := enum.InvoiceStatus(req.Status)
		filter.Status = &status
	}
	return filter, nil
}
