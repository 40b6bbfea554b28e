package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/beautypos-api/internal/application/service"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"github.com/sangkips/beautypos-api/internal/domain/repository"
	"github.com/sangkips/beautypos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/beautypos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/beautypos-api/pkg/pagination"
)

// ServiceHandler handles the billable service catalog
type ServiceHandler struct {
	catalog *service.ServiceCatalog
}

// NewServiceHandler creates a new service catalog handler
func NewServiceHandler(catalog *service.ServiceCatalog) *ServiceHandler {
	return &ServiceHandler{catalog: catalog}
}

// List handles listing services
// @Summary List Services
// @Tags services
// @Security BearerAuth
// @Produce json
// @Param search query string false "Name search"
// @Param billing_type query string false "FLAT, PER_MINUTE or PER_HOUR"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.APIResponse
// @Router /services [get]
func (h *ServiceHandler) List(c *gin.Context) {
	var filter request.ServiceFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	params := &repository.ServiceFilterParams{
		Pagination: pagination.Params{Page: filter.Page, Limit: filter.Limit},
		Search:     filter.Search,
		IsActive:   filter.IsActive,
	}
	if filter.BillingType != "" {
		bt := enum.BillingType(filter.BillingType)
		params.BillingType = &bt
	}

	result, err := h.catalog.ListServices(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Services retrieved successfully", result)
}

func (h *ServiceHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	svc, err := h.catalog.GetService(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Service retrieved successfully", svc)
}

func (h *ServiceHandler) Create(c *gin.Context) {
	var req request.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	svc, err := h.catalog.CreateService(c.Request.Context(), toServiceInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Service created successfully", svc)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	svc, err := h.catalog.UpdateService(c.Request.Context(), id, toServiceInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Service updated successfully", svc)
}

func (h *ServiceHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.catalog.DeleteService(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Service deleted successfully", nil)
}

func toServiceInput(req *request.ServiceRequest) *service.ServiceInput {
	return &service.ServiceInput{
		Name:        req.Name,
		Description: req.Description,
		BillingType: req.BillingType,
		UnitPrice:   *req.UnitPrice,
		MinDuration: req.MinDuration,
		IsActive:    req.IsActive,
	}
}
