package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/beautypos-api/internal/application/service"
	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/repository"
	"github.com/sangkips/beautypos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/beautypos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/beautypos-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List handles listing products. Sellers never see purchase prices.
// @Summary List Products
// @Tags products
// @Security BearerAuth
// @Produce json
// @Param search query string false "Name search"
// @Param category_id query string false "Category ID"
// @Param low_stock query bool false "Only products at or below their alert threshold"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.APIResponse
// @Router /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter request.ProductFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	categoryID, err := parseOptionalID("categoryId", filter.CategoryID)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.productService.ListProducts(c.Request.Context(), &repository.ProductFilterParams{
		Pagination: pagination.Params{Page: filter.Page, Limit: filter.Limit},
		Search:     filter.Search,
		CategoryID: categoryID,
		IsActive:   filter.IsActive,
		LowStock:   filter.LowStock,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Products retrieved successfully", &pagination.PaginatedResult[interface{}]{
		Items:      entity.ProjectProducts(result.Items, GetUserRole(c)),
		Pagination: result.Pagination,
	})
}

// Get handles fetching a single product
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product retrieved successfully", entity.ProjectProduct(product, GetUserRole(c)))
}

// Create handles creating a product. The initial stock is recorded as an IN movement.
// @Summary Create Product
// @Tags products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CreateProductRequest true "Product"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	actor, ok := GetActor(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	purchase := decimal.Zero
	if req.PurchasePrice != nil {
		purchase = *req.PurchasePrice
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), actor, &service.CreateProductInput{
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Description:    req.Description,
		SellingPrice:   *req.SellingPrice,
		PurchasePrice:  purchase,
		InitialStock:   req.Stock,
		AlertThreshold: req.AlertThreshold,
		IsActive:       req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Product created successfully", product)
}

// Update handles a partial product update
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, &service.UpdateProductInput{
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Description:    req.Description,
		SellingPrice:   req.SellingPrice,
		PurchasePrice:  req.PurchasePrice,
		AlertThreshold: req.AlertThreshold,
		IsActive:       req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product updated successfully", product)
}

// Delete handles deleting a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product deleted successfully", nil)
}

// LowStock lists active products at or below their alert threshold
func (h *ProductHandler) LowStock(c *gin.Context) {
	products, err := h.productService.GetLowStockProducts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Low stock products retrieved successfully", entity.ProjectProducts(products, GetUserRole(c)))
}

// AdjustStock handles a manual stock correction
// @Summary Adjust Stock
// @Tags products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body request.AdjustStockRequest true "Signed quantity and reason"
// @Success 200 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /products/{id}/adjust-stock [post]
func (h *ProductHandler) AdjustStock(c *gin.Context) {
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

	var req request.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	product, err := h.productService.AdjustStock(c.Request.Context(), actor, id, &service.AdjustStockInput{
		Quantity: req.Quantity,
		Reason:   req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Stock adjusted successfully", product)
}

// Movements lists the stock movements of a product, newest first
func (h *ProductHandler) Movements(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var params pagination.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.productService.ListMovements(c.Request.Context(), id, params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Stock movements retrieved successfully", result)
}
