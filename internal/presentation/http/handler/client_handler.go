package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/beautypos-api/internal/application/service"
	"github.com/sangkips/beautypos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/beautypos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/beautypos-api/pkg/pagination"
)

// ClientHandler handles client-related HTTP requests
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// List handles listing clients ordered by last name
// @Summary List Clients
// @Tags clients
// @Security BearerAuth
// @Produce json
// @Param search query string false "Name, phone or email"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.APIResponse
// @Router /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	var params pagination.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.clientService.ListClients(c.Request.Context(), params, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Clients retrieved successfully", result)
}

// Get returns a client with its invoices; sellers only get their own invoices.
func (h *ClientHandler) Get(c *gin.Context) {
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

	client, err := h.clientService.GetClient(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Client retrieved successfully", client)
}

func (h *ClientHandler) Create(c *gin.Context) {
	var req request.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), toClientInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Client created successfully", client)
}

func (h *ClientHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), id, toClientInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Client updated successfully", client)
}

func (h *ClientHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.clientService.DeleteClient(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Client deleted successfully", nil)
}

func toClientInput(req *request.ClientRequest) *service.ClientInput {
	return &service.ClientInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Notes:     req.Notes,
	}
}
