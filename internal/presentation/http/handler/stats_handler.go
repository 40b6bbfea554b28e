package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/beautypos-api/internal/application/service"
	"github.com/sangkips/beautypos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/beautypos-api/internal/presentation/http/dto/response"
)

// StatsHandler serves sales rollups over validated invoices
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Dashboard returns the figures for the current day, week, month or year
// @Summary Dashboard
// @Tags stats
// @Security BearerAuth
// @Produce json
// @Param period query string false "day, week, month or year" default(day)
// @Success 200 {object} response.APIResponse
// @Router /stats/dashboard [get]
func (h *StatsHandler) Dashboard(c *gin.Context) {
	actor, ok := GetActor(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	period, err := service.ParsePeriod(c.Query("period"))
	if err != nil {
		response.Error(c, err)
		return
	}

	stats, err := h.statsService.Dashboard(c.Request.Context(), actor, period)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Dashboard retrieved successfully", stats)
}

// Summary returns revenue and top sellers over an optional date range
func (h *StatsHandler) Summary(c *gin.Context) {
	actor, ok := GetActor(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.StatsSummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	from, to, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	stats, err := h.statsService.Summary(c.Request.Context(), actor, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Summary retrieved successfully", stats)
}
