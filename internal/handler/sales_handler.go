package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct {
	salesService service.SalesService
	auth         *middleware.AuthMiddleware
}

func NewSalesHandler(salesService service.SalesService, auth *middleware.AuthMiddleware) *SalesHandler {
	return &SalesHandler{salesService: salesService, auth: auth}
}

func (h *SalesHandler) RegisterRoutes(router *gin.RouterGroup) {
	sales := router.Group("/api/sales")
	sales.Use(h.auth.RequireRole(model.RoleDistributor, model.RoleAdmin))
	{
		sales.GET("", h.Summary)
	}
}

// Summary returns the caller's sales totals and records
// @Summary      Sales summary
// @Description  Retrieves total sales, total revenue and the per-day sales records for the caller
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.SalesSummaryResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/sales [get]
func (h *SalesHandler) Summary(c *gin.Context) {
	summary, err := h.salesService.Summary(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		status := statusFromError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
