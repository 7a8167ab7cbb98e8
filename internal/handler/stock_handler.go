package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type StockHandler struct {
	inventoryService service.InventoryService
	auth             *middleware.AuthMiddleware
}

func NewStockHandler(inventoryService service.InventoryService, auth *middleware.AuthMiddleware) *StockHandler {
	return &StockHandler{inventoryService: inventoryService, auth: auth}
}

func (h *StockHandler) RegisterRoutes(router *gin.RouterGroup) {
	stock := router.Group("/api/stock")
	stock.Use(h.auth.RequireRole(model.RoleDistributor, model.RoleStaff, model.RoleAdmin))
	{
		stock.POST("/movements", h.RecordMovement)
		stock.GET("/movements", h.ListMovements)
	}
}

// RecordMovement applies a stock mutation and appends its audit entry
// @Summary      Record stock movement
// @Description  Applies a restock, sale, return or adjustment to a product's stock and records the movement
// @Tags         stock
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RecordMovementRequest  true  "Movement Payload"
// @Success      201      {object}  response.Response{data=service.MovementResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/stock/movements [post]
func (h *StockHandler) RecordMovement(c *gin.Context) {
	var req service.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	movement, err := h.inventoryService.RecordMovement(c.Request.Context(), req)
	if err != nil {
		status := statusFromError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, movement))
}

// ListMovements returns a paginated list of stock movements
// @Summary      List stock movements
// @Description  Retrieves a paginated list of stock movements, optionally filtered by product or action
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        product  query     string  false  "Filter by product ID"
// @Param        action   query     string  false  "Filter by action (restock, sale, return, adjustment)"
// @Param        page     query     int     false  "Page number (default 1)"
// @Param        limit    query     int     false  "Number of items per page (default 20)"
// @Success      200      {object}  response.PaginatedResponse{data=[]service.MovementResponse}
// @Failure      500      {object}  response.Response
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *gin.Context) {
	params := pagination.Parse(c)

	movements, total, err := h.inventoryService.ListMovements(c.Request.Context(), service.MovementListFilter{
		ProductID: c.Query("product"),
		Action:    c.Query("action"),
		Page:      params.Page,
		Limit:     params.Limit,
	})
	if err != nil {
		status := statusFromError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, movements, params.Page, params.Limit, total))
}
