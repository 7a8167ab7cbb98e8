package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	cartService service.CartService
	auth        *middleware.AuthMiddleware
}

func NewCartHandler(cartService service.CartService, auth *middleware.AuthMiddleware) *CartHandler {
	return &CartHandler{cartService: cartService, auth: auth}
}

func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup) {
	cart := router.Group("/api/cart")
	cart.Use(h.auth.RequireRole(model.RoleCustomer))
	{
		cart.GET("", h.GetCart)
		cart.POST("/items", h.AddItem)
		cart.DELETE("/items/:id", h.RemoveItem)
	}
}

// GetCart returns the caller's cart
// @Summary      Get cart
// @Description  Retrieves the caller's cart, creating an empty one on first access
// @Tags         cart
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.CartResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.cartService.GetCart(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		status := statusFromError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cart))
}

// AddItem adds a product to the caller's cart
// @Summary      Add cart item
// @Description  Adds a product to the cart; all items must come from the same distributor
// @Tags         cart
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.AddCartItemRequest  true  "Add Item Payload"
// @Success      200      {object}  response.Response{data=service.CartResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req service.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		status := statusFromError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cart))
}

// RemoveItem removes an item from the caller's cart
// @Summary      Remove cart item
// @Description  Removes one item from the cart by its ID
// @Tags         cart
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Cart Item ID"
// @Success      200  {object}  response.Response{data=service.CartResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	cart, err := h.cartService.RemoveItem(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		status := statusFromError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cart))
}
