package handler

import (
	"io"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService service.PaymentService
	auth           *middleware.AuthMiddleware
}

func NewPaymentHandler(paymentService service.PaymentService, auth *middleware.AuthMiddleware) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, auth: auth}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/api/payments")
	{
		authed := payments.Group("")
		authed.Use(h.auth.RequireRole(model.RoleCustomer, model.RoleDistributor, model.RoleAdmin))
		{
			authed.POST("/paystack/init", h.Initialize)
			authed.GET("/paystack/verify/:reference", h.Verify)
			authed.GET("/transactions", h.ListTransactions)
		}

		// Authenticated by signature, not by JWT
		payments.POST("/paystack/webhook", h.Webhook)
	}
}

// Initialize starts a Paystack checkout
// @Summary      Initialize payment
// @Description  Creates a pending transaction and returns the hosted checkout URL
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.InitPaymentRequest  true  "Init Payment Payload"
// @Success      200      {object}  response.Response{data=service.InitPaymentResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/payments/paystack/init [post]
func (h *PaymentHandler) Initialize(c *gin.Context) {
	var req service.InitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	res, err := h.paymentService.Initialize(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		status := statusFromError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Verify checks a transaction's settled state with the gateway
// @Summary      Verify payment
// @Description  Verifies a transaction by reference; a settled order-linked transaction marks the order paid
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        reference  path      string  true  "Transaction Reference"
// @Success      200        {object}  response.Response{data=service.TransactionResponse}
// @Failure      404        {object}  response.Response
// @Router       /api/payments/paystack/verify/{reference} [get]
func (h *PaymentHandler) Verify(c *gin.Context) {
	res, err := h.paymentService.Verify(c.Request.Context(), middleware.UserID(c), c.Param("reference"))
	if err != nil {
		status := statusFromError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Webhook receives signed gateway notifications
// @Summary      Paystack webhook
// @Description  Processes signed Paystack event notifications; only charge.success is acted on
// @Tags         payments
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/payments/paystack/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to read webhook body"))
		return
	}

	signature := c.GetHeader("x-paystack-signature")
	if err := h.paymentService.HandleWebhook(c.Request.Context(), body, signature); err != nil {
		status := statusFromError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "ok"}))
}

// ListTransactions returns the caller's payment transactions
// @Summary      List transactions
// @Description  Retrieves a paginated list of the caller's payment transactions
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.PaginatedResponse{data=[]service.TransactionResponse}
// @Failure      500    {object}  response.Response
// @Router       /api/payments/transactions [get]
func (h *PaymentHandler) ListTransactions(c *gin.Context) {
	params := pagination.Parse(c)

	txs, total, err := h.paymentService.ListTransactions(c.Request.Context(), middleware.UserID(c), params.Page, params.Limit)
	if err != nil {
		status := statusFromError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, txs, params.Page, params.Limit, total))
}
