package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DTOs
type CreateOrderRequest struct {
	CustomerName      string `json:"customer_name" binding:"required"`
	CustomerEmail     string `json:"customer_email" binding:"required,email"`
	TrackingNumber    string `json:"tracking_number"`
	EstimatedDelivery string `json:"estimated_delivery"` // YYYY-MM-DD, optional
}

type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type MarkPaidRequest struct {
	PaymentMethod string `json:"payment_method" binding:"omitempty,oneof=card bank_transfer paystack paypal"`
}

type AdvanceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type OrderItemResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type OrderResponse struct {
	ID                string              `json:"id"`
	CustomerName      string              `json:"customer_name"`
	CustomerEmail     string              `json:"customer_email"`
	Status            string              `json:"status"`
	PaymentStatus     string              `json:"payment_status"`
	TrackingNumber    string              `json:"tracking_number"`
	EstimatedDelivery *string             `json:"estimated_delivery"`
	Items             []OrderItemResponse `json:"items"`
	TotalAmount       string              `json:"total_amount"`
	Invoice           *InvoiceResponse    `json:"invoice,omitempty"`
	CreatedAt         string              `json:"created_at"`
	UpdatedAt         string              `json:"updated_at"`
}

type OrderListFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// Websocket payload for order lifecycle events
type OrderEvent struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// allowedNext is the only forward path: pending -> processing -> shipped ->
// delivered, each one-way. Cancellation goes through Cancel, never through
// AdvanceStatus.
var allowedNext = map[string]string{
	model.OrderStatusPending:    model.OrderStatusProcessing,
	model.OrderStatusProcessing: model.OrderStatusShipped,
	model.OrderStatusShipped:    model.OrderStatusDelivered,
}

// OrderService is the order lifecycle and invoicing engine: the single
// writer of order, invoice and product-stock state. Every mutation path
// (handlers, payment verification) routes through it.
type OrderService interface {
	CreateOrder(ctx context.Context, distributorID uuid.UUID, req CreateOrderRequest) (OrderResponse, error)
	GetOrder(ctx context.Context, distributorID uuid.UUID, orderID string) (OrderResponse, error)
	ListOrders(ctx context.Context, distributorID uuid.UUID, filter OrderListFilter) ([]OrderResponse, int64, error)
	AddItem(ctx context.Context, distributorID uuid.UUID, orderID string, req AddItemRequest) (OrderResponse, error)
	MarkPaid(ctx context.Context, distributorID uuid.UUID, orderID string, req MarkPaidRequest) (OrderResponse, error)
	Cancel(ctx context.Context, distributorID uuid.UUID, orderID string) (OrderResponse, error)
	AdvanceStatus(ctx context.Context, distributorID uuid.UUID, orderID string, req AdvanceStatusRequest) (OrderResponse, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	salesRepo   repository.SalesRepository
	inventory   InventoryService
	invoices    InvoiceService
	txManager   repository.TransactionManager
	hub         *ws.Hub
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	salesRepo repository.SalesRepository,
	inventory InventoryService,
	invoices InvoiceService,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		salesRepo:   salesRepo,
		inventory:   inventory,
		invoices:    invoices,
		txManager:   txManager,
		hub:         hub,
	}
}

// CreateOrder starts an order at (pending, unpaid). The tracking number is
// assigned here, once, if the caller did not supply one; it is immutable
// afterwards.
func (s *orderService) CreateOrder(ctx context.Context, distributorID uuid.UUID, req CreateOrderRequest) (OrderResponse, error) {
	order := model.Order{
		DistributorID:  distributorID,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		Status:         model.OrderStatusPending,
		PaymentStatus:  model.PaymentStatusUnpaid,
		TrackingNumber: req.TrackingNumber,
	}

	if order.TrackingNumber == "" {
		order.TrackingNumber = generateTrackingNumber()
	}

	if req.EstimatedDelivery != "" {
		estimated, err := time.Parse("2006-01-02", req.EstimatedDelivery)
		if err != nil {
			return OrderResponse{}, fmt.Errorf("%w: estimated_delivery must be YYYY-MM-DD", ErrValidation)
		}
		order.EstimatedDelivery = &estimated
	}

	if err := s.orderRepo.Create(ctx, &order); err != nil {
		return OrderResponse{}, fmt.Errorf("failed to create order: %w", err)
	}

	return toOrderResponse(order), nil
}

func (s *orderService) GetOrder(ctx context.Context, distributorID uuid.UUID, orderID string) (OrderResponse, error) {
	order, err := s.findOwnedOrder(ctx, distributorID, orderID)
	if err != nil {
		return OrderResponse{}, err
	}
	return toOrderResponse(*order), nil
}

func (s *orderService) ListOrders(ctx context.Context, distributorID uuid.UUID, filter OrderListFilter) ([]OrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	orders, total, err := s.orderRepo.List(ctx, repository.OrderFilter{
		DistributorID: distributorID,
		Status:        filter.Status,
		Search:        filter.Search,
		Page:          filter.Page,
		Limit:         filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	res := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		res = append(res, toOrderResponse(o))
	}
	return res, total, nil
}

// AddItem reserves stock and appends a line item, all-or-nothing. The item
// snapshots the product's current unit price; later price changes do not
// touch existing items. Repeated calls with the same arguments add distinct
// items and deduct stock each time.
func (s *orderService) AddItem(ctx context.Context, distributorID uuid.UUID, orderID string, req AddItemRequest) (OrderResponse, error) {
	if req.Quantity <= 0 {
		return OrderResponse{}, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("%w: invalid product_id", ErrValidation)
	}

	var updated *model.Order
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.lockOwnedOrder(txCtx, distributorID, orderID)
		if err != nil {
			return err
		}

		product, err := s.inventory.Reserve(txCtx, productID, req.Quantity)
		if err != nil {
			return err
		}

		item := &model.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  req.Quantity,
			Price:     product.Price,
		}
		if err := s.orderRepo.CreateItem(txCtx, item); err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}

		order.Items = append(order.Items, *item)
		updated = order
		return nil
	})
	if err != nil {
		return OrderResponse{}, err
	}

	s.broadcastOrderEvent("order.item_added", updated)
	return toOrderResponse(*updated), nil
}

// MarkPaid is the single, idempotent invoice entry point. If the order
// already owns an invoice it is returned unchanged: no duplicate, no
// re-deduction of stock. Stock is not touched here at all; it was reserved
// at AddItem time.
func (s *orderService) MarkPaid(ctx context.Context, distributorID uuid.UUID, orderID string, req MarkPaidRequest) (OrderResponse, error) {
	var updated *model.Order
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.lockOwnedOrder(txCtx, distributorID, orderID)
		if err != nil {
			return err
		}

		if order.Invoice != nil {
			updated = order
			return nil
		}

		order.PaymentStatus = model.PaymentStatusPaid
		if err := s.orderRepo.Save(txCtx, order); err != nil {
			return fmt.Errorf("failed to update payment status: %w", err)
		}

		invoice, err := s.invoices.GenerateForOrder(txCtx, order, req.PaymentMethod)
		if err != nil {
			return err
		}
		order.Invoice = invoice

		record := &model.SalesRecord{
			DistributorID: order.DistributorID,
			TotalSales:    invoice.TotalAmount,
			Revenue:       invoice.TotalAmount,
			Date:          time.Now().Truncate(24 * time.Hour),
		}
		if err := s.salesRepo.Create(txCtx, record); err != nil {
			return fmt.Errorf("failed to record sale: %w", err)
		}

		updated = order
		return nil
	})
	if err != nil {
		return OrderResponse{}, err
	}

	s.broadcastOrderEvent("order.paid", updated)
	return toOrderResponse(*updated), nil
}

// Cancel releases every reserved item quantity back to stock and sets the
// status to cancelled, atomically. Valid from any status except delivered
// and cancelled. Payment status and any existing invoice are left alone;
// refunds are out of scope.
func (s *orderService) Cancel(ctx context.Context, distributorID uuid.UUID, orderID string) (OrderResponse, error) {
	var updated *model.Order
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.lockOwnedOrder(txCtx, distributorID, orderID)
		if err != nil {
			return err
		}

		if order.Status == model.OrderStatusDelivered || order.Status == model.OrderStatusCancelled {
			return fmt.Errorf("%w: cannot cancel a %s order", ErrInvalidTransition, order.Status)
		}

		for _, item := range order.Items {
			if _, err := s.inventory.Release(txCtx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		order.Status = model.OrderStatusCancelled
		if err := s.orderRepo.Save(txCtx, order); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		updated = order
		return nil
	})
	if err != nil {
		return OrderResponse{}, err
	}

	s.broadcastOrderEvent("order.cancelled", updated)
	return toOrderResponse(*updated), nil
}

// AdvanceStatus moves the order one step along the forward path. It has no
// side effects beyond the status field and the updated timestamp.
func (s *orderService) AdvanceStatus(ctx context.Context, distributorID uuid.UUID, orderID string, req AdvanceStatusRequest) (OrderResponse, error) {
	if req.Status == model.OrderStatusCancelled {
		return OrderResponse{}, fmt.Errorf("%w: cancellation must go through the cancel operation", ErrInvalidTransition)
	}

	var updated *model.Order
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.lockOwnedOrder(txCtx, distributorID, orderID)
		if err != nil {
			return err
		}

		if allowedNext[order.Status] != req.Status {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, req.Status)
		}

		order.Status = req.Status
		if err := s.orderRepo.Save(txCtx, order); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		updated = order
		return nil
	})
	if err != nil {
		return OrderResponse{}, err
	}

	s.broadcastOrderEvent("order.status_changed", updated)
	return toOrderResponse(*updated), nil
}

// --- Helpers ---

func (s *orderService) findOwnedOrder(ctx context.Context, distributorID uuid.UUID, orderID string) (*model.Order, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order id", ErrValidation)
	}

	order, err := s.orderRepo.FindByIDWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if order.DistributorID != distributorID {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	return order, nil
}

func (s *orderService) lockOwnedOrder(ctx context.Context, distributorID uuid.UUID, orderID string) (*model.Order, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order id", ErrValidation)
	}

	order, err := s.orderRepo.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	if order.DistributorID != distributorID {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	return order, nil
}

func (s *orderService) broadcastOrderEvent(event string, order *model.Order) {
	if s.hub == nil || order == nil {
		return
	}
	payload, _ := json.Marshal(OrderEvent{
		Event: event,
		Data: map[string]interface{}{
			"order_id":       order.ID.String(),
			"status":         order.Status,
			"payment_status": order.PaymentStatus,
		},
	})
	s.hub.Broadcast <- payload
}

const trackingCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateTrackingNumber returns a 12-character upper-case code.
func generateTrackingNumber() string {
	buf := make([]byte, 12)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = trackingCharset[int(b)%len(trackingCharset)]
	}
	return string(buf)
}

func toOrderResponse(order model.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:        item.ID.String(),
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			Price:     item.Price.StringFixed(2),
		})
	}

	res := OrderResponse{
		ID:             order.ID.String(),
		CustomerName:   order.CustomerName,
		CustomerEmail:  order.CustomerEmail,
		Status:         order.Status,
		PaymentStatus:  order.PaymentStatus,
		TrackingNumber: order.TrackingNumber,
		Items:          items,
		TotalAmount:    order.TotalAmount().StringFixed(2),
		CreatedAt:      order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      order.UpdatedAt.Format(time.RFC3339),
	}

	if order.EstimatedDelivery != nil {
		d := order.EstimatedDelivery.Format("2006-01-02")
		res.EstimatedDelivery = &d
	}
	if order.Invoice != nil {
		inv := toInvoiceResponse(*order.Invoice)
		res.Invoice = &inv
	}
	return res
}
