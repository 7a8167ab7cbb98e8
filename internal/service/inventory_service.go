package service

import (
	"context"
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
type RecordMovementRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Action    string `json:"action" binding:"required,oneof=restock sale return adjustment"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Note      string `json:"note"`
}

type MovementResponse struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Action     string `json:"action"`
	Quantity   int    `json:"quantity"`
	Note       string `json:"note"`
	StockAfter int    `json:"stock_after,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type MovementListFilter struct {
	ProductID string
	Action    string
	Page      int
	Limit     int
}

// Websocket payload for stock updates
type StockEvent struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// InventoryService is the inventory ledger: the only component that mutates
// product stock. Reserve and Release expect to run inside the caller's
// transaction context; RecordMovement opens its own.
type InventoryService interface {
	Reserve(ctx context.Context, productID uuid.UUID, quantity int) (*model.Product, error)
	Release(ctx context.Context, productID uuid.UUID, quantity int) (*model.Product, error)
	RecordMovement(ctx context.Context, req RecordMovementRequest) (MovementResponse, error)
	ListMovements(ctx context.Context, filter MovementListFilter) ([]MovementResponse, int64, error)
}

type inventoryService struct {
	productRepo repository.ProductRepository
	stockRepo   repository.StockMovementRepository
	txManager   repository.TransactionManager
	hub         *ws.Hub
}

func NewInventoryService(
	productRepo repository.ProductRepository,
	stockRepo repository.StockMovementRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) InventoryService {
	return &inventoryService{
		productRepo: productRepo,
		stockRepo:   stockRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

// Reserve decrements the product's stock by quantity under a row lock.
// Fails with ErrInsufficientStock when quantity exceeds the current stock;
// in that case nothing is persisted.
func (s *inventoryService) Reserve(ctx context.Context, productID uuid.UUID, quantity int) (*model.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	product, err := s.productRepo.FindByIDForUpdate(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID)
		}
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}

	if product.Stock < quantity {
		return nil, fmt.Errorf("%w: only %d units of %s available", ErrInsufficientStock, product.Stock, product.Name)
	}

	product.Stock -= quantity
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to persist stock: %w", err)
	}

	return product, nil
}

// Release increments the product's stock by quantity. Restocking has no
// upper bound.
func (s *inventoryService) Release(ctx context.Context, productID uuid.UUID, quantity int) (*model.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	product, err := s.productRepo.FindByIDForUpdate(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID)
		}
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}

	product.Stock += quantity
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to persist stock: %w", err)
	}

	return product, nil
}

// RecordMovement applies the stock mutation for the given action and appends
// the audit entry, atomically. On failure no audit entry is written.
func (s *inventoryService) RecordMovement(ctx context.Context, req RecordMovementRequest) (MovementResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return MovementResponse{}, fmt.Errorf("%w: invalid product_id", ErrValidation)
	}

	var movement model.StockMovement
	var stockAfter int

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var product *model.Product
		var opErr error

		switch req.Action {
		case model.StockActionRestock:
			product, opErr = s.Release(txCtx, productID, req.Quantity)
		case model.StockActionSale, model.StockActionReturn, model.StockActionAdjustment:
			product, opErr = s.Reserve(txCtx, productID, req.Quantity)
		default:
			return fmt.Errorf("%w: unknown action %q", ErrValidation, req.Action)
		}
		if opErr != nil {
			return opErr
		}
		stockAfter = product.Stock

		movement = model.StockMovement{
			ProductID: productID,
			Action:    req.Action,
			Quantity:  req.Quantity,
			Note:      req.Note,
		}
		if err := s.stockRepo.Create(txCtx, &movement); err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}

		return nil
	})

	if err != nil {
		return MovementResponse{}, err
	}

	s.broadcastStockUpdate(req.ProductID, req.Action, stockAfter)

	return toMovementResponse(movement, stockAfter), nil
}

func (s *inventoryService) ListMovements(ctx context.Context, filter MovementListFilter) ([]MovementResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.MovementFilter{
		Action: filter.Action,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.ProductID != "" {
		pid, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid product_id", ErrValidation)
		}
		repoFilter.ProductID = &pid
	}

	movements, total, err := s.stockRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		res = append(res, toMovementResponse(m, 0))
	}
	return res, total, nil
}

func (s *inventoryService) broadcastStockUpdate(productID, action string, stockAfter int) {
	if s.hub == nil {
		return
	}
	payload, _ := json.Marshal(StockEvent{
		Event: "stock.updated",
		Data: map[string]interface{}{
			"product_id": productID,
			"action":     action,
			"stock":      stockAfter,
		},
	})
	s.hub.Broadcast <- payload
}

func toMovementResponse(m model.StockMovement, stockAfter int) MovementResponse {
	res := MovementResponse{
		ID:         m.ID.String(),
		ProductID:  m.ProductID.String(),
		Action:     m.Action,
		Quantity:   m.Quantity,
		Note:       m.Note,
		StockAfter: stockAfter,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
	}
	return res
}
