package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DTOs
type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type CartItemResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

type CartResponse struct {
	ID    string             `json:"id"`
	Items []CartItemResponse `json:"items"`
}

// CartService manages a customer's cart. Adding an item does not reserve
// stock; stock is only checked for availability at add time and reserved
// when the order is built.
type CartService interface {
	GetCart(ctx context.Context, customerID uuid.UUID) (CartResponse, error)
	AddItem(ctx context.Context, customerID uuid.UUID, req AddCartItemRequest) (CartResponse, error)
	RemoveItem(ctx context.Context, customerID uuid.UUID, itemID string) (CartResponse, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo}
}

func (s *cartService) GetCart(ctx context.Context, customerID uuid.UUID) (CartResponse, error) {
	cart, err := s.findOrCreateCart(ctx, customerID)
	if err != nil {
		return CartResponse{}, err
	}
	return toCartResponse(*cart), nil
}

// AddItem enforces the single-distributor rule: a cart may only hold
// products from one distributor at a time.
func (s *cartService) AddItem(ctx context.Context, customerID uuid.UUID, req AddCartItemRequest) (CartResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return CartResponse{}, fmt.Errorf("%w: invalid product_id", ErrValidation)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CartResponse{}, fmt.Errorf("%w: product %s", ErrNotFound, req.ProductID)
		}
		return CartResponse{}, fmt.Errorf("database error: %w", err)
	}

	if product.Stock < req.Quantity {
		return CartResponse{}, fmt.Errorf("%w: only %d units of %s available", ErrInsufficientStock, product.Stock, product.Name)
	}

	cart, err := s.findOrCreateCart(ctx, customerID)
	if err != nil {
		return CartResponse{}, err
	}

	for _, item := range cart.Items {
		if item.Product != nil && item.Product.DistributorID != product.DistributorID {
			return CartResponse{}, fmt.Errorf("%w: cart items must all come from the same distributor", ErrValidation)
		}
	}

	item := &model.CartItem{
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  req.Quantity,
	}
	if err := s.cartRepo.CreateItem(ctx, item); err != nil {
		return CartResponse{}, fmt.Errorf("failed to add cart item: %w", err)
	}

	reloaded, err := s.cartRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return CartResponse{}, fmt.Errorf("failed to reload cart: %w", err)
	}
	return toCartResponse(*reloaded), nil
}

func (s *cartService) RemoveItem(ctx context.Context, customerID uuid.UUID, itemID string) (CartResponse, error) {
	id, err := uuid.Parse(itemID)
	if err != nil {
		return CartResponse{}, fmt.Errorf("%w: invalid cart item id", ErrValidation)
	}

	cart, err := s.findOrCreateCart(ctx, customerID)
	if err != nil {
		return CartResponse{}, err
	}

	owned := false
	for _, item := range cart.Items {
		if item.ID == id {
			owned = true
			break
		}
	}
	if !owned {
		return CartResponse{}, fmt.Errorf("%w: cart item %s", ErrNotFound, itemID)
	}

	if err := s.cartRepo.DeleteItem(ctx, id); err != nil {
		return CartResponse{}, fmt.Errorf("failed to remove cart item: %w", err)
	}

	reloaded, err := s.cartRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return CartResponse{}, fmt.Errorf("failed to reload cart: %w", err)
	}
	return toCartResponse(*reloaded), nil
}

func (s *cartService) findOrCreateCart(ctx context.Context, customerID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.FindByCustomer(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	created := &model.Cart{CustomerID: customerID}
	if err := s.cartRepo.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return created, nil
}

func toCartResponse(cart model.Cart) CartResponse {
	items := make([]CartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		res := CartItemResponse{
			ID:        item.ID.String(),
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			res.ProductName = item.Product.Name
		}
		items = append(items, res)
	}
	return CartResponse{
		ID:    cart.ID.String(),
		Items: items,
	}
}
