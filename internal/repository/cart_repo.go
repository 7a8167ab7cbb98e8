package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartRepository interface {
	Create(ctx context.Context, cart *model.Cart) error
	FindByCustomer(ctx context.Context, customerID uuid.UUID) (*model.Cart, error)
	CreateItem(ctx context.Context, item *model.CartItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(ctx context.Context, cart *model.Cart) error {
	return GetDB(ctx, r.db).Create(cart).Error
}

func (r *cartRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*model.Cart, error) {
	var cart model.Cart
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Items.Product").
		First(&cart, "customer_id = ?", customerID).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) CreateItem(ctx context.Context, item *model.CartItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *cartRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.CartItem{}).Error
}

func (r *cartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error
}
