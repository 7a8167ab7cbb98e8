package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestCartService(t *testing.T, db *gorm.DB) CartService {
	t.Helper()
	return NewCartService(repository.NewCartRepository(db), repository.NewProductRepository(db))
}

func createTestCustomer(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()

	user := createTestDistributor(t, db)
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", user.ID).Update("role", model.RoleCustomer).Error)
	return user
}

func TestAddItemEnforcesSingleDistributorRule(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCartService(t, db)
	ctx := context.Background()
	customer := createTestCustomer(t, db)
	distA := createTestDistributor(t, db)
	distB := createTestDistributor(t, db)
	productA := createTestProduct(t, db, distA.ID, 10, "5.00")
	productB := createTestProduct(t, db, distB.ID, 10, "5.00")

	cart, err := svc.AddItem(ctx, customer.ID, AddCartItemRequest{ProductID: productA.ID.String(), Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	_, err = svc.AddItem(ctx, customer.ID, AddCartItemRequest{ProductID: productB.ID.String(), Quantity: 1})
	assert.ErrorIs(t, err, ErrValidation)

	// Same distributor is fine
	productA2 := createTestProduct(t, db, distA.ID, 10, "7.00")
	cart, err = svc.AddItem(ctx, customer.ID, AddCartItemRequest{ProductID: productA2.ID.String(), Quantity: 2})
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestAddItemChecksAvailabilityWithoutReserving(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCartService(t, db)
	e := newOrderEngine(t, db)
	ctx := context.Background()
	customer := createTestCustomer(t, db)
	dist := createTestDistributor(t, db)
	product := createTestProduct(t, db, dist.ID, 3, "5.00")

	_, err := svc.AddItem(ctx, customer.ID, AddCartItemRequest{ProductID: product.ID.String(), Quantity: 5})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.AddItem(ctx, customer.ID, AddCartItemRequest{ProductID: product.ID.String(), Quantity: 2})
	require.NoError(t, err)

	// Cart additions never touch stock
	assert.Equal(t, 3, e.reloadStock(t, db, product.ID))
}

func TestRemoveItemIsScopedToTheCallersCart(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCartService(t, db)
	ctx := context.Background()
	customerA := createTestCustomer(t, db)
	customerB := createTestCustomer(t, db)
	dist := createTestDistributor(t, db)
	product := createTestProduct(t, db, dist.ID, 10, "5.00")

	cart, err := svc.AddItem(ctx, customerA.ID, AddCartItemRequest{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	_, err = svc.RemoveItem(ctx, customerB.ID, itemID)
	assert.ErrorIs(t, err, ErrNotFound)

	cart, err = svc.RemoveItem(ctx, customerA.ID, itemID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
