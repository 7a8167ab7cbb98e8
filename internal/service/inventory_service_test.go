package service

import (
	"context"
	"testing"

	"backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveNeverDrivesStockNegative(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	ctx := context.Background()
	dist := createTestDistributor(t, db)
	product := createTestProduct(t, db, dist.ID, 3, "9.99")

	updated, err := e.inventory.Reserve(ctx, product.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)

	_, err = e.inventory.Reserve(ctx, product.ID, 1)
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 0, e.reloadStock(t, db, product.ID))
}

func TestReleaseHasNoUpperBound(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	dist := createTestDistributor(t, db)
	product := createTestProduct(t, db, dist.ID, 0, "9.99")

	updated, err := e.inventory.Release(context.Background(), product.ID, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1000, updated.Stock)
}

func TestReserveAndReleaseRejectNonPositiveQuantities(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	ctx := context.Background()
	dist := createTestDistributor(t, db)
	product := createTestProduct(t, db, dist.ID, 5, "9.99")

	_, err := e.inventory.Reserve(ctx, product.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = e.inventory.Release(ctx, product.ID, -1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecordMovementRestockAddsStock(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	dist := createTestDistributor(t, db)
	product := createTestProduct(t, db, dist.ID, 5, "9.99")

	movement, err := e.inventory.RecordMovement(context.Background(), RecordMovementRequest{
		ProductID: product.ID.String(),
		Action:    model.StockActionRestock,
		Quantity:  7,
		Note:      "weekly delivery",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StockActionRestock, movement.Action)
	assert.Equal(t, 12, movement.StockAfter)
	assert.Equal(t, 12, e.reloadStock(t, db, product.ID))

	var count int64
	require.NoError(t, db.Model(&model.StockMovement{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecordMovementSaleDeductsStock(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	dist := createTestDistributor(t, db)
	product := createTestProduct(t, db, dist.ID, 5, "9.99")

	movement, err := e.inventory.RecordMovement(context.Background(), RecordMovementRequest{
		ProductID: product.ID.String(),
		Action:    model.StockActionSale,
		Quantity:  2,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, movement.StockAfter)
	assert.Equal(t, 3, e.reloadStock(t, db, product.ID))
}

func TestRecordMovementFailureWritesNoAuditRow(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	dist := createTestDistributor(t, db)
	product := createTestProduct(t, db, dist.ID, 5, "9.99")

	_, err := e.inventory.RecordMovement(context.Background(), RecordMovementRequest{
		ProductID: product.ID.String(),
		Action:    model.StockActionSale,
		Quantity:  6,
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 5, e.reloadStock(t, db, product.ID))

	var count int64
	require.NoError(t, db.Model(&model.StockMovement{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRecordMovementRejectsUnknownAction(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	dist := createTestDistributor(t, db)
	product := createTestProduct(t, db, dist.ID, 5, "9.99")

	_, err := e.inventory.RecordMovement(context.Background(), RecordMovementRequest{
		ProductID: product.ID.String(),
		Action:    "teleport",
		Quantity:  1,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListMovementsFiltersByAction(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	ctx := context.Background()
	dist := createTestDistributor(t, db)
	product := createTestProduct(t, db, dist.ID, 10, "9.99")

	for _, req := range []RecordMovementRequest{
		{ProductID: product.ID.String(), Action: model.StockActionRestock, Quantity: 5},
		{ProductID: product.ID.String(), Action: model.StockActionSale, Quantity: 2},
		{ProductID: product.ID.String(), Action: model.StockActionSale, Quantity: 1},
	} {
		_, err := e.inventory.RecordMovement(ctx, req)
		require.NoError(t, err)
	}

	sales, total, err := e.inventory.ListMovements(ctx, MovementListFilter{
		ProductID: product.ID.String(),
		Action:    model.StockActionSale,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, sales, 2)

	all, total, err := e.inventory.ListMovements(ctx, MovementListFilter{ProductID: product.ID.String()})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)
}
