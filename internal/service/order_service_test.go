package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestOrder(t *testing.T, e *orderEngine, distributorID uuid.UUID) OrderResponse {
	t.Helper()

	order, err := e.orders.CreateOrder(context.Background(), distributorID, CreateOrderRequest{
		CustomerName:  "Ada Obi",
		CustomerEmail: "ada@example.com",
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrderDefaults(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	dist := createTestDistributor(t, db)

	order := createTestOrder(t, e, dist.ID)

	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, model.PaymentStatusUnpaid, order.PaymentStatus)
	assert.Len(t, order.TrackingNumber, 12)
	assert.Equal(t, "0.00", order.TotalAmount)
	assert.Nil(t, order.Invoice)
}

func TestCreateOrderKeepsSuppliedTrackingNumber(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	dist := createTestDistributor(t, db)

	order, err := e.orders.CreateOrder(context.Background(), dist.ID, CreateOrderRequest{
		CustomerName:  "Ada Obi",
		CustomerEmail: "ada@example.com",
		TrackingNumber: "TRACK123XYZ0",
	})
	require.NoError(t, err)
	assert.Equal(t, "TRACK123XYZ0", order.TrackingNumber)
}

func TestAddItemReservesStockAndSnapshotsPrice(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	ctx := context.Background()
	dist := createTestDistributor(t, db)
	product := createTestProduct(t, db, dist.ID, 10, "17.50")
	order := createTestOrder(t, e, dist.ID)

	updated, err := e.orders.AddItem(ctx, dist.ID, order.ID, AddItemRequest{
		ProductID: product.ID.String(),
		Quantity:  4,
	})
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	assert.Equal(t, "17.50", updated.Items[0].Price)
	assert.Equal(t, "70.00", updated.TotalAmount)
	assert.Equal(t, 6, e.reloadStock(t, db, product.ID))

	// The snapshot survives a later price change
	product.Price = product.Price.Add(product.Price)
	require.NoError(t, db.Save(product).Error)

	reloaded, err := e.orders.GetOrder(ctx, dist.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "17.50", reloaded.Items[0].Price)
}

func TestAddItemInsufficientStockLeavesNothingBehind(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	ctx := context.Background()
	dist := createTestDistributor(t, db)
	product := createTestProduct(t, db, dist.ID, 10, "17.50")
	order := createTestOrder(t, e, dist.ID)

	_, err := e.orders.AddItem(ctx, dist.ID, order.ID, AddItemRequest{
		ProductID: product.ID.String(),
		Quantity:  4,
	})
	require.NoError(t, err)

	_, err = e.orders.AddItem(ctx, dist.ID, order.ID, AddItemRequest{
		ProductID: product.ID.String(),
		Quantity:  7,
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	// Stock and items are untouched by the failed call
	assert.Equal(t, 6, e.reloadStock(t, db, product.ID))
	reloaded, err := e.orders.GetOrder(ctx, dist.ID, order.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Items, 1)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	dist := createTestDistributor(t, db)
	product := createTestProduct(t, db, dist.ID, 10, "5.00")
	order := createTestOrder(t, e, dist.ID)

	for _, qty := range []int{0, -3} {
		_, err := e.orders.AddItem(context.Background(), dist.ID, order.ID, AddItemRequest{
			ProductID: product.ID.String(),
			Quantity:  qty,
		})
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Equal(t, 10, e.reloadStock(t, db, product.ID))
}

func TestAddItemRepeatedCallsAreNotIdempotent(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	ctx := context.Background()
	dist := createTestDistributor(t, db)
	product := createTestProduct(t, db, dist.ID, 10, "5.00")
	order := createTestOrder(t, e, dist.ID)

	req := AddItemRequest{ProductID: product.ID.String(), Quantity: 2}
	_, err := e.orders.AddItem(ctx, dist.ID, order.ID, req)
	require.NoError(t, err)
	updated, err := e.orders.AddItem(ctx, dist.ID, order.ID, req)
	require.NoError(t, err)

	assert.Len(t, updated.Items, 2)
	assert.Equal(t, 6, e.reloadStock(t, db, product.ID))
}

func TestMarkPaidGeneratesInvoiceOnce(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	ctx := context.Background()
	dist := createTestDistributor(t, db)
	product := createTestProduct(t, db, dist.ID, 10, "17.50")
	order := createTestOrder(t, e, dist.ID)

	_, err := e.orders.AddItem(ctx, dist.ID, order.ID, AddItemRequest{
		ProductID: product.ID.String(),
		Quantity:  2,
	})
	require.NoError(t, err)

	paid, err := e.orders.MarkPaid(ctx, dist.ID, order.ID, MarkPaidRequest{PaymentMethod: model.PaymentMethodBankTransfer})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStatusPaid, paid.PaymentStatus)
	require.NotNil(t, paid.Invoice)
	assert.Equal(t, "35.00", paid.Invoice.TotalAmount)
	assert.Equal(t, model.PaymentMethodBankTransfer, paid.Invoice.PaymentMethod)
	assert.Equal(t, model.InvoicePaid, paid.Invoice.PaymentStatus)

	issue, err := time.Parse("2006-01-02", paid.Invoice.IssueDate)
	require.NoError(t, err)
	due, err := time.Parse("2006-01-02", paid.Invoice.DueDate)
	require.NoError(t, err)
	assert.Equal(t, issue.AddDate(0, 0, 30), due)

	// Second call returns the same invoice without side effects
	again, err := e.orders.MarkPaid(ctx, dist.ID, order.ID, MarkPaidRequest{})
	require.NoError(t, err)
	require.NotNil(t, again.Invoice)
	assert.Equal(t, paid.Invoice.ID, again.Invoice.ID)
	assert.Equal(t, paid.Invoice.InvoiceNumber, again.Invoice.InvoiceNumber)

	var invoiceCount int64
	require.NoError(t, db.Model(&model.Invoice{}).Count(&invoiceCount).Error)
	assert.EqualValues(t, 1, invoiceCount)

	// Stock is untouched by payment
	assert.Equal(t, 8, e.reloadStock(t, db, product.ID))
}

func TestMarkPaidRecordsSaleOnce(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	ctx := context.Background()
	dist := createTestDistributor(t, db)
	product := createTestProduct(t, db, dist.ID, 10, "12.00")
	order := createTestOrder(t, e, dist.ID)

	_, err := e.orders.AddItem(ctx, dist.ID, order.ID, AddItemRequest{
		ProductID: product.ID.String(),
		Quantity:  3,
	})
	require.NoError(t, err)

	_, err = e.orders.MarkPaid(ctx, dist.ID, order.ID, MarkPaidRequest{})
	require.NoError(t, err)
	_, err = e.orders.MarkPaid(ctx, dist.ID, order.ID, MarkPaidRequest{})
	require.NoError(t, err)

	records, err := e.salesRepo.ListForDistributor(ctx, dist.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "36.00", records[0].Revenue.StringFixed(2))
}

func TestCancelRestoresStock(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	ctx := context.Background()
	dist := createTestDistributor(t, db)
	product := createTestProduct(t, db, dist.ID, 10, "5.00")
	order := createTestOrder(t, e, dist.ID)

	_, err := e.orders.AddItem(ctx, dist.ID, order.ID, AddItemRequest{
		ProductID: product.ID.String(),
		Quantity:  4,
	})
	require.NoError(t, err)
	require.Equal(t, 6, e.reloadStock(t, db, product.ID))

	cancelled, err := e.orders.Cancel(ctx, dist.ID, order.ID)
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 10, e.reloadStock(t, db, product.ID))
}

func TestCancelRejectedForTerminalStatuses(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	ctx := context.Background()
	dist := createTestDistributor(t, db)

	for _, status := range []string{model.OrderStatusDelivered, model.OrderStatusCancelled} {
		order := createTestOrder(t, e, dist.ID)
		require.NoError(t, db.Model(&model.Order{}).Where("id = ?", order.ID).Update("status", status).Error)

		_, err := e.orders.Cancel(ctx, dist.ID, order.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition, "status %s", status)
	}
}

func TestAdvanceStatusForwardPath(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	ctx := context.Background()
	dist := createTestDistributor(t, db)
	order := createTestOrder(t, e, dist.ID)

	for _, next := range []string{model.OrderStatusProcessing, model.OrderStatusShipped, model.OrderStatusDelivered} {
		updated, err := e.orders.AdvanceStatus(ctx, dist.ID, order.ID, AdvanceStatusRequest{Status: next})
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}
}

func TestAdvanceStatusRejectsSkipsAndBackwardSteps(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	ctx := context.Background()
	dist := createTestDistributor(t, db)
	order := createTestOrder(t, e, dist.ID)

	// pending -> shipped skips processing
	_, err := e.orders.AdvanceStatus(ctx, dist.ID, order.ID, AdvanceStatusRequest{Status: model.OrderStatusShipped})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = e.orders.AdvanceStatus(ctx, dist.ID, order.ID, AdvanceStatusRequest{Status: model.OrderStatusProcessing})
	require.NoError(t, err)

	// processing -> pending is backward
	_, err = e.orders.AdvanceStatus(ctx, dist.ID, order.ID, AdvanceStatusRequest{Status: model.OrderStatusPending})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAdvanceStatusCannotCancel(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	dist := createTestDistributor(t, db)
	order := createTestOrder(t, e, dist.ID)

	_, err := e.orders.AdvanceStatus(context.Background(), dist.ID, order.ID, AdvanceStatusRequest{Status: model.OrderStatusCancelled})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrdersAreScopedToTheirDistributor(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	ctx := context.Background()
	owner := createTestDistributor(t, db)
	other := createTestDistributor(t, db)
	order := createTestOrder(t, e, owner.ID)

	_, err := e.orders.GetOrder(ctx, other.ID, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.orders.Cancel(ctx, other.ID, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
