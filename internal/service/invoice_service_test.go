package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateForOrderComputesTotalFromItems(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	ctx := context.Background()
	dist := createTestDistributor(t, db)
	p1 := createTestProduct(t, db, dist.ID, 10, "17.50")
	p2 := createTestProduct(t, db, dist.ID, 10, "4.25")
	order := createTestOrder(t, e, dist.ID)

	_, err := e.orders.AddItem(ctx, dist.ID, order.ID, AddItemRequest{ProductID: p1.ID.String(), Quantity: 1})
	require.NoError(t, err)
	_, err = e.orders.AddItem(ctx, dist.ID, order.ID, AddItemRequest{ProductID: p2.ID.String(), Quantity: 2})
	require.NoError(t, err)

	paid, err := e.orders.MarkPaid(ctx, dist.ID, order.ID, MarkPaidRequest{})
	require.NoError(t, err)

	require.NotNil(t, paid.Invoice)
	assert.Equal(t, "26.00", paid.Invoice.TotalAmount)
	assert.Equal(t, model.PaymentMethodCard, paid.Invoice.PaymentMethod)
}

func TestGenerateForOrderRejectsDuplicate(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	ctx := context.Background()
	dist := createTestDistributor(t, db)
	order := createTestOrder(t, e, dist.ID)

	var stored model.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)

	_, err := e.invoices.GenerateForOrder(ctx, &stored, "")
	require.NoError(t, err)

	_, err = e.invoices.GenerateForOrder(ctx, &stored, "")
	assert.ErrorIs(t, err, ErrDuplicateInvoice)

	var count int64
	require.NoError(t, db.Model(&model.Invoice{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestInvoiceNumbersAreDatePrefixedAndSequential(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	ctx := context.Background()
	dist := createTestDistributor(t, db)

	prefix := "INV-" + time.Now().Format("20060102") + "-"
	for i := 1; i <= 3; i++ {
		order := createTestOrder(t, e, dist.ID)
		var stored model.Order
		require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)

		invoice, err := e.invoices.GenerateForOrder(ctx, &stored, "")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%s%05d", prefix, i), invoice.InvoiceNumber)
	}
}

func TestInvoicesAreScopedToTheirDistributor(t *testing.T) {
	db := newTestDB(t)
	e := newOrderEngine(t, db)
	ctx := context.Background()
	owner := createTestDistributor(t, db)
	other := createTestDistributor(t, db)
	product := createTestProduct(t, db, owner.ID, 10, "10.00")
	order := createTestOrder(t, e, owner.ID)

	_, err := e.orders.AddItem(ctx, owner.ID, order.ID, AddItemRequest{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)
	paid, err := e.orders.MarkPaid(ctx, owner.ID, order.ID, MarkPaidRequest{})
	require.NoError(t, err)
	require.NotNil(t, paid.Invoice)

	_, err = e.invoices.GetInvoice(ctx, other.ID, paid.Invoice.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := e.invoices.GetInvoice(ctx, owner.ID, paid.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, paid.Invoice.InvoiceNumber, got.InvoiceNumber)

	ownerList, total, err := e.invoices.ListInvoices(ctx, owner.ID, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, ownerList, 1)

	otherList, total, err := e.invoices.ListInvoices(ctx, other.ID, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, otherList)
}
