package service

import (
	"fmt"
	"testing"

	"backend/internal/database"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a named in-memory database so every connection in the pool
// sees the same data.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createTestDistributor(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()

	user := &model.User{
		Username: "dist-" + uuid.NewString()[:8],
		Email:    uuid.NewString()[:8] + "@example.com",
		Password: "hashed",
		Role:     model.RoleDistributor,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestProduct(t *testing.T, db *gorm.DB, distributorID uuid.UUID, stock int, price string) *model.Product {
	t.Helper()

	category := &model.ProductCategory{Name: "cat-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(category).Error)

	product := &model.Product{
		Name:          "product-" + uuid.NewString()[:8],
		Price:         decimal.RequireFromString(price),
		Stock:         stock,
		CategoryID:    category.ID,
		DistributorID: distributorID,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// orderEngine bundles the services wired against one test database.
type orderEngine struct {
	orders    OrderService
	inventory InventoryService
	invoices  InvoiceService

	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	salesRepo   repository.SalesRepository
}

func newOrderEngine(t *testing.T, db *gorm.DB) *orderEngine {
	t.Helper()

	txManager := repository.NewTransactionManager(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	stockRepo := repository.NewStockMovementRepository(db)
	salesRepo := repository.NewSalesRepository(db)

	inventory := NewInventoryService(productRepo, stockRepo, txManager, nil)
	invoices := NewInvoiceService(invoiceRepo, orderRepo)
	orders := NewOrderService(orderRepo, productRepo, salesRepo, inventory, invoices, txManager, nil)

	return &orderEngine{
		orders:      orders,
		inventory:   inventory,
		invoices:    invoices,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		salesRepo:   salesRepo,
	}
}

func (e *orderEngine) reloadStock(t *testing.T, db *gorm.DB, productID uuid.UUID) int {
	t.Helper()

	var product model.Product
	require.NoError(t, db.First(&product, "id = ?", productID).Error)
	return product.Stock
}
