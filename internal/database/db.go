package database

import (
	"log"

	"backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// Migrate runs AutoMigrate for every core model. Exposed separately so the
// service tests can run it against their own databases.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.ProductCategory{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.Invoice{},
		&model.StockMovement{},
		&model.Cart{},
		&model.CartItem{},
		&model.Message{},
		&model.FileUpload{},
		&model.PaymentTransaction{},
		&model.SalesRecord{},
	)
}
