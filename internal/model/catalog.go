package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductCategory groups products for browsing and filtering
type ProductCategory struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *ProductCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Product represents an item sold by a distributor. Stock is only ever
// mutated through the inventory ledger.
type Product struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string           `gorm:"type:varchar(255);not null" json:"name"`
	Description   string           `gorm:"type:text" json:"description"`
	Price         decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	Discount      decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:0" json:"discount"` // Discount in percentage (0-100)
	Stock         int              `gorm:"type:int;not null;default:0" json:"stock"`
	CategoryID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"category_id"`
	Category      *ProductCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	DistributorID uuid.UUID        `gorm:"type:uuid;not null;index" json:"distributor_id"`
	Distributor   *User            `gorm:"foreignKey:DistributorID" json:"-"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// DiscountedPrice returns price * (1 - discount/100), never below zero.
func (p *Product) DiscountedPrice() decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	price := p.Price.Mul(hundred.Sub(p.Discount)).Div(hundred)
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}
