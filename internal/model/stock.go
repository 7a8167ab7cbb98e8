package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockAction constants. Restock adds to stock; sale, return and adjustment
// subtract from it.
const (
	StockActionRestock    = "restock"
	StockActionSale       = "sale"
	StockActionReturn     = "return"
	StockActionAdjustment = "adjustment"
)

// StockMovement is the append-only audit ledger of stock changes. Each row
// corresponds to exactly one applied mutation of the product's stock count.
type StockMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"-"`
	Action    string    `gorm:"type:varchar(20);not null;index" json:"action"`
	Quantity  int       `gorm:"type:int;not null" json:"quantity"`
	Note      string    `gorm:"type:text" json:"note"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
