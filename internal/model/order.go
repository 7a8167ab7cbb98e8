package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus constants. These are the only valid spellings; in particular
// the status is "cancelled", never "canceled".
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// PaymentStatus constants
const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// Order is a customer purchase owned by a distributor. It exclusively owns
// its items and its invoice (cascade delete).
type Order struct {
	ID                uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	DistributorID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"distributor_id"`
	Distributor       *User       `gorm:"foreignKey:DistributorID" json:"-"`
	CustomerName      string      `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail     string      `gorm:"type:varchar(255);not null" json:"customer_email"`
	Status            string      `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentStatus     string      `gorm:"type:varchar(10);not null;default:'unpaid'" json:"payment_status"`
	TrackingNumber    string      `gorm:"type:varchar(20);uniqueIndex;not null" json:"tracking_number"`
	EstimatedDelivery *time.Time  `json:"estimated_delivery"`
	Items             []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Invoice           *Invoice    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"invoice,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is a line item. Price is the product's unit price snapshotted
// when the item was added; later product price changes do not affect it.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"-"`
	Quantity  int             `gorm:"type:int;not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TotalAmount sums price * quantity over the order's loaded items.
func (o *Order) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
