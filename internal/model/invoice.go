package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentMethod constants
const (
	PaymentMethodCard         = "card"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodPaystack     = "paystack"
	PaymentMethodPaypal       = "paypal"
)

// Invoice payment status constants
const (
	InvoicePending = "pending"
	InvoicePaid    = "paid"
	InvoiceOverdue = "overdue"
)

// Invoice is the 1:1 financial document for an order. It is created exactly
// once, the first time the order's payment becomes paid, and is never
// deleted by the engine. TotalAmount is fixed at creation time.
type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID       uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"order_id"`
	InvoiceNumber string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"invoice_number"`
	IssueDate     time.Time       `gorm:"not null" json:"issue_date"`
	DueDate       time.Time       `gorm:"not null" json:"due_date"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	PaymentStatus string          `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	PaymentMethod string          `gorm:"type:varchar(20);not null;default:'card'" json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
