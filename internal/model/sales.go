package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesRecord is a per-distributor daily sales aggregate.
type SalesRecord struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	DistributorID uuid.UUID       `gorm:"type:uuid;not null;index" json:"distributor_id"`
	Distributor   *User           `gorm:"foreignKey:DistributorID" json:"-"`
	TotalSales    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_sales"`
	Revenue       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"revenue"`
	Date          time.Time       `gorm:"type:date;not null" json:"date"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (s *SalesRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
