package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SalesRepository interface {
	Create(ctx context.Context, record *model.SalesRecord) error
	ListForDistributor(ctx context.Context, distributorID uuid.UUID) ([]model.SalesRecord, error)
	Totals(ctx context.Context, distributorID uuid.UUID) (totalSales, totalRevenue decimal.Decimal, err error)
}

type salesRepository struct {
	db *gorm.DB
}

func NewSalesRepository(db *gorm.DB) SalesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) Create(ctx context.Context, record *model.SalesRecord) error {
	return GetDB(ctx, r.db).Create(record).Error
}

func (r *salesRepository) ListForDistributor(ctx context.Context, distributorID uuid.UUID) ([]model.SalesRecord, error) {
	var records []model.SalesRecord
	if err := GetDB(ctx, r.db).
		Where("distributor_id = ?", distributorID).
		Order("date desc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *salesRepository) Totals(ctx context.Context, distributorID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	type sums struct {
		TotalSales   decimal.Decimal
		TotalRevenue decimal.Decimal
	}
	var result sums
	err := GetDB(ctx, r.db).Model(&model.SalesRecord{}).
		Select("COALESCE(SUM(total_sales), 0) AS total_sales, COALESCE(SUM(revenue), 0) AS total_revenue").
		Where("distributor_id = ?", distributorID).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return result.TotalSales, result.TotalRevenue, nil
}
