package service

import (
	"context"
	"fmt"

	"backend/internal/repository"

	"github.com/google/uuid"
)

// DTOs
type SalesRecordResponse struct {
	ID         string `json:"id"`
	TotalSales string `json:"total_sales"`
	Revenue    string `json:"revenue"`
	Date       string `json:"date"`
}

type SalesSummaryResponse struct {
	TotalSales   string                `json:"total_sales"`
	TotalRevenue string                `json:"total_revenue"`
	Records      []SalesRecordResponse `json:"records"`
}

// SalesService reads the per-distributor sales aggregates written by the
// order engine when orders are marked paid.
type SalesService interface {
	Summary(ctx context.Context, distributorID uuid.UUID) (SalesSummaryResponse, error)
}

type salesService struct {
	salesRepo repository.SalesRepository
}

func NewSalesService(salesRepo repository.SalesRepository) SalesService {
	return &salesService{salesRepo: salesRepo}
}

func (s *salesService) Summary(ctx context.Context, distributorID uuid.UUID) (SalesSummaryResponse, error) {
	totalSales, totalRevenue, err := s.salesRepo.Totals(ctx, distributorID)
	if err != nil {
		return SalesSummaryResponse{}, fmt.Errorf("failed to compute sales totals: %w", err)
	}

	records, err := s.salesRepo.ListForDistributor(ctx, distributorID)
	if err != nil {
		return SalesSummaryResponse{}, fmt.Errorf("failed to fetch sales records: %w", err)
	}

	res := SalesSummaryResponse{
		TotalSales:   totalSales.StringFixed(2),
		TotalRevenue: totalRevenue.StringFixed(2),
		Records:      make([]SalesRecordResponse, 0, len(records)),
	}
	for _, r := range records {
		res.Records = append(res.Records, SalesRecordResponse{
			ID:         r.ID.String(),
			TotalSales: r.TotalSales.StringFixed(2),
			Revenue:    r.Revenue.StringFixed(2),
			Date:       r.Date.Format("2006-01-02"),
		})
	}
	return res, nil
}
