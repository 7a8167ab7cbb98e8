package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const invoiceDueDays = 30 // fixed policy: due date = issue date + 30 days

// DTOs
type InvoiceResponse struct {
	ID            string `json:"id"`
	OrderID       string `json:"order_id"`
	InvoiceNumber string `json:"invoice_number"`
	IssueDate     string `json:"issue_date"`
	DueDate       string `json:"due_date"`
	TotalAmount   string `json:"total_amount"`
	PaymentStatus string `json:"payment_status"`
	PaymentMethod string `json:"payment_method"`
	CreatedAt     string `json:"created_at"`
}

// InvoiceService generates and reads invoices. Generation is only ever
// invoked by the order engine's MarkPaid; it computes the total from the
// order's items at generation time and performs no stock mutation.
type InvoiceService interface {
	GenerateForOrder(ctx context.Context, order *model.Order, paymentMethod string) (*model.Invoice, error)
	GetInvoice(ctx context.Context, distributorID uuid.UUID, id string) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, distributorID uuid.UUID, status string, page, limit int) ([]InvoiceResponse, int64, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	orderRepo   repository.OrderRepository
}

func NewInvoiceService(invoiceRepo repository.InvoiceRepository, orderRepo repository.OrderRepository) InvoiceService {
	return &invoiceService{invoiceRepo: invoiceRepo, orderRepo: orderRepo}
}

// GenerateForOrder creates the order's invoice. Callers are responsible for
// the no-existing-invoice precondition (MarkPaid's idempotent guard); the
// unique index on order_id backs it up, surfacing ErrDuplicateInvoice
// rather than a silent second invoice.
func (s *invoiceService) GenerateForOrder(ctx context.Context, order *model.Order, paymentMethod string) (*model.Invoice, error) {
	if paymentMethod == "" {
		paymentMethod = model.PaymentMethodCard
	}

	if _, err := s.invoiceRepo.FindByOrderID(ctx, order.ID); err == nil {
		return nil, fmt.Errorf("%w: order %s", ErrDuplicateInvoice, order.ID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for existing invoice: %w", err)
	}

	number, err := s.generateInvoiceNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice number: %w", err)
	}

	now := time.Now()
	invoice := &model.Invoice{
		OrderID:       order.ID,
		InvoiceNumber: number,
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, invoiceDueDays),
		TotalAmount:   order.TotalAmount(),
		PaymentStatus: model.InvoicePaid,
		PaymentMethod: paymentMethod,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: order %s", ErrDuplicateInvoice, order.ID)
		}
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	return invoice, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, distributorID uuid.UUID, id string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("%w: invalid invoice id", ErrValidation)
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InvoiceResponse{}, fmt.Errorf("%w: invoice %s", ErrNotFound, id)
		}
		return InvoiceResponse{}, fmt.Errorf("database error: %w", err)
	}

	// Ownership check through the parent order
	order, err := s.orderRepo.FindByIDWithItems(ctx, invoice.OrderID)
	if err != nil || order.DistributorID != distributorID {
		return InvoiceResponse{}, fmt.Errorf("%w: invoice %s", ErrNotFound, id)
	}

	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, distributorID uuid.UUID, status string, page, limit int) ([]InvoiceResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	invoices, total, err := s.invoiceRepo.List(ctx, distributorID, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toInvoiceResponse(inv))
	}
	return result, total, nil
}

// generateInvoiceNumber builds a date-prefixed sequence number. The unique
// index on invoice_number is the backstop against a racing duplicate.
func (s *invoiceService) generateInvoiceNumber(ctx context.Context) (string, error) {
	today := time.Now().Format("20060102")
	prefix := "INV-" + today + "-"

	count, err := s.invoiceRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID.String(),
		OrderID:       inv.OrderID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		IssueDate:     inv.IssueDate.Format("2006-01-02"),
		DueDate:       inv.DueDate.Format("2006-01-02"),
		TotalAmount:   inv.TotalAmount.StringFixed(2),
		PaymentStatus: inv.PaymentStatus,
		PaymentMethod: inv.PaymentMethod,
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
	}
}
