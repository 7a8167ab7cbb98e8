package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"backend/internal/model"
	"backend/internal/paystack"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type InitPaymentRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Amount  string `json:"amount" binding:"required"`
	OrderID string `json:"order_id"`
}

type InitPaymentResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type TransactionResponse struct {
	ID        string  `json:"id"`
	Reference string  `json:"reference"`
	Amount    string  `json:"amount"`
	Status    string  `json:"status"`
	OrderID   *string `json:"order_id,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// PaymentService drives the Paystack gateway flow. A verified successful
// charge tied to an order is settled through the order engine; the
// transaction record itself never mutates order state directly.
type PaymentService interface {
	Initialize(ctx context.Context, userID uuid.UUID, req InitPaymentRequest) (InitPaymentResponse, error)
	Verify(ctx context.Context, userID uuid.UUID, reference string) (TransactionResponse, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) error
	ListTransactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]TransactionResponse, int64, error)
}

type paymentService struct {
	txRepo    repository.TransactionRepository
	orderRepo repository.OrderRepository
	orders    OrderService
	gateway   *paystack.Client
}

func NewPaymentService(
	txRepo repository.TransactionRepository,
	orderRepo repository.OrderRepository,
	orders OrderService,
	gateway *paystack.Client,
) PaymentService {
	return &paymentService{
		txRepo:    txRepo,
		orderRepo: orderRepo,
		orders:    orders,
		gateway:   gateway,
	}
}

func (s *paymentService) Initialize(ctx context.Context, userID uuid.UUID, req InitPaymentRequest) (InitPaymentResponse, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return InitPaymentResponse{}, fmt.Errorf("%w: amount must be a positive number", ErrValidation)
	}

	tx := model.PaymentTransaction{
		UserID: userID,
		Amount: amount,
		Status: model.TxStatusPending,
	}

	if req.OrderID != "" {
		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			return InitPaymentResponse{}, fmt.Errorf("%w: invalid order_id", ErrValidation)
		}
		if _, err := s.orderRepo.FindByIDWithItems(ctx, orderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return InitPaymentResponse{}, fmt.Errorf("%w: order %s", ErrNotFound, req.OrderID)
			}
			return InitPaymentResponse{}, fmt.Errorf("database error: %w", err)
		}
		tx.OrderID = &orderID
	}

	// Paystack wants the smallest currency unit
	subunits := amount.Mul(decimal.NewFromInt(100)).IntPart()
	data, err := s.gateway.InitializeTransaction(ctx, paystack.InitializeRequest{
		Email:  req.Email,
		Amount: subunits,
	})
	if err != nil {
		return InitPaymentResponse{}, fmt.Errorf("failed to initialize payment: %w", err)
	}

	tx.Reference = data.Reference
	if err := s.txRepo.Create(ctx, &tx); err != nil {
		return InitPaymentResponse{}, fmt.Errorf("failed to store transaction: %w", err)
	}

	return InitPaymentResponse{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

// Verify re-checks the gateway for the transaction's settled state. A
// success on an order-linked transaction marks the order paid; MarkPaid is
// idempotent, so re-verifying a settled reference is harmless.
func (s *paymentService) Verify(ctx context.Context, userID uuid.UUID, reference string) (TransactionResponse, error) {
	tx, err := s.txRepo.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TransactionResponse{}, fmt.Errorf("%w: transaction %s", ErrNotFound, reference)
		}
		return TransactionResponse{}, fmt.Errorf("database error: %w", err)
	}
	if tx.UserID != userID {
		return TransactionResponse{}, fmt.Errorf("%w: transaction %s", ErrNotFound, reference)
	}

	data, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return TransactionResponse{}, fmt.Errorf("failed to verify payment: %w", err)
	}

	switch data.Status {
	case "success":
		tx.Status = model.TxStatusSuccess
	case "failed":
		tx.Status = model.TxStatusFailed
	default:
		tx.Status = model.TxStatusPending
	}

	if err := s.txRepo.Update(ctx, tx); err != nil {
		return TransactionResponse{}, fmt.Errorf("failed to update transaction: %w", err)
	}

	if tx.Status == model.TxStatusSuccess {
		if err := s.settleOrder(ctx, tx); err != nil {
			return TransactionResponse{}, err
		}
	}

	return toTransactionResponse(*tx), nil
}

// HandleWebhook processes a signed gateway notification. Only charge.success
// events matter here; anything else is acknowledged and dropped. Settlement
// reuses the same path as Verify.
func (s *paymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.gateway.ValidSignature(body, signature) {
		return fmt.Errorf("%w: bad webhook signature", ErrValidation)
	}

	var event paystack.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: malformed webhook payload", ErrValidation)
	}
	if event.Event != "charge.success" {
		return nil
	}

	tx, err := s.txRepo.FindByReference(ctx, event.Data.Reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Println("WARNING: webhook for unknown reference:", event.Data.Reference)
			return nil
		}
		return fmt.Errorf("database error: %w", err)
	}

	if tx.Status == model.TxStatusSuccess {
		return nil
	}

	tx.Status = model.TxStatusSuccess
	if err := s.txRepo.Update(ctx, tx); err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	return s.settleOrder(ctx, tx)
}

func (s *paymentService) settleOrder(ctx context.Context, tx *model.PaymentTransaction) error {
	if tx.OrderID == nil {
		return nil
	}

	order, err := s.orderRepo.FindByIDWithItems(ctx, *tx.OrderID)
	if err != nil {
		log.Println("WARNING: verified payment for missing order:", tx.OrderID, err)
		return nil
	}

	_, err = s.orders.MarkPaid(ctx, order.DistributorID, order.ID.String(), MarkPaidRequest{
		PaymentMethod: model.PaymentMethodPaystack,
	})
	if err != nil {
		return fmt.Errorf("failed to settle order: %w", err)
	}
	return nil
}

func (s *paymentService) ListTransactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]TransactionResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	txs, total, err := s.txRepo.ListForUser(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	res := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		res = append(res, toTransactionResponse(tx))
	}
	return res, total, nil
}

func toTransactionResponse(tx model.PaymentTransaction) TransactionResponse {
	res := TransactionResponse{
		ID:        tx.ID.String(),
		Reference: tx.Reference,
		Amount:    tx.Amount.StringFixed(2),
		Status:    tx.Status,
		CreatedAt: tx.CreatedAt.Format(time.RFC3339),
	}
	if tx.OrderID != nil {
		id := tx.OrderID.String()
		res.OrderID = &id
	}
	return res
}
