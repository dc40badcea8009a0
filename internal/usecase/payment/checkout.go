package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jamiljuma2/edulink/internal/domain"
	"github.com/jamiljuma2/edulink/internal/provider/paypal"
)

// CreateCheckout opens a card checkout for a USD top-up and returns the
// approval URL the client should redirect to. The provider's order id
// becomes the transaction's rail reference.
func (s *Service) CreateCheckout(ctx context.Context, p domain.Principal, amountUSD decimal.Decimal) (string, error) {
	if amountUSD.LessThanOrEqual(decimal.Zero) {
		return "", domain.ErrAmountTooLow
	}

	txn := &domain.Transaction{
		ID:       uuid.New(),
		UserID:   p.UserID,
		Kind:     domain.KindTopUp,
		Amount:   amountUSD,
		Currency: domain.USD,
		Status:   domain.TxStatusPending,
		Meta:     domain.TopUpMeta{Rail: domain.RailPayPal},
	}
	if err := s.ledger.Create(ctx, txn); err != nil {
		return "", fmt.Errorf("create checkout transaction: %w", err)
	}

	order, err := s.paypal.CreateOrder(ctx, paypal.OrderRequest{
		Amount:    amountUSD,
		Currency:  string(domain.USD),
		CustomID:  txn.ID.String(),
		ReturnURL: s.urls.Return,
		CancelURL: s.urls.Cancel,
	})
	if err != nil {
		s.logger.Warn("order creation failed, transaction left pending without reference",
			zap.String("transaction_id", txn.ID.String()),
			zap.Error(err))
		return "", fmt.Errorf("create checkout order: %w: %w", domain.ErrRailFailure, err)
	}

	meta := domain.TopUpMeta{Rail: domain.RailPayPal, OrderID: order.ID}
	if err := s.ledger.SetReference(ctx, txn.ID, order.ID, meta); err != nil {
		return "", fmt.Errorf("store order reference: %w", err)
	}

	approve := order.ApproveLink()
	if approve == "" {
		return "", fmt.Errorf("checkout order %s has no approval link", order.ID)
	}

	s.logger.Info("card checkout created",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("order_id", order.ID),
		zap.String("user_id", p.UserID))
	return approve, nil
}

// Capture finalizes a checkout order on redirect return. A successful
// capture runs through the same reconciliation path as the webhook, so a
// later (or earlier) webhook delivery for the same order cannot credit the
// wallet a second time.
func (s *Service) Capture(ctx context.Context, p domain.Principal, orderID string) error {
	txn, err := s.ledger.GetByReference(ctx, orderID)
	if err != nil {
		return err
	}
	if txn.UserID != p.UserID {
		return domain.ErrNotFound
	}

	raw, err := s.paypal.CaptureOrder(ctx, orderID)
	if err != nil {
		var ce *paypal.CaptureError
		if errors.As(err, &ce) {
			s.markCaptureFailed(ctx, orderID, ce)
		}
		return fmt.Errorf("capture order: %w: %w", domain.ErrRailFailure, err)
	}

	res, err := s.ApplyOutcome(ctx, domain.RailOutcome{
		Reference: orderID,
		Status:    domain.TxStatusCompleted,
	})
	if err != nil {
		return err
	}
	if !res.Found {
		return domain.ErrNotFound
	}

	meta := domain.TopUpMeta{Rail: domain.RailPayPal, OrderID: orderID, Payload: raw}
	if err := s.ledger.SetStatusAndMeta(ctx, res.Transaction.ID, domain.TxStatusCompleted, meta); err != nil {
		s.logger.Error("failed to record capture payload",
			zap.String("order_id", orderID),
			zap.Error(err))
	}
	return nil
}

func (s *Service) markCaptureFailed(ctx context.Context, orderID string, ce *paypal.CaptureError) {
	err := s.atomic.Run(ctx, func(ctx context.Context) error {
		txn, err := s.ledger.GetByReferenceForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		meta := domain.TopUpMeta{Rail: domain.RailPayPal, OrderID: orderID, Payload: ce.Payload}
		return s.ledger.SetStatusAndMeta(ctx, txn.ID, domain.TxStatusFailed, meta)
	})
	if err != nil {
		s.logger.Error("failed to mark capture as failed",
			zap.String("order_id", orderID),
			zap.Error(err))
	}
}
