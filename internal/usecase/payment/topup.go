package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jamiljuma2/edulink/internal/domain"
)

// TopUp initiates a mobile push payment for the caller's wallet and returns
// the rail reference for status polling.
//
// The pending transaction is written before the rail call. When the push
// fails the row stays pending without a reference; the ledger is
// append-mostly and never rolls back.
func (s *Service) TopUp(ctx context.Context, p domain.Principal, phone string, amount decimal.Decimal) (string, error) {
	if phone == "" {
		return "", domain.ErrPhoneRequired
	}
	if amount.LessThan(domain.MinChargeKES) {
		return "", domain.ErrAmountTooLow
	}

	txn := &domain.Transaction{
		ID:       uuid.New(),
		UserID:   p.UserID,
		Kind:     domain.KindTopUp,
		Amount:   amount,
		Currency: domain.KES,
		Status:   domain.TxStatusPending,
		Meta:     domain.TopUpMeta{Rail: domain.RailLipana, Phone: phone},
	}
	if err := s.ledger.Create(ctx, txn); err != nil {
		return "", fmt.Errorf("create topup transaction: %w", err)
	}

	push, err := s.lipana.PushSTK(ctx, phone, amount)
	if err != nil {
		s.logger.Warn("stk push failed, transaction left pending without reference",
			zap.String("transaction_id", txn.ID.String()),
			zap.String("user_id", p.UserID),
			zap.Error(err))
		return "", fmt.Errorf("initiate push payment: %w: %w", domain.ErrRailFailure, err)
	}

	reference := push.Reference()
	meta := domain.TopUpMeta{Rail: domain.RailLipana, Phone: phone, Payload: push.Raw}
	if err := s.ledger.SetReference(ctx, txn.ID, reference, meta); err != nil {
		return "", fmt.Errorf("store rail reference: %w", err)
	}

	s.logger.Info("topup initiated",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("reference", reference),
		zap.String("user_id", p.UserID),
		zap.String("amount", amount.String()))
	return reference, nil
}
