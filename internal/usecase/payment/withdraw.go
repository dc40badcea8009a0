package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jamiljuma2/edulink/internal/domain"
)

// Withdraw records a payout request against the caller's balance. No money
// moves here: the wallet is debited only when an admin approves the payout.
func (s *Service) Withdraw(ctx context.Context, p domain.Principal, phone string, amount decimal.Decimal) error {
	if phone == "" {
		return domain.ErrPhoneRequired
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrAmountTooLow
	}

	wallet, err := s.wallets.Get(ctx, p.UserID)
	if err != nil {
		return err
	}
	if amount.GreaterThan(wallet.Balance) {
		return domain.ErrInsufficientBalance
	}

	txn := &domain.Transaction{
		ID:       uuid.New(),
		UserID:   p.UserID,
		Kind:     domain.KindPayout,
		Amount:   amount,
		Currency: wallet.Currency,
		Status:   domain.TxStatusPending,
		Meta:     domain.PayoutMeta{Phone: phone},
	}
	if err := s.ledger.Create(ctx, txn); err != nil {
		return fmt.Errorf("create payout transaction: %w", err)
	}

	s.logger.Info("withdrawal requested",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("user_id", p.UserID),
		zap.String("amount", amount.String()))
	return nil
}

// Earnings is the writer's money view: current wallet plus payout history.
func (s *Service) Earnings(ctx context.Context, p domain.Principal) (*domain.Wallet, []*domain.Transaction, error) {
	wallet, err := s.wallets.Get(ctx, p.UserID)
	if err != nil {
		return nil, nil, err
	}
	payouts, err := s.ledger.ListByUser(ctx, p.UserID, domain.KindPayout)
	if err != nil {
		return nil, nil, err
	}
	return wallet, payouts, nil
}

// ApprovePayout marks a payout transaction successful and debits the wallet
// in the same database transaction. Approving twice is a no-op.
func (s *Service) ApprovePayout(ctx context.Context, transactionID uuid.UUID) error {
	return s.atomic.Run(ctx, func(ctx context.Context) error {
		txn, err := s.ledger.GetByIDForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if txn.Kind != domain.KindPayout {
			return domain.ErrNotFound
		}
		if txn.Status == domain.TxStatusSuccess {
			return nil
		}
		if !txn.Status.CanTransition(domain.TxStatusSuccess) {
			return domain.ErrInvalidTransition
		}

		if err := s.wallets.Debit(ctx, txn.UserID, txn.Amount); err != nil {
			return err
		}
		if err := s.ledger.UpdateStatus(ctx, txn.ID, domain.TxStatusSuccess); err != nil {
			return err
		}

		s.logger.Info("payout approved",
			zap.String("transaction_id", txn.ID.String()),
			zap.String("user_id", txn.UserID),
			zap.String("amount", txn.Amount.String()))
		return nil
	})
}
