package payment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jamiljuma2/edulink/internal/domain"
)

// ReconcileResult reports what applying a rail outcome actually did.
type ReconcileResult struct {
	Found       bool
	Credited    bool
	Activated   bool
	Status      domain.TransactionStatus
	Transaction *domain.Transaction
}

// ApplyOutcome is the authoritative state transition for a rail outcome. It
// runs in one database transaction with the ledger row locked, so concurrent
// deliveries of the same reference serialize and the status write, wallet
// credit and subscription activation land together or not at all.
//
// Unknown references resolve to a successful no-op: the rail is told all is
// well so it stops retrying deliveries for transactions this system never
// created.
func (s *Service) ApplyOutcome(ctx context.Context, outcome domain.RailOutcome) (ReconcileResult, error) {
	var res ReconcileResult

	err := s.atomic.Run(ctx, func(ctx context.Context) error {
		txn, err := s.ledger.GetByReferenceForUpdate(ctx, outcome.Reference)
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("outcome for unknown reference acknowledged without action",
				zap.String("reference", outcome.Reference),
				zap.String("status", string(outcome.Status)))
			return nil
		}
		if err != nil {
			return err
		}

		res.Found = true
		res.Transaction = txn
		res.Status = txn.Status

		wasCompleted := txn.Status == domain.TxStatusCompleted
		shouldCredit := outcome.Completed() && !wasCompleted

		if outcome.Status != txn.Status {
			if !txn.Status.CanTransition(outcome.Status) {
				// A terminal row stays terminal; a late delivery cannot
				// resurrect a failed transaction, and crediting without the
				// matching status write would be a partial application.
				s.logger.Warn("ignoring outcome for terminal transaction",
					zap.String("transaction_id", txn.ID.String()),
					zap.String("stored", string(txn.Status)),
					zap.String("reported", string(outcome.Status)))
				return nil
			}
			if err := s.ledger.UpdateStatus(ctx, txn.ID, outcome.Status); err != nil {
				return fmt.Errorf("transition %s: %w", txn.ID, err)
			}
			res.Status = outcome.Status
		}

		if !shouldCredit || txn.Kind == domain.KindPayout {
			return nil
		}

		if err := s.wallets.Credit(ctx, txn.UserID, txn.Amount, txn.Currency); err != nil {
			return fmt.Errorf("credit wallet for %s: %w", txn.ID, err)
		}
		res.Credited = true

		if txn.Kind == domain.KindSubscription {
			meta, ok := txn.Meta.(domain.SubscriptionMeta)
			if !ok {
				return fmt.Errorf("subscription transaction %s has no subscription meta", txn.ID)
			}
			if err := s.subs.Activate(ctx, meta.SubscriptionID); err != nil {
				return fmt.Errorf("activate subscription %s: %w", meta.SubscriptionID, err)
			}
			res.Activated = true
		}
		return nil
	})
	if err != nil {
		return ReconcileResult{}, err
	}

	if res.Credited {
		s.logger.Info("transaction credited",
			zap.String("transaction_id", res.Transaction.ID.String()),
			zap.String("user_id", res.Transaction.UserID),
			zap.String("amount", res.Transaction.Amount.String()),
			zap.Bool("subscription_activated", res.Activated))
	}
	return res, nil
}
