package payment

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jamiljuma2/edulink/internal/domain"
	"github.com/jamiljuma2/edulink/internal/provider/lipana"
	"github.com/jamiljuma2/edulink/internal/provider/paypal"
	"github.com/jamiljuma2/edulink/internal/repository"
)

// STKPusher is the mobile push rail as the payment core sees it.
type STKPusher interface {
	PushSTK(ctx context.Context, phone string, amount decimal.Decimal) (*lipana.PushResponse, error)
}

// CardProcessor is the card checkout rail: redirect order creation plus
// direct capture.
type CardProcessor interface {
	CreateOrder(ctx context.Context, req paypal.OrderRequest) (*paypal.Order, error)
	CaptureOrder(ctx context.Context, orderID string) (json.RawMessage, error)
}

// CheckoutURLs are where the card rail sends the buyer after approval or
// cancellation.
type CheckoutURLs struct {
	Return string
	Cancel string
}

// Service owns the transaction ledger side of every money movement: the
// three initiators, the reconciler, and payout approval.
type Service struct {
	ledger  repository.TransactionRepository
	wallets repository.WalletRepository
	subs    repository.SubscriptionRepository
	atomic  repository.Runner

	lipana STKPusher
	paypal CardProcessor
	urls   CheckoutURLs

	logger *zap.Logger
}

func NewService(
	ledger repository.TransactionRepository,
	wallets repository.WalletRepository,
	subs repository.SubscriptionRepository,
	atomic repository.Runner,
	lipanaClient STKPusher,
	paypalClient CardProcessor,
	urls CheckoutURLs,
	logger *zap.Logger,
) *Service {
	return &Service{
		ledger:  ledger,
		wallets: wallets,
		subs:    subs,
		atomic:  atomic,
		lipana:  lipanaClient,
		paypal:  paypalClient,
		urls:    urls,
		logger:  logger,
	}
}

// Wallet returns the caller's wallet, zero-balance if none exists yet.
func (s *Service) Wallet(ctx context.Context, p domain.Principal) (*domain.Wallet, error) {
	return s.wallets.Get(ctx, p.UserID)
}

// StatusByReference backs client-side polling after an initiator call.
func (s *Service) StatusByReference(ctx context.Context, reference string) (domain.TransactionStatus, error) {
	txn, err := s.ledger.GetByReference(ctx, reference)
	if err != nil {
		return "", err
	}
	return txn.Status, nil
}

// RecentTransactions lists the newest ledger entries for the admin view.
func (s *Service) RecentTransactions(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	return s.ledger.ListRecent(ctx, limit)
}
