package subscription

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jamiljuma2/edulink/internal/domain"
	"github.com/jamiljuma2/edulink/internal/provider/lipana"
	"github.com/jamiljuma2/edulink/internal/repository"
)

type STKPusher interface {
	PushSTK(ctx context.Context, phone string, amount decimal.Decimal) (*lipana.PushResponse, error)
}

type RateSource interface {
	USDToKES(ctx context.Context) (float64, error)
}

// Service sells writer plans. A checkout creates the inactive subscription
// and quotes its price in the wallet currency; Pay pushes the charge to the
// mobile rail. Activation happens in the reconciler once the payment
// completes.
type Service struct {
	subs   repository.SubscriptionRepository
	ledger repository.TransactionRepository
	rates  RateSource
	pusher STKPusher
	logger *zap.Logger
}

func NewService(
	subs repository.SubscriptionRepository,
	ledger repository.TransactionRepository,
	rates RateSource,
	pusher STKPusher,
	logger *zap.Logger,
) *Service {
	return &Service{subs: subs, ledger: ledger, rates: rates, pusher: pusher, logger: logger}
}

// Quote is what the client needs to confirm before paying.
type Quote struct {
	SubscriptionID uuid.UUID
	AmountKES      int64
	Rate           float64
}

// Checkout creates an inactive subscription for the plan and quotes the
// local-currency price at today's rate.
func (s *Service) Checkout(ctx context.Context, p domain.Principal, planName string) (*Quote, error) {
	plan, err := domain.PlanByName(planName)
	if err != nil {
		return nil, err
	}

	sub := &domain.Subscription{
		ID:          uuid.New(),
		WriterID:    p.UserID,
		Plan:        plan.Name,
		TasksPerDay: plan.TasksPerDay,
		Active:      false,
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	rate, err := s.rates.USDToKES(ctx)
	if err != nil {
		return nil, err
	}

	return &Quote{
		SubscriptionID: sub.ID,
		AmountKES:      domain.ConvertUSDToKES(plan.PriceUSD.InexactFloat64(), rate),
		Rate:           rate,
	}, nil
}

// Pay charges the plan price to the writer's phone via mobile push, linking
// the pending transaction to the subscription so the reconciler can activate
// it on completion. Returns the rail reference for polling.
func (s *Service) Pay(ctx context.Context, p domain.Principal, subscriptionID uuid.UUID, phone string) (string, error) {
	if phone == "" {
		return "", domain.ErrPhoneRequired
	}

	sub, err := s.subs.GetForWriter(ctx, subscriptionID, p.UserID)
	if err != nil {
		return "", err
	}
	plan, err := domain.PlanByName(sub.Plan)
	if err != nil {
		return "", err
	}

	rate, err := s.rates.USDToKES(ctx)
	if err != nil {
		return "", err
	}
	amount := decimal.NewFromInt(domain.ConvertUSDToKES(plan.PriceUSD.InexactFloat64(), rate))
	if amount.LessThan(domain.MinChargeKES) {
		return "", domain.ErrAmountTooLow
	}

	txn := &domain.Transaction{
		ID:       uuid.New(),
		UserID:   p.UserID,
		Kind:     domain.KindSubscription,
		Amount:   amount,
		Currency: domain.KES,
		Status:   domain.TxStatusPending,
		Meta: domain.SubscriptionMeta{
			SubscriptionID: sub.ID,
			USDAmount:      plan.PriceUSD,
			Rate:           rate,
		},
	}
	if err := s.ledger.Create(ctx, txn); err != nil {
		return "", fmt.Errorf("create subscription transaction: %w", err)
	}

	push, err := s.pusher.PushSTK(ctx, phone, amount)
	if err != nil {
		s.logger.Warn("subscription push failed, transaction left pending without reference",
			zap.String("transaction_id", txn.ID.String()),
			zap.String("subscription_id", sub.ID.String()),
			zap.Error(err))
		return "", fmt.Errorf("initiate push payment: %w: %w", domain.ErrRailFailure, err)
	}

	reference := push.Reference()
	meta := domain.SubscriptionMeta{
		SubscriptionID: sub.ID,
		USDAmount:      plan.PriceUSD,
		Rate:           rate,
		Payload:        push.Raw,
	}
	if err := s.ledger.SetReference(ctx, txn.ID, reference, meta); err != nil {
		return "", fmt.Errorf("store rail reference: %w", err)
	}

	s.logger.Info("subscription payment initiated",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("subscription_id", sub.ID.String()),
		zap.String("reference", reference),
		zap.String("plan", plan.Name))
	return reference, nil
}
