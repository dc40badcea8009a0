package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jamiljuma2/edulink/internal/domain"
	"github.com/jamiljuma2/edulink/internal/provider/lipana"
)

var writer = domain.Principal{
	UserID:         "writer-1",
	Role:           domain.RoleWriter,
	ApprovalStatus: domain.ApprovalApproved,
}

type memSubs struct {
	rows map[uuid.UUID]*domain.Subscription
}

func (m *memSubs) Create(_ context.Context, s *domain.Subscription) error {
	cp := *s
	m.rows[s.ID] = &cp
	return nil
}

func (m *memSubs) GetForWriter(_ context.Context, id uuid.UUID, writerID string) (*domain.Subscription, error) {
	s, ok := m.rows[id]
	if !ok || s.WriterID != writerID {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSubs) Activate(_ context.Context, id uuid.UUID) error {
	s, ok := m.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Active = true
	now := time.Now()
	s.StartsAt = &now
	return nil
}

type memLedger struct {
	rows map[uuid.UUID]*domain.Transaction
}

func (m *memLedger) Create(_ context.Context, t *domain.Transaction) error {
	cp := *t
	m.rows[t.ID] = &cp
	return nil
}

func (m *memLedger) GetByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	t, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memLedger) GetByReference(_ context.Context, reference string) (*domain.Transaction, error) {
	for _, t := range m.rows {
		if t.Reference != nil && *t.Reference == reference {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memLedger) GetByReferenceForUpdate(ctx context.Context, reference string) (*domain.Transaction, error) {
	return m.GetByReference(ctx, reference)
}

func (m *memLedger) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	return m.GetByID(ctx, id)
}

func (m *memLedger) UpdateStatus(_ context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	t, ok := m.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Status = status
	return nil
}

func (m *memLedger) SetReference(_ context.Context, id uuid.UUID, reference string, meta domain.Meta) error {
	t, ok := m.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Reference = &reference
	t.Meta = meta
	return nil
}

func (m *memLedger) SetStatusAndMeta(_ context.Context, id uuid.UUID, status domain.TransactionStatus, meta domain.Meta) error {
	t, ok := m.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Status = status
	t.Meta = meta
	return nil
}

func (m *memLedger) ListByUser(_ context.Context, userID string, kinds ...domain.TransactionKind) ([]*domain.Transaction, error) {
	return nil, nil
}

func (m *memLedger) ListRecent(_ context.Context, limit int) ([]*domain.Transaction, error) {
	return nil, nil
}

type fixedRate struct {
	rate float64
	err  error
}

func (f fixedRate) USDToKES(context.Context) (float64, error) { return f.rate, f.err }

type stubPusher struct {
	reference string
	err       error
	lastAmt   decimal.Decimal
}

func (s *stubPusher) PushSTK(_ context.Context, phone string, amount decimal.Decimal) (*lipana.PushResponse, error) {
	s.lastAmt = amount
	if s.err != nil {
		return nil, s.err
	}
	var resp lipana.PushResponse
	resp.Data.TransactionIDAlt = s.reference
	resp.Raw = json.RawMessage(`{"data":{"transaction_id":"` + s.reference + `"}}`)
	return &resp, nil
}

func newTestService(subs *memSubs, ledger *memLedger, rate fixedRate, pusher *stubPusher) *Service {
	return NewService(subs, ledger, rate, pusher, zap.NewNop())
}

func TestCheckoutCreatesInactiveSubscription(t *testing.T) {
	subs := &memSubs{rows: map[uuid.UUID]*domain.Subscription{}}
	svc := newTestService(subs, &memLedger{rows: map[uuid.UUID]*domain.Transaction{}}, fixedRate{rate: 130}, &stubPusher{})

	q, err := svc.Checkout(context.Background(), writer, "basic")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if q.AmountKES != 650 || q.Rate != 130 {
		t.Fatalf("quote = %+v, want 650 KES at 130", q)
	}

	sub := subs.rows[q.SubscriptionID]
	if sub == nil {
		t.Fatal("subscription not created")
	}
	if sub.Active || sub.StartsAt != nil {
		t.Fatalf("subscription must start inactive: %+v", sub)
	}
	if sub.Plan != "basic" || sub.TasksPerDay != 5 {
		t.Fatalf("unexpected plan fields: %+v", sub)
	}
}

func TestCheckoutRejectsUnknownPlan(t *testing.T) {
	subs := &memSubs{rows: map[uuid.UUID]*domain.Subscription{}}
	svc := newTestService(subs, &memLedger{rows: map[uuid.UUID]*domain.Transaction{}}, fixedRate{rate: 130}, &stubPusher{})

	if _, err := svc.Checkout(context.Background(), writer, "platinum"); !errors.Is(err, domain.ErrInvalidPlan) {
		t.Fatalf("err = %v, want ErrInvalidPlan", err)
	}
	if len(subs.rows) != 0 {
		t.Fatal("no subscription should be created for an unknown plan")
	}
}

func TestPayLinksTransactionToSubscription(t *testing.T) {
	subs := &memSubs{rows: map[uuid.UUID]*domain.Subscription{}}
	ledger := &memLedger{rows: map[uuid.UUID]*domain.Transaction{}}
	pusher := &stubPusher{reference: "LIP-SUB-9"}
	svc := newTestService(subs, ledger, fixedRate{rate: 129.5}, pusher)

	q, err := svc.Checkout(context.Background(), writer, "standard")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	ref, err := svc.Pay(context.Background(), writer, q.SubscriptionID, "254700000002")
	if err != nil {
		t.Fatalf("Pay: %v", err)
	}
	if ref != "LIP-SUB-9" {
		t.Fatalf("reference = %q, want LIP-SUB-9", ref)
	}
	// standard is $10; 10 * 129.5 = 1295 KES
	if !pusher.lastAmt.Equal(decimal.NewFromInt(1295)) {
		t.Fatalf("pushed amount = %s, want 1295", pusher.lastAmt)
	}

	txn, err := ledger.GetByReference(context.Background(), "LIP-SUB-9")
	if err != nil {
		t.Fatalf("transaction not resolvable by reference: %v", err)
	}
	if txn.Kind != domain.KindSubscription || txn.Status != domain.TxStatusPending || txn.Currency != domain.KES {
		t.Fatalf("unexpected transaction row: %+v", txn)
	}
	meta, ok := txn.Meta.(domain.SubscriptionMeta)
	if !ok {
		t.Fatalf("meta = %#v, want SubscriptionMeta", txn.Meta)
	}
	if meta.SubscriptionID != q.SubscriptionID || meta.Rate != 129.5 || !meta.USDAmount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

func TestPayRejectsForeignSubscription(t *testing.T) {
	subs := &memSubs{rows: map[uuid.UUID]*domain.Subscription{}}
	svc := newTestService(subs, &memLedger{rows: map[uuid.UUID]*domain.Transaction{}}, fixedRate{rate: 130}, &stubPusher{reference: "x"})

	q, err := svc.Checkout(context.Background(), writer, "basic")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	other := domain.Principal{UserID: "writer-2", Role: domain.RoleWriter, ApprovalStatus: domain.ApprovalApproved}
	if _, err := svc.Pay(context.Background(), other, q.SubscriptionID, "254700000003"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPayRequiresPhoneAndUsableRate(t *testing.T) {
	subs := &memSubs{rows: map[uuid.UUID]*domain.Subscription{}}
	ledger := &memLedger{rows: map[uuid.UUID]*domain.Transaction{}}
	svc := newTestService(subs, ledger, fixedRate{rate: 130}, &stubPusher{reference: "x"})

	q, err := svc.Checkout(context.Background(), writer, "basic")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if _, err := svc.Pay(context.Background(), writer, q.SubscriptionID, ""); !errors.Is(err, domain.ErrPhoneRequired) {
		t.Fatalf("err = %v, want ErrPhoneRequired", err)
	}

	// A collapsed rate quotes below the rail minimum and must be refused.
	low := newTestService(subs, ledger, fixedRate{rate: 0.1}, &stubPusher{reference: "x"})
	if _, err := low.Pay(context.Background(), writer, q.SubscriptionID, "254700000002"); !errors.Is(err, domain.ErrAmountTooLow) {
		t.Fatalf("err = %v, want ErrAmountTooLow", err)
	}
}
