package payment

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jamiljuma2/edulink/internal/domain"
	"github.com/jamiljuma2/edulink/internal/provider/lipana"
	"github.com/jamiljuma2/edulink/internal/provider/paypal"
)

type fakeLedger struct {
	rows    map[uuid.UUID]*domain.Transaction
	lookups int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{rows: map[uuid.UUID]*domain.Transaction{}}
}

func (f *fakeLedger) Create(_ context.Context, t *domain.Transaction) error {
	cp := *t
	cp.CreatedAt = time.Now()
	f.rows[t.ID] = &cp
	t.CreatedAt = cp.CreatedAt
	return nil
}

func (f *fakeLedger) GetByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	t, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeLedger) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	f.lookups++
	for _, t := range f.rows {
		if t.Reference != nil && *t.Reference == reference {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeLedger) GetByReferenceForUpdate(ctx context.Context, reference string) (*domain.Transaction, error) {
	return f.GetByReference(ctx, reference)
}

func (f *fakeLedger) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeLedger) UpdateStatus(_ context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	t, ok := f.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	if t.Status == status {
		return nil
	}
	if !t.Status.CanTransition(status) {
		return domain.ErrInvalidTransition
	}
	t.Status = status
	return nil
}

func (f *fakeLedger) SetReference(_ context.Context, id uuid.UUID, reference string, meta domain.Meta) error {
	t, ok := f.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Reference = &reference
	t.Meta = meta
	return nil
}

func (f *fakeLedger) SetStatusAndMeta(ctx context.Context, id uuid.UUID, status domain.TransactionStatus, meta domain.Meta) error {
	if err := f.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	f.rows[id].Meta = meta
	return nil
}

func (f *fakeLedger) ListByUser(_ context.Context, userID string, kinds ...domain.TransactionKind) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, t := range f.rows {
		if t.UserID != userID {
			continue
		}
		if len(kinds) > 0 {
			match := false
			for _, k := range kinds {
				if t.Kind == k {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeLedger) ListRecent(_ context.Context, limit int) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, t := range f.rows {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeWallets struct {
	rows map[string]*domain.Wallet
}

func newFakeWallets() *fakeWallets {
	return &fakeWallets{rows: map[string]*domain.Wallet{}}
}

func (f *fakeWallets) Get(_ context.Context, userID string) (*domain.Wallet, error) {
	w, ok := f.rows[userID]
	if !ok {
		return domain.EmptyWallet(userID), nil
	}
	cp := *w
	return &cp, nil
}

func (f *fakeWallets) Credit(_ context.Context, userID string, amount decimal.Decimal, currency domain.Currency) error {
	w, ok := f.rows[userID]
	if !ok {
		f.rows[userID] = &domain.Wallet{UserID: userID, Balance: amount, Currency: currency}
		return nil
	}
	w.Balance = w.Balance.Add(amount)
	return nil
}

func (f *fakeWallets) Debit(_ context.Context, userID string, amount decimal.Decimal) error {
	w, ok := f.rows[userID]
	if !ok || w.Balance.LessThan(amount) {
		return domain.ErrInsufficientBalance
	}
	w.Balance = w.Balance.Sub(amount)
	return nil
}

type fakeSubs struct {
	rows map[uuid.UUID]*domain.Subscription
}

func newFakeSubs() *fakeSubs {
	return &fakeSubs{rows: map[uuid.UUID]*domain.Subscription{}}
}

func (f *fakeSubs) Create(_ context.Context, s *domain.Subscription) error {
	cp := *s
	cp.CreatedAt = time.Now()
	f.rows[s.ID] = &cp
	return nil
}

func (f *fakeSubs) GetForWriter(_ context.Context, id uuid.UUID, writerID string) (*domain.Subscription, error) {
	s, ok := f.rows[id]
	if !ok || s.WriterID != writerID {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSubs) Activate(_ context.Context, id uuid.UUID) error {
	s, ok := f.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Active = true
	if s.StartsAt == nil {
		now := time.Now()
		s.StartsAt = &now
	}
	return nil
}

type fakeRunner struct{}

func (fakeRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePusher struct {
	reference string
	err       error
	calls     int
	lastPhone string
}

func (f *fakePusher) PushSTK(_ context.Context, phone string, amount decimal.Decimal) (*lipana.PushResponse, error) {
	f.calls++
	f.lastPhone = phone
	if f.err != nil {
		return nil, f.err
	}
	var resp lipana.PushResponse
	resp.Data.TransactionID = f.reference
	resp.Raw = json.RawMessage(`{"data":{"transactionId":"` + f.reference + `"}}`)
	return &resp, nil
}

type fakeCard struct {
	orderID    string
	approveURL string
	createErr  error
	captureErr error
	captured   int
}

func (f *fakeCard) CreateOrder(_ context.Context, req paypal.OrderRequest) (*paypal.Order, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	var o paypal.Order
	o.ID = f.orderID
	o.Links = []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	}{
		{Href: "https://paypal.test/self", Rel: "self"},
		{Href: f.approveURL, Rel: "approve"},
	}
	return &o, nil
}

func (f *fakeCard) CaptureOrder(_ context.Context, orderID string) (json.RawMessage, error) {
	f.captured++
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	return json.RawMessage(`{"status":"COMPLETED"}`), nil
}

func newTestService(ledger *fakeLedger, wallets *fakeWallets, subs *fakeSubs, pusher *fakePusher, card *fakeCard) *Service {
	return NewService(
		ledger, wallets, subs, fakeRunner{},
		pusher, card,
		CheckoutURLs{Return: "https://edulink.test/return", Cancel: "https://edulink.test/cancel"},
		zap.NewNop(),
	)
}
