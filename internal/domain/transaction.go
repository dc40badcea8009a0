package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	KindTopUp        TransactionKind = "topup"
	KindSubscription TransactionKind = "subscription"
	KindPayout       TransactionKind = "payout"
)

type TransactionStatus string

const (
	TxStatusPending   TransactionStatus = "pending"
	TxStatusCompleted TransactionStatus = "completed"
	TxStatusSuccess   TransactionStatus = "success"
	TxStatusFailed    TransactionStatus = "failed"
	TxStatusRejected  TransactionStatus = "rejected"
)

// IsTerminal reports whether no further rail outcome may change the status.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TxStatusCompleted, TxStatusSuccess, TxStatusFailed, TxStatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether the edge from s to next is legal.
// Re-entering the same status is always allowed; only terminal statuses
// refuse every other edge. Intermediate rail statuses passed through by
// NormalizeStatus (say "processing") keep the row open, so a later
// completing delivery can still land.
func (s TransactionStatus) CanTransition(next TransactionStatus) bool {
	if s == next {
		return true
	}
	return !s.IsTerminal()
}

// Transaction is one attempted money movement. Rows are append-mostly:
// created pending by an initiator, transitioned by the reconciler, never
// deleted.
type Transaction struct {
	ID        uuid.UUID
	UserID    string
	Kind      TransactionKind
	Amount    decimal.Decimal
	Currency  Currency
	Status    TransactionStatus
	Reference *string // rail-assigned id, nil until the rail accepts
	Meta      Meta
	CreatedAt time.Time
}

// HasReference reports whether the rail has assigned an external id yet.
func (t *Transaction) HasReference() bool {
	return t.Reference != nil && *t.Reference != ""
}

// Rail identifies the external processor a transaction was handed to.
type Rail string

const (
	RailLipana Rail = "lipana"
	RailPayPal Rail = "paypal"
)

// Meta is the kind-specific payload attached to a transaction. Variants are
// tagged by the owning transaction's kind, so decoding is exhaustive.
type Meta interface {
	metaKind() TransactionKind
}

// TopUpMeta travels with topup transactions for either rail. Phone is set
// for mobile push, OrderID mirrors the PayPal order reference, and Payload
// keeps the last raw provider response for audit.
type TopUpMeta struct {
	Rail    Rail            `json:"rail"`
	Phone   string          `json:"phone,omitempty"`
	OrderID string          `json:"order_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (TopUpMeta) metaKind() TransactionKind { return KindTopUp }

// SubscriptionMeta links a subscription-kind transaction to the pending
// subscription it pays for, with the FX terms the price was quoted at.
type SubscriptionMeta struct {
	SubscriptionID uuid.UUID       `json:"subscription_id"`
	USDAmount      decimal.Decimal `json:"usd_amount"`
	Rate           float64         `json:"usd_to_kes"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

func (SubscriptionMeta) metaKind() TransactionKind { return KindSubscription }

// PayoutMeta records where an approved withdrawal should be sent.
type PayoutMeta struct {
	Phone string `json:"phone"`
}

func (PayoutMeta) metaKind() TransactionKind { return KindPayout }

// EncodeMeta serializes a meta variant for storage.
func EncodeMeta(m Meta) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// DecodeMeta restores the variant matching the transaction kind.
func DecodeMeta(kind TransactionKind, raw []byte) (Meta, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	switch kind {
	case KindTopUp:
		var m TopUpMeta
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case KindSubscription:
		var m SubscriptionMeta
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case KindPayout:
		var m PayoutMeta
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, ErrUnknownKind
}
