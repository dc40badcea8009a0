package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds the single running balance per account. It is mutated only by
// the reconciler (credits) and payout approval (debits), never directly by a
// user request.
type Wallet struct {
	UserID    string
	Balance   decimal.Decimal
	Currency  Currency
	UpdatedAt time.Time
}

// EmptyWallet is what callers see before the first credit creates a row.
func EmptyWallet(userID string) *Wallet {
	return &Wallet{
		UserID:   userID,
		Balance:  decimal.Zero,
		Currency: KES,
	}
}
