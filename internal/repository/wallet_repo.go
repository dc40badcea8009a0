package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jamiljuma2/edulink/internal/domain"
)

type WalletRepository interface {
	// Get never errors on a missing wallet; it returns the zero-balance
	// default instead.
	Get(ctx context.Context, userID string) (*domain.Wallet, error)
	Credit(ctx context.Context, userID string, amount decimal.Decimal, currency domain.Currency) error
	Debit(ctx context.Context, userID string, amount decimal.Decimal) error
}

type walletRepo struct {
	db *pgxpool.Pool
}

func NewWalletRepository(db *pgxpool.Pool) WalletRepository {
	return &walletRepo{db: db}
}

func (r *walletRepo) Get(ctx context.Context, userID string) (*domain.Wallet, error) {
	query := `SELECT user_id, balance::text, currency, updated_at FROM wallets WHERE user_id = $1`

	var (
		w       domain.Wallet
		balance string
	)
	err := pick(ctx, r.db).QueryRow(ctx, query, userID).Scan(&w.UserID, &balance, &w.Currency, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.EmptyWallet(userID), nil
	}
	if err != nil {
		return nil, err
	}
	if w.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}
	return &w, nil
}

// Credit adds amount as a single upsert so concurrent credits cannot lose an
// update. An existing wallet keeps its currency of record; the given
// currency only seeds a freshly created row.
func (r *walletRepo) Credit(ctx context.Context, userID string, amount decimal.Decimal, currency domain.Currency) error {
	query := `
		INSERT INTO wallets (user_id, balance, currency, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET balance = wallets.balance + EXCLUDED.balance, updated_at = NOW()`
	_, err := pick(ctx, r.db).Exec(ctx, query, userID, amount.String(), currency)
	return err
}

// Debit reduces the balance only when it covers the amount; the condition
// lives in the UPDATE itself so a racing credit or debit cannot drive the
// balance negative.
func (r *walletRepo) Debit(ctx context.Context, userID string, amount decimal.Decimal) error {
	query := `
		UPDATE wallets SET balance = balance - $2, updated_at = NOW()
		WHERE user_id = $1 AND balance >= $2`
	tag, err := pick(ctx, r.db).Exec(ctx, query, userID, amount.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}
