package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jamiljuma2/edulink/internal/domain"
)

type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByReference(ctx context.Context, reference string) (*domain.Transaction, error)
	// GetByReferenceForUpdate locks the row until the surrounding Runner
	// transaction ends. Concurrent deliveries of the same reference
	// serialize here.
	GetByReferenceForUpdate(ctx context.Context, reference string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error
	SetReference(ctx context.Context, id uuid.UUID, reference string, meta domain.Meta) error
	SetStatusAndMeta(ctx context.Context, id uuid.UUID, status domain.TransactionStatus, meta domain.Meta) error
	ListByUser(ctx context.Context, userID string, kinds ...domain.TransactionKind) ([]*domain.Transaction, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Transaction, error)
}

type transactionRepo struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) TransactionRepository {
	return &transactionRepo{db: db}
}

const txColumns = `id, user_id, kind, amount::text, currency, status, reference, meta, created_at`

func (r *transactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	metaJSON, err := domain.EncodeMeta(t.Meta)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}

	query := `
		INSERT INTO transactions (id, user_id, kind, amount, currency, status, reference, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`
	return pick(ctx, r.db).QueryRow(ctx, query,
		t.ID, t.UserID, t.Kind, t.Amount.String(), t.Currency, t.Status, t.Reference, metaJSON,
	).Scan(&t.CreatedAt)
}

func (r *transactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE id = $1`
	return r.scanOne(pick(ctx, r.db).QueryRow(ctx, query, id))
}

func (r *transactionRepo) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE reference = $1`
	return r.scanOne(pick(ctx, r.db).QueryRow(ctx, query, reference))
}

func (r *transactionRepo) GetByReferenceForUpdate(ctx context.Context, reference string) (*domain.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE reference = $1 FOR UPDATE`
	return r.scanOne(pick(ctx, r.db).QueryRow(ctx, query, reference))
}

func (r *transactionRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`
	return r.scanOne(pick(ctx, r.db).QueryRow(ctx, query, id))
}

// UpdateStatus persists a lifecycle transition. Terminal rows accept no new
// status; anything still in flight (pending or an intermediate rail status)
// is writable. Re-writing the current status is a silent no-op.
func (r *transactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	query := `
		UPDATE transactions SET status = $2
		WHERE id = $1
		  AND (status = $2 OR status NOT IN ('completed', 'success', 'failed', 'rejected'))`
	tag, err := pick(ctx, r.db).Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *transactionRepo) SetReference(ctx context.Context, id uuid.UUID, reference string, meta domain.Meta) error {
	metaJSON, err := domain.EncodeMeta(meta)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	query := `UPDATE transactions SET reference = $2, meta = $3 WHERE id = $1`
	_, err = pick(ctx, r.db).Exec(ctx, query, id, reference, metaJSON)
	return err
}

func (r *transactionRepo) SetStatusAndMeta(ctx context.Context, id uuid.UUID, status domain.TransactionStatus, meta domain.Meta) error {
	if err := r.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	metaJSON, err := domain.EncodeMeta(meta)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	query := `UPDATE transactions SET meta = $2 WHERE id = $1`
	_, err = pick(ctx, r.db).Exec(ctx, query, id, metaJSON)
	return err
}

func (r *transactionRepo) ListByUser(ctx context.Context, userID string, kinds ...domain.TransactionKind) ([]*domain.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{userID}
	if len(kinds) > 0 {
		query += ` AND kind = ANY($2)`
		ks := make([]string, len(kinds))
		for i, k := range kinds {
			ks[i] = string(k)
		}
		args = append(args, ks)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := pick(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *transactionRepo) ListRecent(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions ORDER BY created_at DESC LIMIT $1`
	rows, err := pick(ctx, r.db).Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *transactionRepo) scanOne(row pgx.Row) (*domain.Transaction, error) {
	var (
		t       domain.Transaction
		amount  string
		rawMeta []byte
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Kind, &amount, &t.Currency, &t.Status, &t.Reference, &rawMeta, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	if t.Meta, err = domain.DecodeMeta(t.Kind, rawMeta); err != nil {
		return nil, fmt.Errorf("decode meta: %w", err)
	}
	return &t, nil
}

func (r *transactionRepo) scanAll(rows pgx.Rows) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for rows.Next() {
		t, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
