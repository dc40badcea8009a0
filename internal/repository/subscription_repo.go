package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jamiljuma2/edulink/internal/domain"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, s *domain.Subscription) error
	GetForWriter(ctx context.Context, id uuid.UUID, writerID string) (*domain.Subscription, error)
	// Activate flips the subscription live and stamps the activation time.
	// Re-activating is harmless; starts_at keeps its first value.
	Activate(ctx context.Context, id uuid.UUID) error
}

type subscriptionRepo struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

func (r *subscriptionRepo) Create(ctx context.Context, s *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, writer_id, plan, tasks_per_day, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	return pick(ctx, r.db).QueryRow(ctx, query,
		s.ID, s.WriterID, s.Plan, s.TasksPerDay, s.Active,
	).Scan(&s.CreatedAt)
}

func (r *subscriptionRepo) GetForWriter(ctx context.Context, id uuid.UUID, writerID string) (*domain.Subscription, error) {
	query := `
		SELECT id, writer_id, plan, tasks_per_day, active, starts_at, created_at
		FROM subscriptions WHERE id = $1 AND writer_id = $2`

	var s domain.Subscription
	err := pick(ctx, r.db).QueryRow(ctx, query, id, writerID).Scan(
		&s.ID, &s.WriterID, &s.Plan, &s.TasksPerDay, &s.Active, &s.StartsAt, &s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *subscriptionRepo) Activate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE subscriptions
		SET active = true, starts_at = COALESCE(starts_at, NOW())
		WHERE id = $1`
	tag, err := pick(ctx, r.db).Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
