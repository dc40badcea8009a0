package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jamiljuma2/edulink/internal/domain"
)

type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
}

type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `SELECT user_id, role, approval_status, full_name FROM profiles WHERE user_id = $1`

	var p domain.Profile
	err := pick(ctx, r.db).QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.Role, &p.ApprovalStatus, &p.FullName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
