package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores profiles in the relational database.
type PostgresRepository struct {
	db pgxQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("profiles: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithQuerier allows injecting mocks for tests.
func NewPostgresRepositoryWithQuerier(q pgxQuerier) *PostgresRepository {
	return &PostgresRepository{db: q}
}

// GetByID fetches a profile row.
func (r *PostgresRepository) GetByID(ctx context.Context, userID string) (*Profile, error) {
	query := `
		SELECT id, email, phone, first_name, last_name, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	var p Profile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.ID,
		&p.Email,
		&p.Phone,
		&p.FirstName,
		&p.LastName,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("profiles: select failed: %w", err)
	}
	return &p, nil
}

// UpdatePhone stores a new on-file phone number.
func (r *PostgresRepository) UpdatePhone(ctx context.Context, userID, phone string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE profiles SET phone = $2, updated_at = now() WHERE id = $1`,
		userID, phone,
	)
	if err != nil {
		return fmt.Errorf("profiles: update phone: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}
