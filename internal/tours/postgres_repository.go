package tours

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxQuerier is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores tour requests in the relational database. The
// list-valued columns (additional_listing_ids, selected_dates, time_slots,
// priority_slot) cross the boundary as JSONB and are typed everywhere else.
type PostgresRepository struct {
	db pgxQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("tours: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithQuerier allows injecting mocks for tests.
func NewPostgresRepositoryWithQuerier(q pgxQuerier) *PostgresRepository {
	return &PostgresRepository{db: q}
}

const tourColumns = `id, user_id, listing_id, additional_listing_ids, selected_dates,
		time_slots, contact_phone, contact_method, notes, preferred_times_summary,
		priority_slot, status, created_at, updated_at`

var activeStatuses = []string{string(StatusPending), string(StatusConfirmed), string(StatusContacted)}

// Insert persists a new row. A unique partial index on (user_id, listing_id)
// for active statuses backs the duplicate rule; violations surface as
// ErrDuplicateRequest.
func (r *PostgresRepository) Insert(ctx context.Context, req *TourRequest) (*TourRequest, error) {
	stored := *req
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	additional, err := marshalOrNil(stored.AdditionalListingIDs)
	if err != nil {
		return nil, fmt.Errorf("tours: encode additional listings: %w", err)
	}
	dates, err := json.Marshal(stored.SelectedDates)
	if err != nil {
		return nil, fmt.Errorf("tours: encode selected dates: %w", err)
	}
	slots, err := json.Marshal(stored.TimeSlots)
	if err != nil {
		return nil, fmt.Errorf("tours: encode time slots: %w", err)
	}
	prioritySlot, err := marshalOrNil(stored.PrioritySlot)
	if err != nil {
		return nil, fmt.Errorf("tours: encode priority slot: %w", err)
	}

	query := `
		INSERT INTO tour_requests (
			id, user_id, listing_id, additional_listing_ids, selected_dates,
			time_slots, contact_phone, contact_method, notes,
			preferred_times_summary, priority_slot, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err = r.db.QueryRow(ctx, query,
		stored.ID,
		stored.UserID,
		stored.ListingID,
		additional,
		dates,
		slots,
		stored.ContactPhone,
		string(stored.ContactMethod),
		stored.Notes,
		stored.PreferredTimesSummary,
		prioritySlot,
		string(stored.Status),
	).Scan(&stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateRequest
		}
		return nil, fmt.Errorf("tours: insert failed: %w", err)
	}

	return &stored, nil
}

// GetByID fetches a single request.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*TourRequest, error) {
	query := `SELECT ` + tourColumns + ` FROM tour_requests WHERE id = $1`
	req, err := scanTourRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("tours: select failed: %w", err)
	}
	return req, nil
}

// ListByUser returns every request of a user, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*TourRequest, error) {
	query := `
		SELECT ` + tourColumns + `
		FROM tour_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("tours: list by user: %w", err)
	}
	return collectTourRequests(rows)
}

// QueryActiveByUser returns a user's pending/confirmed/contacted requests.
func (r *PostgresRepository) QueryActiveByUser(ctx context.Context, userID string) ([]*TourRequest, error) {
	query := `
		SELECT ` + tourColumns + `
		FROM tour_requests
		WHERE user_id = $1 AND status = ANY($2)
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID, activeStatuses)
	if err != nil {
		return nil, fmt.Errorf("tours: query active by user: %w", err)
	}
	return collectTourRequests(rows)
}

// QueryActiveByListing returns active requests referencing the listing as
// primary or additional.
func (r *PostgresRepository) QueryActiveByListing(ctx context.Context, listingID string) ([]*TourRequest, error) {
	query := `
		SELECT ` + tourColumns + `
		FROM tour_requests
		WHERE status = ANY($2)
		  AND (listing_id = $1 OR additional_listing_ids @> to_jsonb($1::text))
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, listingID, activeStatuses)
	if err != nil {
		return nil, fmt.Errorf("tours: query active by listing: %w", err)
	}
	return collectTourRequests(rows)
}

// UpdateStatus transitions a request and bumps updated_at.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) (*TourRequest, error) {
	query := `
		UPDATE tour_requests
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + tourColumns + `
	`
	req, err := scanTourRequest(r.db.QueryRow(ctx, query, id, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("tours: update status: %w", err)
	}
	return req, nil
}

func scanTourRequest(row pgx.Row) (*TourRequest, error) {
	var (
		req          TourRequest
		additional   []byte
		dates        []byte
		slots        []byte
		prioritySlot []byte
		method       string
		status       string
	)
	err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.ListingID,
		&additional,
		&dates,
		&slots,
		&req.ContactPhone,
		&method,
		&req.Notes,
		&req.PreferredTimesSummary,
		&prioritySlot,
		&status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.ContactMethod = ContactMethod(method)
	req.Status = Status(status)

	if len(additional) > 0 {
		if err := json.Unmarshal(additional, &req.AdditionalListingIDs); err != nil {
			return nil, fmt.Errorf("decode additional listings: %w", err)
		}
	}
	if len(dates) > 0 {
		if err := json.Unmarshal(dates, &req.SelectedDates); err != nil {
			return nil, fmt.Errorf("decode selected dates: %w", err)
		}
	}
	if len(slots) > 0 {
		if err := json.Unmarshal(slots, &req.TimeSlots); err != nil {
			return nil, fmt.Errorf("decode time slots: %w", err)
		}
	}
	if len(prioritySlot) > 0 {
		var slot TimeSlot
		if err := json.Unmarshal(prioritySlot, &slot); err != nil {
			return nil, fmt.Errorf("decode priority slot: %w", err)
		}
		req.PrioritySlot = &slot
	}
	return &req, nil
}

func collectTourRequests(rows pgx.Rows) ([]*TourRequest, error) {
	defer rows.Close()

	var out []*TourRequest
	for rows.Next() {
		req, err := scanTourRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("tours: scan row: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tours: iterate rows: %w", err)
	}
	return out, nil
}

// marshalOrNil encodes v as JSON, or returns nil (SQL NULL) for nil values
// and empty slices.
func marshalOrNil(v any) ([]byte, error) {
	switch val := v.(type) {
	case []string:
		if len(val) == 0 {
			return nil, nil
		}
	case *TimeSlot:
		if val == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}
