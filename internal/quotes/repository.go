package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HeisenPear/saas-localBizz/internal/invoicing"
	"github.com/HeisenPear/saas-localBizz/internal/platform/db"
	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

// Repository abstracts quote persistence.
type Repository interface {
	Create(ctx context.Context, q *Quote, prefix string, year int) error
	GetByID(ctx context.Context, id uuid.UUID) (*Quote, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, req ListQuotesRequest) ([]Quote, int, error)
	Update(ctx context.Context, q *Quote) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, acceptedAt *time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	// MarkExpired persists the expired flip for every sent quote past
	// its validity window and reports how many rows changed.
	MarkExpired(ctx context.Context, today time.Time) (int64, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const quoteColumns = `id, owner_id, client_id, quote_number,
	client_name, client_email, client_phone, client_address,
	status, issue_date, valid_until, line_items,
	subtotal, tax_total, total, notes, accepted_at, created_at, updated_at`

func scanQuote(row pgx.Row) (*Quote, error) {
	var q Quote
	err := row.Scan(
		&q.ID, &q.OwnerID, &q.ClientID, &q.Number,
		&q.ClientName, &q.ClientEmail, &q.ClientPhone, &q.ClientAddress,
		&q.Status, &q.IssueDate, &q.ValidUntil, &q.LineItems,
		&q.Subtotal, &q.TaxTotal, &q.Total, &q.Notes,
		&q.AcceptedAt, &q.CreatedAt, &q.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("quotes: scan: %w", err)
	}
	return &q, nil
}

func (r *pgRepository) Create(ctx context.Context, q *Quote, prefix string, year int) error {
	// The counter upsert serializes concurrent creators on the row lock;
	// relies on db.WithTx running at ReadCommitted.
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var seq int
		err := tx.QueryRow(ctx, `
			INSERT INTO quote_sequences (owner_id, year, seq)
			VALUES ($1, $2, 1)
			ON CONFLICT (owner_id, year)
			DO UPDATE SET seq = quote_sequences.seq + 1
			RETURNING seq`,
			q.OwnerID, year,
		).Scan(&seq)
		if err != nil {
			return fmt.Errorf("quotes: next sequence: %w", err)
		}
		if seq > invoicing.MaxSequence {
			return fmt.Errorf("%w: owner reached %d quotes in %d", shared.ErrSequenceExhausted, invoicing.MaxSequence, year)
		}
		q.Number = invoicing.FormatNumber(prefix, year, seq)

		return tx.QueryRow(ctx, `
			INSERT INTO quotes (
				owner_id, client_id, quote_number,
				client_name, client_email, client_phone, client_address,
				status, issue_date, valid_until, line_items,
				subtotal, tax_total, total, notes
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			RETURNING id, created_at, updated_at`,
			q.OwnerID, q.ClientID, q.Number,
			q.ClientName, q.ClientEmail, q.ClientPhone, q.ClientAddress,
			q.Status, q.IssueDate, q.ValidUntil, q.LineItems,
			q.Subtotal, q.TaxTotal, q.Total, q.Notes,
		).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	})
	if err != nil {
		if db.IsConflict(err) {
			return fmt.Errorf("%w: quote number assignment raced a concurrent create", shared.ErrConflict)
		}
		if errors.Is(err, shared.ErrSequenceExhausted) {
			return err
		}
		return fmt.Errorf("quotes: create: %w", err)
	}
	return nil
}

func (r *pgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1`
	return scanQuote(r.pool.QueryRow(ctx, query, id))
}

func (r *pgRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, req ListQuotesRequest) ([]Quote, int, error) {
	where := `WHERE owner_id = $1`
	args := []any{ownerID}
	if req.Status != "" {
		where += ` AND status = $2`
		args = append(args, req.Status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM quotes `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("quotes: count: %w", err)
	}

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`SELECT %s FROM quotes %s ORDER BY quote_number DESC LIMIT $%d OFFSET $%d`,
		quoteColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("quotes: list: %w", err)
	}
	defer rows.Close()

	var out []Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *q)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) Update(ctx context.Context, q *Quote) error {
	query := `
		UPDATE quotes
		SET issue_date = $2, valid_until = $3, line_items = $4,
		    subtotal = $5, tax_total = $6, total = $7,
		    notes = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		q.ID, q.IssueDate, q.ValidUntil, q.LineItems,
		q.Subtotal, q.TaxTotal, q.Total, q.Notes,
	).Scan(&q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("quotes: update: %w", err)
	}
	return nil
}

func (r *pgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, acceptedAt *time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE quotes SET status = $2, accepted_at = $3, updated_at = NOW() WHERE id = $1`,
		id, status, acceptedAt)
	if err != nil {
		return fmt.Errorf("quotes: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("quotes: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) MarkExpired(ctx context.Context, today time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE quotes
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'sent' AND valid_until < $1::date`,
		today)
	if err != nil {
		return 0, fmt.Errorf("quotes: mark expired: %w", err)
	}
	return tag.RowsAffected(), nil
}
