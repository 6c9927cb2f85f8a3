package invoicing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HeisenPear/saas-localBizz/internal/platform/db"
	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

// Repository abstracts invoice persistence.
type Repository interface {
	// Create assigns the next gap-free number for (owner, year) and
	// inserts the invoice in one transaction.
	Create(ctx context.Context, inv *Invoice, prefix string, year int) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, req ListInvoicesRequest) ([]Invoice, int, error)
	Update(ctx context.Context, inv *Invoice) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, paidAt *time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	// MarkOverdue persists the overdue flip for every open invoice past
	// its due date and reports how many rows changed.
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const invoiceColumns = `id, owner_id, client_id, invoice_number,
	client_name, client_email, client_phone, client_address,
	status, invoice_date, due_date, line_items,
	subtotal, tax_total, total, notes, terms, paid_at, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.OwnerID, &inv.ClientID, &inv.Number,
		&inv.ClientName, &inv.ClientEmail, &inv.ClientPhone, &inv.ClientAddress,
		&inv.Status, &inv.InvoiceDate, &inv.DueDate, &inv.LineItems,
		&inv.Subtotal, &inv.TaxTotal, &inv.Total, &inv.Notes, &inv.Terms,
		&inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invoicing: scan: %w", err)
	}
	return &inv, nil
}

func (r *pgRepository) Create(ctx context.Context, inv *Invoice, prefix string, year int) error {
	// The counter upsert serializes concurrent creators on the row lock;
	// losers block, then take the next seq, so numbers stay unique and
	// gap-free. Relies on db.WithTx running at ReadCommitted.
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var seq int
		err := tx.QueryRow(ctx, `
			INSERT INTO invoice_sequences (owner_id, year, seq)
			VALUES ($1, $2, 1)
			ON CONFLICT (owner_id, year)
			DO UPDATE SET seq = invoice_sequences.seq + 1
			RETURNING seq`,
			inv.OwnerID, year,
		).Scan(&seq)
		if err != nil {
			return fmt.Errorf("invoicing: next sequence: %w", err)
		}
		if seq > MaxSequence {
			return fmt.Errorf("%w: owner reached %d invoices in %d", shared.ErrSequenceExhausted, MaxSequence, year)
		}
		inv.Number = FormatNumber(prefix, year, seq)

		return tx.QueryRow(ctx, `
			INSERT INTO invoices (
				owner_id, client_id, invoice_number,
				client_name, client_email, client_phone, client_address,
				status, invoice_date, due_date, line_items,
				subtotal, tax_total, total, notes, terms
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			RETURNING id, created_at, updated_at`,
			inv.OwnerID, inv.ClientID, inv.Number,
			inv.ClientName, inv.ClientEmail, inv.ClientPhone, inv.ClientAddress,
			inv.Status, inv.InvoiceDate, inv.DueDate, inv.LineItems,
			inv.Subtotal, inv.TaxTotal, inv.Total, inv.Notes, inv.Terms,
		).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	})
	if err != nil {
		if db.IsConflict(err) {
			return fmt.Errorf("%w: invoice number assignment raced a concurrent create", shared.ErrConflict)
		}
		if errors.Is(err, shared.ErrSequenceExhausted) {
			return err
		}
		return fmt.Errorf("invoicing: create: %w", err)
	}
	return nil
}

func (r *pgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	return scanInvoice(r.pool.QueryRow(ctx, query, id))
}

func (r *pgRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, req ListInvoicesRequest) ([]Invoice, int, error) {
	where := `WHERE owner_id = $1`
	args := []any{ownerID}
	if req.Status != "" {
		where += ` AND status = $2`
		args = append(args, req.Status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM invoices `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("invoicing: count: %w", err)
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
	query := fmt.Sprintf(`SELECT %s FROM invoices %s ORDER BY invoice_number DESC LIMIT $%d OFFSET $%d`,
		invoiceColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("invoicing: list: %w", err)
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *inv)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) Update(ctx context.Context, inv *Invoice) error {
	query := `
		UPDATE invoices
		SET invoice_date = $2, due_date = $3, line_items = $4,
		    subtotal = $5, tax_total = $6, total = $7,
		    notes = $8, terms = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		inv.ID, inv.InvoiceDate, inv.DueDate, inv.LineItems,
		inv.Subtotal, inv.TaxTotal, inv.Total, inv.Notes, inv.Terms,
	).Scan(&inv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("invoicing: update: %w", err)
	}
	return nil
}

func (r *pgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, paidAt *time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invoices SET status = $2, paid_at = $3, updated_at = NOW() WHERE id = $1`,
		id, status, paidAt)
	if err != nil {
		return fmt.Errorf("invoicing: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("invoicing: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invoices
		SET status = 'overdue', updated_at = NOW()
		WHERE status IN ('draft', 'pending') AND due_date < $1::date`,
		today)
	if err != nil {
		return 0, fmt.Errorf("invoicing: mark overdue: %w", err)
	}
	return tag.RowsAffected(), nil
}
