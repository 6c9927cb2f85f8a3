package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

// Repository abstracts client persistence.
type Repository interface {
	Create(ctx context.Context, c *Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*Client, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, req ListClientsRequest) ([]Client, int, error)
	Update(ctx context.Context, c *Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddToTotalInvoiced(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const clientColumns = `id, owner_id, name, email, phone, address, notes, total_invoiced, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.Phone, &c.Address,
		&c.Notes, &c.TotalInvoiced, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("clients: scan: %w", err)
	}
	return &c, nil
}

func (r *pgRepository) Create(ctx context.Context, c *Client) error {
	query := `
		INSERT INTO clients (owner_id, name, email, phone, address, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, total_invoiced, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		c.OwnerID, c.Name, c.Email, c.Phone, c.Address, c.Notes,
	).Scan(&c.ID, &c.TotalInvoiced, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: client already exists", shared.ErrConflict)
		}
		return fmt.Errorf("clients: create: %w", err)
	}
	return nil
}

func (r *pgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	return scanClient(r.pool.QueryRow(ctx, query, id))
}

func (r *pgRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, req ListClientsRequest) ([]Client, int, error) {
	where := `WHERE owner_id = $1`
	args := []any{ownerID}
	if req.Search != "" {
		where += ` AND (name ILIKE $2 OR email ILIKE $2)`
		args = append(args, "%"+req.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM clients `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("clients: count: %w", err)
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
	query := fmt.Sprintf(`SELECT %s FROM clients %s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		clientColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("clients: list: %w", err)
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) Update(ctx context.Context, c *Client) error {
	query := `
		UPDATE clients
		SET name = $2, email = $3, phone = $4, address = $5, notes = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.Notes,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("clients: update: %w", err)
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("clients: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) AddToTotalInvoiced(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE clients SET total_invoiced = total_invoiced + $2, updated_at = NOW() WHERE id = $1`,
		id, amount)
	if err != nil {
		return fmt.Errorf("clients: add to total invoiced: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
