package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository aggregates per-owner figures straight from the documents.
type Repository interface {
	Revenue(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error)
	Outstanding(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error)
	InvoiceCounts(ctx context.Context, ownerID uuid.UUID) (map[string]int, error)
	QuoteCounts(ctx context.Context, ownerID uuid.UUID) (map[string]int, error)
	ClientCount(ctx context.Context, ownerID uuid.UUID) (int, error)
	UpcomingBookings(ctx context.Context, ownerID uuid.UUID, from time.Time) (int, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Revenue(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM invoices WHERE owner_id = $1 AND status = 'paid'`,
		ownerID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("dashboard: revenue: %w", err)
	}
	return total, nil
}

func (r *pgRepository) Outstanding(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM invoices WHERE owner_id = $1 AND status IN ('pending', 'overdue')`,
		ownerID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("dashboard: outstanding: %w", err)
	}
	return total, nil
}

func (r *pgRepository) statusCounts(ctx context.Context, table string, ownerID uuid.UUID) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, count(*) FROM `+table+` WHERE owner_id = $1 GROUP BY status`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %s counts: %w", table, err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("dashboard: %s counts: %w", table, err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *pgRepository) InvoiceCounts(ctx context.Context, ownerID uuid.UUID) (map[string]int, error) {
	return r.statusCounts(ctx, "invoices", ownerID)
}

func (r *pgRepository) QuoteCounts(ctx context.Context, ownerID uuid.UUID) (map[string]int, error) {
	return r.statusCounts(ctx, "quotes", ownerID)
}

func (r *pgRepository) ClientCount(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM clients WHERE owner_id = $1`, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("dashboard: client count: %w", err)
	}
	return n, nil
}

func (r *pgRepository) UpcomingBookings(ctx context.Context, ownerID uuid.UUID, from time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM appointments
		WHERE owner_id = $1 AND status IN ('pending', 'confirmed') AND start_time >= $2`,
		ownerID, from).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("dashboard: upcoming bookings: %w", err)
	}
	return n, nil
}
