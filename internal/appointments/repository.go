package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

// Repository abstracts appointment persistence.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, req ListAppointmentsRequest) ([]Appointment, int, error)
	Update(ctx context.Context, a *Appointment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	// CountOverlapping counts open appointments of the owner colliding
	// with [start, end), excluding excludeID when non-nil.
	CountOverlapping(ctx context.Context, ownerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (int, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const appointmentColumns = `id, owner_id, client_name, client_email, client_phone,
	service_type, start_time, end_time, status, notes, address, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.OwnerID, &a.ClientName, &a.ClientEmail, &a.ClientPhone,
		&a.ServiceType, &a.StartTime, &a.EndTime, &a.Status,
		&a.Notes, &a.Address, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: scan: %w", err)
	}
	return &a, nil
}

func (r *pgRepository) Create(ctx context.Context, a *Appointment) error {
	query := `
		INSERT INTO appointments (
			owner_id, client_name, client_email, client_phone,
			service_type, start_time, end_time, status, notes, address
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		a.OwnerID, a.ClientName, a.ClientEmail, a.ClientPhone,
		a.ServiceType, a.StartTime, a.EndTime, a.Status, a.Notes, a.Address,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("appointments: create: %w", err)
	}
	return nil
}

func (r *pgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	return scanAppointment(r.pool.QueryRow(ctx, query, id))
}

func (r *pgRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, req ListAppointmentsRequest) ([]Appointment, int, error) {
	where := `WHERE owner_id = $1`
	args := []any{ownerID}
	if req.Status != "" {
		args = append(args, req.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if !req.From.IsZero() {
		args = append(args, req.From)
		where += fmt.Sprintf(` AND start_time >= $%d`, len(args))
	}
	if !req.To.IsZero() {
		args = append(args, req.To)
		where += fmt.Sprintf(` AND start_time < $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM appointments `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("appointments: count: %w", err)
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
	query := fmt.Sprintf(`SELECT %s FROM appointments %s ORDER BY start_time ASC LIMIT $%d OFFSET $%d`,
		appointmentColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("appointments: list: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *a)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) Update(ctx context.Context, a *Appointment) error {
	query := `
		UPDATE appointments
		SET client_name = $2, client_email = $3, client_phone = $4,
		    service_type = $5, start_time = $6, end_time = $7,
		    notes = $8, address = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		a.ID, a.ClientName, a.ClientEmail, a.ClientPhone,
		a.ServiceType, a.StartTime, a.EndTime, a.Notes, a.Address,
	).Scan(&a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("appointments: update: %w", err)
	}
	return nil
}

func (r *pgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE appointments SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status)
	if err != nil {
		return fmt.Errorf("appointments: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointments: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) CountOverlapping(ctx context.Context, ownerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (int, error) {
	query := `
		SELECT count(*)
		FROM appointments
		WHERE owner_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND start_time < $3 AND end_time > $2`
	args := []any{ownerID, start, end}
	if excludeID != nil {
		query += ` AND id <> $4`
		args = append(args, *excludeID)
	}
	var n int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("appointments: count overlapping: %w", err)
	}
	return n, nil
}
