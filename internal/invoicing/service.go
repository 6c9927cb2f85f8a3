package invoicing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/HeisenPear/saas-localBizz/internal/clients"
	"github.com/HeisenPear/saas-localBizz/internal/money"
	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

// French VAT rates accepted on invoice lines.
var allowedTaxRates = []decimal.Decimal{
	decimal.Zero,
	decimal.NewFromFloat(5.5),
	decimal.NewFromInt(10),
	decimal.NewFromInt(20),
}

func validTaxRate(rate decimal.Decimal) bool {
	for _, r := range allowedTaxRates {
		if rate.Equal(r) {
			return true
		}
	}
	return false
}

// Service implements the invoice lifecycle.
type Service struct {
	repo      Repository
	directory clients.Directory
	prefix    string
	log       *slog.Logger
	now       func() time.Time
}

// NewService constructs a Service. prefix is the document number prefix,
// e.g. "FAC". A nil log falls back to the process default.
func NewService(repo Repository, directory clients.Directory, prefix string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, directory: directory, prefix: prefix, log: log, now: time.Now}
}

func buildLines(reqs []LineItemRequest) ([]LineItem, money.Totals, error) {
	lines := make([]LineItem, 0, len(reqs))
	calc := make([]money.Line, 0, len(reqs))
	for i, lr := range reqs {
		if !validTaxRate(lr.TaxRate) {
			return nil, money.Totals{}, fmt.Errorf("%w: line %d: unsupported VAT rate %s", shared.ErrInvalidInput, i+1, lr.TaxRate)
		}
		amount, err := money.LineAmount(lr.Quantity, lr.UnitPrice)
		if err != nil {
			return nil, money.Totals{}, fmt.Errorf("line %d: %w", i+1, err)
		}
		lines = append(lines, LineItem{
			Description: lr.Description,
			Quantity:    lr.Quantity,
			UnitPrice:   lr.UnitPrice,
			TaxRate:     lr.TaxRate,
			Amount:      amount,
		})
		calc = append(calc, money.Line{Quantity: lr.Quantity, UnitPrice: lr.UnitPrice, TaxRate: lr.TaxRate})
	}
	totals, err := money.Compute(calc)
	if err != nil {
		return nil, money.Totals{}, err
	}
	return lines, totals, nil
}

// submitReady enforces the issue guard: a client must be attached and
// the first line must carry a description.
func submitReady(clientID *uuid.UUID, lines []LineItem) error {
	if clientID == nil || *clientID == uuid.Nil {
		return fmt.Errorf("%w: a client must be selected before issuing", shared.ErrInvalidInput)
	}
	if len(lines) == 0 || strings.TrimSpace(lines[0].Description) == "" {
		return fmt.Errorf("%w: the first line item needs a description before issuing", shared.ErrInvalidInput)
	}
	return nil
}

func (s *Service) owned(ctx context.Context, ownerID, id uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.OwnerID != ownerID {
		return nil, shared.ErrUnauthorized
	}
	return inv, nil
}

// Create builds a new invoice as draft or pending. The number is
// assigned by the repository inside the insert transaction; callers may
// retry once on shared.ErrConflict.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req CreateInvoiceRequest) (*Invoice, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = StatusDraft
	}
	if status != StatusDraft && status != StatusPending {
		return nil, fmt.Errorf("%w: new invoices start as draft or pending, not %s", shared.ErrInvalidInput, status)
	}
	if req.DueDate.Before(req.InvoiceDate) {
		return nil, fmt.Errorf("%w: due date precedes invoice date", shared.ErrInvalidInput)
	}

	lines, totals, err := buildLines(req.LineItems)
	if err != nil {
		return nil, err
	}
	if status == StatusPending {
		if err := submitReady(req.ClientID, lines); err != nil {
			return nil, err
		}
	}

	inv := &Invoice{
		OwnerID:     ownerID,
		ClientID:    req.ClientID,
		Status:      status,
		InvoiceDate: req.InvoiceDate,
		DueDate:     req.DueDate,
		LineItems:   lines,
		Subtotal:    totals.Subtotal,
		TaxTotal:    totals.TaxTotal,
		Total:       totals.Total,
		Notes:       req.Notes,
		Terms:       req.Terms,
	}
	if req.ClientID != nil && *req.ClientID != uuid.Nil {
		snap, err := s.directory.Snapshot(ctx, ownerID, *req.ClientID)
		if err != nil {
			return nil, err
		}
		inv.ClientName = snap.Name
		inv.ClientEmail = snap.Email
		inv.ClientPhone = snap.Phone
		inv.ClientAddress = snap.Address
	}

	if err := s.repo.Create(ctx, inv, s.prefix, s.now().Year()); err != nil {
		return nil, err
	}
	return inv, nil
}

// Get returns one invoice with its read-time effective status.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Invoice, error) {
	inv, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	inv.Status = inv.EffectiveStatus(s.now())
	return inv, nil
}

// List returns the owner's invoices with effective statuses applied.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, req ListInvoicesRequest) (*ListInvoicesResponse, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %s", shared.ErrInvalidInput, req.Status)
	}
	items, total, err := s.repo.ListByOwner(ctx, ownerID, req)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range items {
		items[i].Status = items[i].EffectiveStatus(now)
	}
	return &ListInvoicesResponse{
		Invoices:   items,
		Pagination: shared.NewPagination(req.Page, req.PerPage, total),
	}, nil
}

// Update replaces the editable fields of a draft or pending invoice and
// recomputes its totals. The number and client snapshot never change.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, req UpdateInvoiceRequest) (*Invoice, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}
	inv, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusDraft && inv.Status != StatusPending {
		return nil, fmt.Errorf("%w: %s invoices are read-only", shared.ErrInvalidTransition, inv.Status)
	}
	if req.DueDate.Before(req.InvoiceDate) {
		return nil, fmt.Errorf("%w: due date precedes invoice date", shared.ErrInvalidInput)
	}
	lines, totals, err := buildLines(req.LineItems)
	if err != nil {
		return nil, err
	}

	inv.InvoiceDate = req.InvoiceDate
	inv.DueDate = req.DueDate
	inv.LineItems = lines
	inv.Subtotal = totals.Subtotal
	inv.TaxTotal = totals.TaxTotal
	inv.Total = totals.Total
	inv.Notes = req.Notes
	inv.Terms = req.Terms
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) transition(ctx context.Context, ownerID, id uuid.UUID, to Status) (*Invoice, error) {
	inv, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !inv.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s → %s", shared.ErrInvalidTransition, inv.Status, to)
	}
	var paidAt *time.Time
	if to == StatusPaid {
		t := s.now()
		paidAt = &t
	}
	if err := s.repo.UpdateStatus(ctx, id, to, paidAt); err != nil {
		return nil, err
	}
	inv.Status = to
	inv.PaidAt = paidAt
	return inv, nil
}

// Submit issues a draft invoice, moving it to pending.
func (s *Service) Submit(ctx context.Context, ownerID, id uuid.UUID) (*Invoice, error) {
	inv, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !inv.Status.CanTransition(StatusPending) {
		return nil, fmt.Errorf("%w: %s → %s", shared.ErrInvalidTransition, inv.Status, StatusPending)
	}
	if err := submitReady(inv.ClientID, inv.LineItems); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusPending, nil); err != nil {
		return nil, err
	}
	inv.Status = StatusPending
	return inv, nil
}

// MarkPaid settles an open invoice and feeds the client rollup. The
// rollup is advisory, so a rollup failure never unwinds the payment.
func (s *Service) MarkPaid(ctx context.Context, ownerID, id uuid.UUID) (*Invoice, error) {
	inv, err := s.transition(ctx, ownerID, id, StatusPaid)
	if err != nil {
		return nil, err
	}
	if inv.ClientID != nil && *inv.ClientID != uuid.Nil {
		if err := s.directory.RecordInvoiced(ctx, ownerID, *inv.ClientID, inv.Total); err != nil {
			s.log.Warn("client rollup update failed",
				slog.String("invoice_id", inv.ID.String()),
				slog.Any("error", err))
		}
	}
	return inv, nil
}

// Cancel voids a non-terminal invoice.
func (s *Service) Cancel(ctx context.Context, ownerID, id uuid.UUID) (*Invoice, error) {
	return s.transition(ctx, ownerID, id, StatusCancelled)
}

// Delete removes an invoice outright.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// SweepOverdue persists the overdue flip for every open invoice past
// due, across all owners. Run periodically by the worker.
func (s *Service) SweepOverdue(ctx context.Context) (int64, error) {
	return s.repo.MarkOverdue(ctx, s.now())
}
