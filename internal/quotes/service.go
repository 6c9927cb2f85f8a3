package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/HeisenPear/saas-localBizz/internal/clients"
	"github.com/HeisenPear/saas-localBizz/internal/invoicing"
	"github.com/HeisenPear/saas-localBizz/internal/money"
	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

const defaultDueInDays = 30

// InvoiceCreator is the port into the invoicing module used when an
// accepted quote is converted.
type InvoiceCreator interface {
	Create(ctx context.Context, ownerID uuid.UUID, req invoicing.CreateInvoiceRequest) (*invoicing.Invoice, error)
}

// Service implements the quote lifecycle.
type Service struct {
	repo      Repository
	directory clients.Directory
	invoices  InvoiceCreator
	prefix    string
	now       func() time.Time
}

// NewService constructs a Service. prefix is the document number prefix,
// e.g. "DEV".
func NewService(repo Repository, directory clients.Directory, invoices InvoiceCreator, prefix string) *Service {
	return &Service{repo: repo, directory: directory, invoices: invoices, prefix: prefix, now: time.Now}
}

func (s *Service) owned(ctx context.Context, ownerID, id uuid.UUID) (*Quote, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.OwnerID != ownerID {
		return nil, shared.ErrUnauthorized
	}
	return q, nil
}

func buildLines(reqs []invoicing.LineItemRequest) ([]invoicing.LineItem, money.Totals, error) {
	lines := make([]invoicing.LineItem, 0, len(reqs))
	calc := make([]money.Line, 0, len(reqs))
	for i, lr := range reqs {
		amount, err := money.LineAmount(lr.Quantity, lr.UnitPrice)
		if err != nil {
			return nil, money.Totals{}, fmt.Errorf("line %d: %w", i+1, err)
		}
		lines = append(lines, invoicing.LineItem{
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

// Create builds a new quote as draft or sent.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req CreateQuoteRequest) (*Quote, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = StatusDraft
	}
	if status != StatusDraft && status != StatusSent {
		return nil, fmt.Errorf("%w: new quotes start as draft or sent, not %s", shared.ErrInvalidInput, status)
	}
	if req.ValidUntil.Before(req.IssueDate) {
		return nil, fmt.Errorf("%w: validity window ends before issue date", shared.ErrInvalidInput)
	}
	if status == StatusSent && (req.ClientID == nil || *req.ClientID == uuid.Nil) {
		return nil, fmt.Errorf("%w: a client must be selected before sending", shared.ErrInvalidInput)
	}

	lines, totals, err := buildLines(req.LineItems)
	if err != nil {
		return nil, err
	}

	q := &Quote{
		OwnerID:    ownerID,
		ClientID:   req.ClientID,
		Status:     status,
		IssueDate:  req.IssueDate,
		ValidUntil: req.ValidUntil,
		LineItems:  lines,
		Subtotal:   totals.Subtotal,
		TaxTotal:   totals.TaxTotal,
		Total:      totals.Total,
		Notes:      req.Notes,
	}
	if req.ClientID != nil && *req.ClientID != uuid.Nil {
		snap, err := s.directory.Snapshot(ctx, ownerID, *req.ClientID)
		if err != nil {
			return nil, err
		}
		q.ClientName = snap.Name
		q.ClientEmail = snap.Email
		q.ClientPhone = snap.Phone
		q.ClientAddress = snap.Address
	}

	if err := s.repo.Create(ctx, q, s.prefix, s.now().Year()); err != nil {
		return nil, err
	}
	return q, nil
}

// Get returns one quote with its read-time effective status.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Quote, error) {
	q, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	q.Status = q.EffectiveStatus(s.now())
	return q, nil
}

// List returns the owner's quotes with effective statuses applied.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, req ListQuotesRequest) (*ListQuotesResponse, error) {
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
	return &ListQuotesResponse{
		Quotes:     items,
		Pagination: shared.NewPagination(req.Page, req.PerPage, total),
	}, nil
}

// Update replaces the editable fields of a draft or sent quote and
// recomputes its totals.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, req UpdateQuoteRequest) (*Quote, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}
	q, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if q.Status != StatusDraft && q.Status != StatusSent {
		return nil, fmt.Errorf("%w: %s quotes are read-only", shared.ErrInvalidTransition, q.Status)
	}
	if req.ValidUntil.Before(req.IssueDate) {
		return nil, fmt.Errorf("%w: validity window ends before issue date", shared.ErrInvalidInput)
	}
	lines, totals, err := buildLines(req.LineItems)
	if err != nil {
		return nil, err
	}

	q.IssueDate = req.IssueDate
	q.ValidUntil = req.ValidUntil
	q.LineItems = lines
	q.Subtotal = totals.Subtotal
	q.TaxTotal = totals.TaxTotal
	q.Total = totals.Total
	q.Notes = req.Notes
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *Service) transition(ctx context.Context, ownerID, id uuid.UUID, to Status) (*Quote, error) {
	q, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !q.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s → %s", shared.ErrInvalidTransition, q.Status, to)
	}
	var acceptedAt *time.Time
	if to == StatusAccepted {
		t := s.now()
		acceptedAt = &t
	}
	if err := s.repo.UpdateStatus(ctx, id, to, acceptedAt); err != nil {
		return nil, err
	}
	q.Status = to
	q.AcceptedAt = acceptedAt
	return q, nil
}

// Send issues a draft quote to the client.
func (s *Service) Send(ctx context.Context, ownerID, id uuid.UUID) (*Quote, error) {
	q, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !q.Status.CanTransition(StatusSent) {
		return nil, fmt.Errorf("%w: %s → %s", shared.ErrInvalidTransition, q.Status, StatusSent)
	}
	if q.ClientID == nil || *q.ClientID == uuid.Nil {
		return nil, fmt.Errorf("%w: a client must be selected before sending", shared.ErrInvalidInput)
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusSent, nil); err != nil {
		return nil, err
	}
	q.Status = StatusSent
	return q, nil
}

// Accept records client acceptance. An expired validity window blocks
// acceptance even before the sweep has flipped the stored status.
func (s *Service) Accept(ctx context.Context, ownerID, id uuid.UUID) (*Quote, error) {
	q, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if q.EffectiveStatus(s.now()) == StatusExpired {
		return nil, fmt.Errorf("%w: %s → %s", shared.ErrInvalidTransition, StatusExpired, StatusAccepted)
	}
	return s.transition(ctx, ownerID, id, StatusAccepted)
}

// Decline records client refusal.
func (s *Service) Decline(ctx context.Context, ownerID, id uuid.UUID) (*Quote, error) {
	return s.transition(ctx, ownerID, id, StatusDeclined)
}

// ConvertToInvoice mints a pending invoice from an accepted quote. The
// invoice gets its own number from the invoice sequence; lines and the
// client carry over, and totals are recomputed by the invoicing side.
func (s *Service) ConvertToInvoice(ctx context.Context, ownerID, id uuid.UUID, req ConvertQuoteRequest) (*invoicing.Invoice, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}
	q, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if q.Status != StatusAccepted {
		return nil, fmt.Errorf("%w: only accepted quotes convert, not %s", shared.ErrInvalidTransition, q.Status)
	}

	dueInDays := req.DueInDays
	if dueInDays == 0 {
		dueInDays = defaultDueInDays
	}
	lineReqs := make([]invoicing.LineItemRequest, 0, len(q.LineItems))
	for _, l := range q.LineItems {
		lineReqs = append(lineReqs, invoicing.LineItemRequest{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
		})
	}
	today := s.now()
	invoiceDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	notes := fmt.Sprintf("Facture issue du devis %s", q.Number)
	return s.invoices.Create(ctx, ownerID, invoicing.CreateInvoiceRequest{
		ClientID:    q.ClientID,
		Status:      invoicing.StatusPending,
		InvoiceDate: invoiceDate,
		DueDate:     invoiceDate.AddDate(0, 0, dueInDays),
		LineItems:   lineReqs,
		Notes:       &notes,
	})
}

// Delete removes a quote outright.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// SweepExpired persists the expired flip for every sent quote past its
// validity window, across all owners. Run periodically by the worker.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	return s.repo.MarkExpired(ctx, s.now())
}
