package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status enumerates invoice lifecycle states.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// transitions is the closed transition table. Absent pairs are invalid.
// paid and cancelled are terminal. overdue keeps pending's exits because
// it is a derived refinement of pending, not a distinct workflow stage.
var transitions = map[Status]map[Status]bool{
	StatusDraft:   {StatusPending: true, StatusOverdue: true, StatusCancelled: true},
	StatusPending: {StatusPaid: true, StatusOverdue: true, StatusCancelled: true},
	StatusOverdue: {StatusPaid: true, StatusCancelled: true},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions leave s.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// CanTransition reports whether s may move to the target status.
func (s Status) CanTransition(to Status) bool {
	return transitions[s][to]
}

// LineItem is one billable row on an invoice. Amount is always derived
// from quantity and unit price, never accepted from the caller.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// Invoice model. The client snapshot and invoice number are immutable
// once the invoice exists.
type Invoice struct {
	ID            uuid.UUID       `json:"id"`
	OwnerID       uuid.UUID       `json:"owner_id"`
	ClientID      *uuid.UUID      `json:"client_id,omitempty"`
	Number        string          `json:"invoice_number"`
	ClientName    string          `json:"client_name"`
	ClientEmail   string          `json:"client_email"`
	ClientPhone   string          `json:"client_phone"`
	ClientAddress string          `json:"client_address"`
	Status        Status          `json:"status"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	DueDate       time.Time       `json:"due_date"`
	LineItems     []LineItem      `json:"line_items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	Total         decimal.Decimal `json:"total"`
	Notes         *string         `json:"notes,omitempty"`
	Terms         *string         `json:"terms,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// EffectiveStatus derives the read-time status: a draft or pending
// invoice past its due date reads as overdue even before the sweep has
// persisted the flip.
func (i Invoice) EffectiveStatus(today time.Time) Status {
	if (i.Status == StatusDraft || i.Status == StatusPending) && i.DueDate.Before(truncateDay(today)) {
		return StatusOverdue
	}
	return i.Status
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
