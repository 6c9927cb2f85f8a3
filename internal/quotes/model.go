package quotes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/HeisenPear/saas-localBizz/internal/invoicing"
)

// Status enumerates quote lifecycle states.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
	StatusExpired  Status = "expired"
)

// accepted, declined, and expired are terminal.
var transitions = map[Status]map[Status]bool{
	StatusDraft: {StatusSent: true, StatusDeclined: true},
	StatusSent:  {StatusAccepted: true, StatusDeclined: true, StatusExpired: true},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusDeclined, StatusExpired:
		return true
	}
	return false
}

// Terminal reports whether no further transitions leave s.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusDeclined || s == StatusExpired
}

// CanTransition reports whether s may move to the target status.
func (s Status) CanTransition(to Status) bool {
	return transitions[s][to]
}

// Quote model. Quotes share the invoice line shape so conversion carries
// lines over without translation.
type Quote struct {
	ID            uuid.UUID            `json:"id"`
	OwnerID       uuid.UUID            `json:"owner_id"`
	ClientID      *uuid.UUID           `json:"client_id,omitempty"`
	Number        string               `json:"quote_number"`
	ClientName    string               `json:"client_name"`
	ClientEmail   string               `json:"client_email"`
	ClientPhone   string               `json:"client_phone"`
	ClientAddress string               `json:"client_address"`
	Status        Status               `json:"status"`
	IssueDate     time.Time            `json:"issue_date"`
	ValidUntil    time.Time            `json:"valid_until"`
	LineItems     []invoicing.LineItem `json:"line_items"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	TaxTotal      decimal.Decimal      `json:"tax_total"`
	Total         decimal.Decimal      `json:"total"`
	Notes         *string              `json:"notes,omitempty"`
	AcceptedAt    *time.Time           `json:"accepted_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// EffectiveStatus derives the read-time status: a sent quote past its
// validity window reads as expired before the sweep persists the flip.
func (q Quote) EffectiveStatus(today time.Time) Status {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	if q.Status == StatusSent && q.ValidUntil.Before(day) {
		return StatusExpired
	}
	return q.Status
}
