package clients

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client is an address-book entry owned by one profile. TotalInvoiced
// is a denormalized rollup maintained when invoices are marked paid;
// it is advisory, the invoices table stays the source of truth.
type Client struct {
	ID            uuid.UUID       `json:"id"`
	OwnerID       uuid.UUID       `json:"owner_id"`
	Name          string          `json:"name"`
	Email         string          `json:"email,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	Address       string          `json:"address,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	TotalInvoiced decimal.Decimal `json:"total_invoiced"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Snapshot is the contact data frozen onto a document at issue time.
type Snapshot struct {
	Name    string
	Email   string
	Phone   string
	Address string
}
