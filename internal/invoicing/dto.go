package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

// LineItemRequest is one incoming line. Amounts are never accepted;
// they are recomputed server-side.
type LineItemRequest struct {
	Description string          `json:"description" validate:"max=500"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

// CreateInvoiceRequest is the payload for creating an invoice. Status
// may only be draft or pending; an empty status means draft.
type CreateInvoiceRequest struct {
	ClientID    *uuid.UUID        `json:"client_id"`
	Status      Status            `json:"status"`
	InvoiceDate time.Time         `json:"invoice_date"`
	DueDate     time.Time         `json:"due_date"`
	LineItems   []LineItemRequest `json:"line_items" validate:"required,min=1,dive"`
	Notes       *string           `json:"notes"`
	Terms       *string           `json:"terms"`
}

// UpdateInvoiceRequest replaces the editable fields of a draft or
// pending invoice. The number and client snapshot are immutable.
type UpdateInvoiceRequest struct {
	InvoiceDate time.Time         `json:"invoice_date"`
	DueDate     time.Time         `json:"due_date"`
	LineItems   []LineItemRequest `json:"line_items" validate:"required,min=1,dive"`
	Notes       *string           `json:"notes"`
	Terms       *string           `json:"terms"`
}

// ListInvoicesRequest carries listing filters.
type ListInvoicesRequest struct {
	Status  Status
	Page    int
	PerPage int
}

// ListInvoicesResponse is a paginated listing.
type ListInvoicesResponse struct {
	Invoices   []Invoice         `json:"invoices"`
	Pagination shared.Pagination `json:"pagination"`
}
