package quotes

import (
	"time"

	"github.com/google/uuid"

	"github.com/HeisenPear/saas-localBizz/internal/invoicing"
	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

// CreateQuoteRequest is the payload for creating a quote. Status may
// only be draft or sent; an empty status means draft.
type CreateQuoteRequest struct {
	ClientID   *uuid.UUID                  `json:"client_id"`
	Status     Status                      `json:"status"`
	IssueDate  time.Time                   `json:"issue_date"`
	ValidUntil time.Time                   `json:"valid_until"`
	LineItems  []invoicing.LineItemRequest `json:"line_items" validate:"required,min=1,dive"`
	Notes      *string                     `json:"notes"`
}

// UpdateQuoteRequest replaces the editable fields of a draft or sent
// quote.
type UpdateQuoteRequest struct {
	IssueDate  time.Time                   `json:"issue_date"`
	ValidUntil time.Time                   `json:"valid_until"`
	LineItems  []invoicing.LineItemRequest `json:"line_items" validate:"required,min=1,dive"`
	Notes      *string                     `json:"notes"`
}

// ConvertQuoteRequest carries the payment window for the invoice minted
// from an accepted quote. A zero DueInDays defaults to 30.
type ConvertQuoteRequest struct {
	DueInDays int `json:"due_in_days" validate:"min=0,max=365"`
}

// ListQuotesRequest carries listing filters.
type ListQuotesRequest struct {
	Status  Status
	Page    int
	PerPage int
}

// ListQuotesResponse is a paginated listing.
type ListQuotesResponse struct {
	Quotes     []Quote           `json:"quotes"`
	Pagination shared.Pagination `json:"pagination"`
}
