package clients

import "github.com/HeisenPear/saas-localBizz/internal/shared"

// CreateClientRequest is the payload for creating a client.
type CreateClientRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   string  `json:"email" validate:"omitempty,email"`
	Phone   string  `json:"phone" validate:"max=40"`
	Address string  `json:"address" validate:"max=500"`
	Notes   *string `json:"notes"`
}

// UpdateClientRequest is the payload for updating a client.
type UpdateClientRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   string  `json:"email" validate:"omitempty,email"`
	Phone   string  `json:"phone" validate:"max=40"`
	Address string  `json:"address" validate:"max=500"`
	Notes   *string `json:"notes"`
}

// ListClientsRequest carries listing filters.
type ListClientsRequest struct {
	Search  string
	Page    int
	PerPage int
}

// ListClientsResponse is a paginated listing.
type ListClientsResponse struct {
	Clients    []Client          `json:"clients"`
	Pagination shared.Pagination `json:"pagination"`
}
