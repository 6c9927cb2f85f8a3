package clients

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

// Directory is the port other modules use to freeze client contact data
// onto documents and to maintain the paid-invoice rollup.
type Directory interface {
	Snapshot(ctx context.Context, ownerID, clientID uuid.UUID) (Snapshot, error)
	RecordInvoiced(ctx context.Context, ownerID, clientID uuid.UUID, amount decimal.Decimal) error
}

// Service implements client business logic.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) owned(ctx context.Context, ownerID, id uuid.UUID) (*Client, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != ownerID {
		return nil, shared.ErrUnauthorized
	}
	return c, nil
}

// Create adds a client to the owner's address book.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req CreateClientRequest) (*Client, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}
	c := &Client{
		OwnerID: ownerID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns one client owned by ownerID.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Client, error) {
	return s.owned(ctx, ownerID, id)
}

// List returns the owner's clients, optionally filtered by a name or
// email substring.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, req ListClientsRequest) (*ListClientsResponse, error) {
	items, total, err := s.repo.ListByOwner(ctx, ownerID, req)
	if err != nil {
		return nil, err
	}
	return &ListClientsResponse{
		Clients:    items,
		Pagination: shared.NewPagination(req.Page, req.PerPage, total),
	}, nil
}

// Update replaces the client's editable fields.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, req UpdateClientRequest) (*Client, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}
	c, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	c.Name = req.Name
	c.Email = req.Email
	c.Phone = req.Phone
	c.Address = req.Address
	c.Notes = req.Notes
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a client. Documents that snapshotted its contact data
// are unaffected.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Snapshot freezes the client's current contact data for stamping onto
// a document.
func (s *Service) Snapshot(ctx context.Context, ownerID, clientID uuid.UUID) (Snapshot, error) {
	c, err := s.owned(ctx, ownerID, clientID)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address}, nil
}

// RecordInvoiced adds a paid amount to the client's lifetime rollup.
func (s *Service) RecordInvoiced(ctx context.Context, ownerID, clientID uuid.UUID, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: invoiced amount must not be negative", shared.ErrInvalidInput)
	}
	if _, err := s.owned(ctx, ownerID, clientID); err != nil {
		return err
	}
	return s.repo.AddToTotalInvoiced(ctx, clientID, amount)
}
