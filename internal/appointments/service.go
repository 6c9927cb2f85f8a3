package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

// Service implements appointment scheduling.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) owned(ctx context.Context, ownerID, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.OwnerID != ownerID {
		return nil, shared.ErrUnauthorized
	}
	return a, nil
}

func (s *Service) checkWindow(ctx context.Context, ownerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) error {
	if !end.After(start) {
		return fmt.Errorf("%w: end time must come after start time", shared.ErrInvalidInput)
	}
	n, err := s.repo.CountOverlapping(ctx, ownerID, start, end, excludeID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: the slot overlaps an existing appointment", shared.ErrConflict)
	}
	return nil
}

// Create books a new appointment as pending. Slots that collide with an
// open appointment of the same owner are rejected.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req CreateAppointmentRequest) (*Appointment, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := s.checkWindow(ctx, ownerID, req.StartTime, req.EndTime, nil); err != nil {
		return nil, err
	}
	a := &Appointment{
		OwnerID:     ownerID,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		ClientPhone: req.ClientPhone,
		ServiceType: req.ServiceType,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      StatusPending,
		Notes:       req.Notes,
		Address:     req.Address,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Get returns one appointment owned by ownerID.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Appointment, error) {
	return s.owned(ctx, ownerID, id)
}

// List returns the owner's appointments, optionally windowed.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, req ListAppointmentsRequest) (*ListAppointmentsResponse, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %s", shared.ErrInvalidInput, req.Status)
	}
	items, total, err := s.repo.ListByOwner(ctx, ownerID, req)
	if err != nil {
		return nil, err
	}
	return &ListAppointmentsResponse{
		Appointments: items,
		Pagination:   shared.NewPagination(req.Page, req.PerPage, total),
	}, nil
}

// Update reschedules or re-describes an open appointment.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, req UpdateAppointmentRequest) (*Appointment, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}
	a, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusCompleted || a.Status == StatusCancelled {
		return nil, fmt.Errorf("%w: %s appointments are read-only", shared.ErrInvalidTransition, a.Status)
	}
	if err := s.checkWindow(ctx, ownerID, req.StartTime, req.EndTime, &id); err != nil {
		return nil, err
	}
	a.ClientName = req.ClientName
	a.ClientEmail = req.ClientEmail
	a.ClientPhone = req.ClientPhone
	a.ServiceType = req.ServiceType
	a.StartTime = req.StartTime
	a.EndTime = req.EndTime
	a.Notes = req.Notes
	a.Address = req.Address
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) transition(ctx context.Context, ownerID, id uuid.UUID, to Status) (*Appointment, error) {
	a, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !a.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s → %s", shared.ErrInvalidTransition, a.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	a.Status = to
	return a, nil
}

// Confirm moves a pending appointment to confirmed.
func (s *Service) Confirm(ctx context.Context, ownerID, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, ownerID, id, StatusConfirmed)
}

// Complete closes out a confirmed appointment.
func (s *Service) Complete(ctx context.Context, ownerID, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, ownerID, id, StatusCompleted)
}

// Cancel voids an open appointment, freeing its slot.
func (s *Service) Cancel(ctx context.Context, ownerID, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, ownerID, id, StatusCancelled)
}

// Delete removes an appointment outright.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
