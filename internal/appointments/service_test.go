package appointments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

type fakeRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Appointment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[uuid.UUID]*Appointment{}}
}

func (r *fakeRepo) Create(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.items[cp.ID] = &cp
	*a = cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, req ListAppointmentsRequest) ([]Appointment, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Appointment
	for _, a := range r.items {
		if a.OwnerID != ownerID {
			continue
		}
		if req.Status != "" && a.Status != req.Status {
			continue
		}
		if !req.From.IsZero() && a.StartTime.Before(req.From) {
			continue
		}
		if !req.To.IsZero() && !a.StartTime.Before(req.To) {
			continue
		}
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (r *fakeRepo) Update(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[a.ID]; !ok {
		return shared.ErrNotFound
	}
	cp := *a
	cp.UpdatedAt = time.Now()
	r.items[a.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	a.Status = status
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeRepo) CountOverlapping(_ context.Context, ownerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.items {
		if a.OwnerID != ownerID {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.Status != StatusPending && a.Status != StatusConfirmed {
			continue
		}
		if Overlaps(a.StartTime, a.EndTime, start, end) {
			n++
		}
	}
	return n, nil
}

func at(hour int) time.Time {
	return time.Date(2025, 6, 16, hour, 0, 0, 0, time.UTC)
}

func createRequest(start, end time.Time) CreateAppointmentRequest {
	return CreateAppointmentRequest{
		ClientName:  "Mme Rousseau",
		ServiceType: "Dépannage chaudière",
		StartTime:   start,
		EndTime:     end,
	}
}

func TestCreateBooksPendingSlot(t *testing.T) {
	svc := NewService(newFakeRepo())
	owner := uuid.New()

	a, err := svc.Create(context.Background(), owner, createRequest(at(9), at(11)))
	require.NoError(t, err)
	require.Equal(t, StatusPending, a.Status)
}

func TestCreateRejectsOverlap(t *testing.T) {
	svc := NewService(newFakeRepo())
	owner := uuid.New()

	_, err := svc.Create(context.Background(), owner, createRequest(at(9), at(11)))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), owner, createRequest(at(10), at(12)))
	require.ErrorIs(t, err, shared.ErrConflict)

	// Back-to-back slots share only the boundary instant and are fine.
	_, err = svc.Create(context.Background(), owner, createRequest(at(11), at(13)))
	require.NoError(t, err)

	// Another owner's calendar is independent.
	_, err = svc.Create(context.Background(), uuid.New(), createRequest(at(10), at(12)))
	require.NoError(t, err)
}

func TestCancelledSlotIsFreed(t *testing.T) {
	svc := NewService(newFakeRepo())
	owner := uuid.New()

	a, err := svc.Create(context.Background(), owner, createRequest(at(9), at(11)))
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), owner, a.ID)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), owner, createRequest(at(9), at(11)))
	require.NoError(t, err)
}

func TestCreateRejectsInvertedWindow(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Create(context.Background(), uuid.New(), createRequest(at(11), at(9)))
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestLifecycleTransitions(t *testing.T) {
	svc := NewService(newFakeRepo())
	owner := uuid.New()

	a, err := svc.Create(context.Background(), owner, createRequest(at(9), at(11)))
	require.NoError(t, err)

	// pending → completed skips confirmation.
	_, err = svc.Complete(context.Background(), owner, a.ID)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)

	confirmed, err := svc.Confirm(context.Background(), owner, a.ID)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, confirmed.Status)

	done, err := svc.Complete(context.Background(), owner, a.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, done.Status)

	_, err = svc.Cancel(context.Background(), owner, a.ID)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestRescheduleChecksOverlapExcludingSelf(t *testing.T) {
	svc := NewService(newFakeRepo())
	owner := uuid.New()

	a, err := svc.Create(context.Background(), owner, createRequest(at(9), at(11)))
	require.NoError(t, err)

	// Shifting within its own window must not collide with itself.
	req := UpdateAppointmentRequest{
		ClientName:  a.ClientName,
		ServiceType: a.ServiceType,
		StartTime:   at(10),
		EndTime:     at(12),
	}
	updated, err := svc.Update(context.Background(), owner, a.ID, req)
	require.NoError(t, err)
	require.Equal(t, at(10), updated.StartTime)

	b, err := svc.Create(context.Background(), owner, createRequest(at(13), at(15)))
	require.NoError(t, err)

	req.StartTime = at(14)
	req.EndTime = at(16)
	_, err = svc.Update(context.Background(), owner, a.ID, req)
	require.ErrorIs(t, err, shared.ErrConflict)
	_ = b
}

func TestAppointmentOwnershipEnforced(t *testing.T) {
	svc := NewService(newFakeRepo())
	owner := uuid.New()

	a, err := svc.Create(context.Background(), owner, createRequest(at(9), at(11)))
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New(), a.ID)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}
