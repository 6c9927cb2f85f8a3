package clients

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

type fakeRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Client
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[uuid.UUID]*Client{}}
}

func (r *fakeRepo) Create(_ context.Context, c *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uuid.New()
	c.TotalInvoiced = decimal.Zero
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, req ListClientsRequest) ([]Client, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Client
	for _, c := range r.items {
		if c.OwnerID != ownerID {
			continue
		}
		if req.Search != "" &&
			!strings.Contains(strings.ToLower(c.Name), strings.ToLower(req.Search)) &&
			!strings.Contains(strings.ToLower(c.Email), strings.ToLower(req.Search)) {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (r *fakeRepo) Update(_ context.Context, c *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[c.ID]
	if !ok {
		return shared.ErrNotFound
	}
	cp := *c
	cp.TotalInvoiced = stored.TotalInvoiced
	cp.UpdatedAt = time.Now()
	r.items[c.ID] = &cp
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

func (r *fakeRepo) AddToTotalInvoiced(_ context.Context, id uuid.UUID, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.TotalInvoiced = c.TotalInvoiced.Add(amount)
	return nil
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCreateAndSnapshot(t *testing.T) {
	svc := NewService(newFakeRepo())
	owner := uuid.New()

	c, err := svc.Create(context.Background(), owner, CreateClientRequest{
		Name:    "Boulangerie Martin",
		Email:   "contact@boulangerie-martin.fr",
		Address: "4 rue des Lilas, 69003 Lyon",
	})
	require.NoError(t, err)

	snap, err := svc.Snapshot(context.Background(), owner, c.ID)
	require.NoError(t, err)
	require.Equal(t, "Boulangerie Martin", snap.Name)
	require.Equal(t, "4 rue des Lilas, 69003 Lyon", snap.Address)
}

func TestSnapshotIsFrozenAgainstLaterEdits(t *testing.T) {
	svc := NewService(newFakeRepo())
	owner := uuid.New()

	c, err := svc.Create(context.Background(), owner, CreateClientRequest{Name: "Ancien Nom"})
	require.NoError(t, err)

	before, err := svc.Snapshot(context.Background(), owner, c.ID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), owner, c.ID, UpdateClientRequest{Name: "Nouveau Nom"})
	require.NoError(t, err)

	// The earlier snapshot value is untouched; only a fresh snapshot
	// sees the edit.
	require.Equal(t, "Ancien Nom", before.Name)
	after, err := svc.Snapshot(context.Background(), owner, c.ID)
	require.NoError(t, err)
	require.Equal(t, "Nouveau Nom", after.Name)
}

func TestRecordInvoicedAccumulates(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	owner := uuid.New()

	c, err := svc.Create(context.Background(), owner, CreateClientRequest{Name: "Garage Dupont"})
	require.NoError(t, err)

	require.NoError(t, svc.RecordInvoiced(context.Background(), owner, c.ID, d("230")))
	require.NoError(t, svc.RecordInvoiced(context.Background(), owner, c.ID, d("119.50")))

	got, err := svc.Get(context.Background(), owner, c.ID)
	require.NoError(t, err)
	require.True(t, got.TotalInvoiced.Equal(d("349.50")), "rollup %s", got.TotalInvoiced)

	err = svc.RecordInvoiced(context.Background(), owner, c.ID, d("-5"))
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreateValidatesEmail(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Create(context.Background(), uuid.New(), CreateClientRequest{
		Name:  "X",
		Email: "not-an-email",
	})
	require.Error(t, err)
}

func TestClientOwnershipEnforced(t *testing.T) {
	svc := NewService(newFakeRepo())
	owner := uuid.New()

	c, err := svc.Create(context.Background(), owner, CreateClientRequest{Name: "Privé"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New(), c.ID)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
	_, err = svc.Snapshot(context.Background(), uuid.New(), c.ID)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestListFiltersBySearch(t *testing.T) {
	svc := NewService(newFakeRepo())
	owner := uuid.New()

	for _, name := range []string{"Boulangerie Martin", "Garage Dupont"} {
		_, err := svc.Create(context.Background(), owner, CreateClientRequest{Name: name})
		require.NoError(t, err)
	}

	resp, err := svc.List(context.Background(), owner, ListClientsRequest{Search: "martin"})
	require.NoError(t, err)
	require.Len(t, resp.Clients, 1)
	require.Equal(t, 1, resp.Pagination.Total)
}
