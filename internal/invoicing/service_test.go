package invoicing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/HeisenPear/saas-localBizz/internal/clients"
	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*Invoice
	seqs     map[string]int
	failNext error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{invoices: map[uuid.UUID]*Invoice{}, seqs: map[string]int{}}
}

func (r *fakeRepo) Create(_ context.Context, inv *Invoice, prefix string, year int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	key := fmt.Sprintf("%s|%d", inv.OwnerID, year)
	last := ""
	if r.seqs[key] > 0 {
		last = FormatNumber(prefix, year, r.seqs[key])
	}
	number, err := NextNumber(prefix, year, last)
	if err != nil {
		return err
	}
	r.seqs[key]++
	cp := *inv
	cp.ID = uuid.New()
	cp.Number = number
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.invoices[cp.ID] = &cp
	*inv = cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, req ListInvoicesRequest) ([]Invoice, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Invoice
	for _, inv := range r.invoices {
		if inv.OwnerID != ownerID {
			continue
		}
		if req.Status != "" && inv.Status != req.Status {
			continue
		}
		out = append(out, *inv)
	}
	return out, len(out), nil
}

func (r *fakeRepo) Update(_ context.Context, inv *Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.invoices[inv.ID]
	if !ok {
		return shared.ErrNotFound
	}
	cp := *inv
	cp.Number = stored.Number
	cp.UpdatedAt = time.Now()
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status, paidAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return shared.ErrNotFound
	}
	inv.Status = status
	inv.PaidAt = paidAt
	inv.UpdatedAt = time.Now()
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invoices[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.invoices, id)
	return nil
}

func (r *fakeRepo) MarkOverdue(_ context.Context, today time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, inv := range r.invoices {
		if (inv.Status == StatusDraft || inv.Status == StatusPending) && inv.DueDate.Before(today) {
			inv.Status = StatusOverdue
			n++
		}
	}
	return n, nil
}

type fakeDirectory struct {
	mu        sync.Mutex
	snapshots map[uuid.UUID]clients.Snapshot
	invoiced  map[uuid.UUID]decimal.Decimal
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{snapshots: map[uuid.UUID]clients.Snapshot{}, invoiced: map[uuid.UUID]decimal.Decimal{}}
}

func (d *fakeDirectory) Snapshot(_ context.Context, _, clientID uuid.UUID) (clients.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	snap, ok := d.snapshots[clientID]
	if !ok {
		return clients.Snapshot{}, shared.ErrNotFound
	}
	return snap, nil
}

func (d *fakeDirectory) RecordInvoiced(_ context.Context, _, clientID uuid.UUID, amount decimal.Decimal) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.invoiced[clientID] = d.invoiced[clientID].Add(amount)
	return nil
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *fakeRepo, *fakeDirectory, uuid.UUID, uuid.UUID) {
	t.Helper()
	repo := newFakeRepo()
	dir := newFakeDirectory()
	owner := uuid.New()
	client := uuid.New()
	dir.snapshots[client] = clients.Snapshot{
		Name:    "Boulangerie Martin",
		Email:   "contact@boulangerie-martin.fr",
		Phone:   "+33 6 12 34 56 78",
		Address: "4 rue des Lilas, 69003 Lyon",
	}
	svc := NewService(repo, dir, "FAC", discardLogger())
	svc.now = func() time.Time { return testNow }
	return svc, repo, dir, owner, client
}

func createRequest(clientID *uuid.UUID, status Status) CreateInvoiceRequest {
	return CreateInvoiceRequest{
		ClientID:    clientID,
		Status:      status,
		InvoiceDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
		LineItems: []LineItemRequest{
			{Description: "Plomberie salle de bain", Quantity: d("2"), UnitPrice: d("50"), TaxRate: d("20")},
			{Description: "Fournitures", Quantity: d("1"), UnitPrice: d("100"), TaxRate: d("10")},
		},
	}
}

func TestCreateDraftComputesTotalsAndSnapshot(t *testing.T) {
	svc, _, _, owner, client := newTestService(t)

	inv, err := svc.Create(context.Background(), owner, createRequest(&client, StatusDraft))
	require.NoError(t, err)

	require.Equal(t, "FAC-2025-001", inv.Number)
	require.Equal(t, StatusDraft, inv.Status)
	require.True(t, inv.Subtotal.Equal(d("200")), "subtotal %s", inv.Subtotal)
	require.True(t, inv.TaxTotal.Equal(d("30")), "tax %s", inv.TaxTotal)
	require.True(t, inv.Total.Equal(d("230")), "total %s", inv.Total)
	require.Equal(t, "Boulangerie Martin", inv.ClientName)
	require.Equal(t, "4 rue des Lilas, 69003 Lyon", inv.ClientAddress)
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	svc, _, _, owner, client := newTestService(t)

	_, err := svc.Create(context.Background(), owner, createRequest(&client, StatusPaid))
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreateRejectsDueBeforeInvoiceDate(t *testing.T) {
	svc, _, _, owner, client := newTestService(t)

	req := createRequest(&client, StatusDraft)
	req.DueDate = req.InvoiceDate.AddDate(0, 0, -1)
	_, err := svc.Create(context.Background(), owner, req)
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreateRejectsUnsupportedVATRate(t *testing.T) {
	svc, _, _, owner, client := newTestService(t)

	req := createRequest(&client, StatusDraft)
	req.LineItems[0].TaxRate = d("19.6")
	_, err := svc.Create(context.Background(), owner, req)
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreatePendingRequiresClient(t *testing.T) {
	svc, _, _, owner, _ := newTestService(t)

	_, err := svc.Create(context.Background(), owner, createRequest(nil, StatusPending))
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreatePendingRequiresLineDescription(t *testing.T) {
	svc, _, _, owner, client := newTestService(t)

	req := createRequest(&client, StatusPending)
	req.LineItems[0].Description = "   "
	_, err := svc.Create(context.Background(), owner, req)
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestSubmitMovesDraftToPending(t *testing.T) {
	svc, _, _, owner, client := newTestService(t)

	inv, err := svc.Create(context.Background(), owner, createRequest(&client, StatusDraft))
	require.NoError(t, err)

	submitted, err := svc.Submit(context.Background(), owner, inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, submitted.Status)

	// Resubmitting a pending invoice is not a valid transition.
	_, err = svc.Submit(context.Background(), owner, inv.ID)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestSubmitGuardsClientlessDraft(t *testing.T) {
	svc, _, _, owner, _ := newTestService(t)

	inv, err := svc.Create(context.Background(), owner, createRequest(nil, StatusDraft))
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), owner, inv.ID)
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestMarkPaidSetsPaidAtAndRollsUp(t *testing.T) {
	svc, _, dir, owner, client := newTestService(t)

	inv, err := svc.Create(context.Background(), owner, createRequest(&client, StatusPending))
	require.NoError(t, err)

	paid, err := svc.MarkPaid(context.Background(), owner, inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	require.Equal(t, testNow, *paid.PaidAt)
	require.True(t, dir.invoiced[client].Equal(d("230")), "rollup %s", dir.invoiced[client])
}

func TestCancelPaidInvoiceFails(t *testing.T) {
	svc, repo, _, owner, client := newTestService(t)

	inv, err := svc.Create(context.Background(), owner, createRequest(&client, StatusPending))
	require.NoError(t, err)
	_, err = svc.MarkPaid(context.Background(), owner, inv.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), owner, inv.ID)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)

	// The stored invoice is untouched by the rejected transition.
	stored, err := repo.GetByID(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, stored.Status)
	require.NotNil(t, stored.PaidAt)
}

func TestCancelOpenInvoice(t *testing.T) {
	svc, _, _, owner, client := newTestService(t)

	inv, err := svc.Create(context.Background(), owner, createRequest(&client, StatusDraft))
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), owner, inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)

	// Cancelled is terminal.
	_, err = svc.MarkPaid(context.Background(), owner, inv.ID)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestUpdateKeepsNumberAndSnapshot(t *testing.T) {
	svc, _, _, owner, client := newTestService(t)

	inv, err := svc.Create(context.Background(), owner, createRequest(&client, StatusDraft))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), owner, inv.ID, UpdateInvoiceRequest{
		InvoiceDate: inv.InvoiceDate,
		DueDate:     inv.DueDate,
		LineItems: []LineItemRequest{
			{Description: "Révision devis", Quantity: d("1"), UnitPrice: d("500"), TaxRate: d("20")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, inv.Number, updated.Number)
	require.Equal(t, inv.ClientName, updated.ClientName)
	require.True(t, updated.Subtotal.Equal(d("500")))
	require.True(t, updated.TaxTotal.Equal(d("100")))
	require.True(t, updated.Total.Equal(d("600")))
}

func TestUpdatePaidInvoiceFails(t *testing.T) {
	svc, _, _, owner, client := newTestService(t)

	inv, err := svc.Create(context.Background(), owner, createRequest(&client, StatusPending))
	require.NoError(t, err)
	_, err = svc.MarkPaid(context.Background(), owner, inv.ID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), owner, inv.ID, UpdateInvoiceRequest{
		InvoiceDate: inv.InvoiceDate,
		DueDate:     inv.DueDate,
		LineItems:   []LineItemRequest{{Description: "x", Quantity: d("1"), UnitPrice: d("1"), TaxRate: d("20")}},
	})
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestOwnershipEnforced(t *testing.T) {
	svc, _, _, owner, client := newTestService(t)

	inv, err := svc.Create(context.Background(), owner, createRequest(&client, StatusDraft))
	require.NoError(t, err)

	stranger := uuid.New()
	_, err = svc.Get(context.Background(), stranger, inv.ID)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
	_, err = svc.MarkPaid(context.Background(), stranger, inv.ID)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
	err = svc.Delete(context.Background(), stranger, inv.ID)
	require.ErrorIs(t, err, shared.ErrUnauthorized)

	_, err = svc.Get(context.Background(), owner, uuid.New())
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	svc, _, _, owner, client := newTestService(t)

	const n = 10
	numbers := make(chan string, n)
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv, err := svc.Create(context.Background(), owner, createRequest(&client, StatusDraft))
			if err != nil {
				errs <- err
				return
			}
			numbers <- inv.Number
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := map[string]bool{}
	for number := range numbers {
		require.False(t, seen[number], "duplicate number %s", number)
		seen[number] = true
	}
	require.Len(t, seen, n)
	// Gap-free: exactly 001..010 were issued.
	for i := 1; i <= n; i++ {
		require.True(t, seen[FormatNumber("FAC", 2025, i)])
	}
}

func TestCreateSurfacesConflictForRetry(t *testing.T) {
	svc, repo, _, owner, client := newTestService(t)

	repo.failNext = shared.ErrConflict
	_, err := svc.Create(context.Background(), owner, createRequest(&client, StatusDraft))
	require.ErrorIs(t, err, shared.ErrConflict)

	// The retry succeeds against the advanced counter.
	inv, err := svc.Create(context.Background(), owner, createRequest(&client, StatusDraft))
	require.NoError(t, err)
	require.Equal(t, "FAC-2025-001", inv.Number)
}

func TestSequenceExhaustionSurfaces(t *testing.T) {
	svc, repo, _, owner, client := newTestService(t)

	repo.seqs[fmt.Sprintf("%s|%d", owner, 2025)] = MaxSequence
	_, err := svc.Create(context.Background(), owner, createRequest(&client, StatusDraft))
	require.ErrorIs(t, err, shared.ErrSequenceExhausted)
}

func TestGetDerivesOverdue(t *testing.T) {
	svc, _, _, owner, client := newTestService(t)

	req := createRequest(&client, StatusPending)
	req.InvoiceDate = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	req.DueDate = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	inv, err := svc.Create(context.Background(), owner, req)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), owner, inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusOverdue, got.Status)
}

func TestSweepOverduePersistsFlip(t *testing.T) {
	svc, repo, _, owner, client := newTestService(t)

	req := createRequest(&client, StatusPending)
	req.InvoiceDate = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	req.DueDate = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	inv, err := svc.Create(context.Background(), owner, req)
	require.NoError(t, err)

	n, err := svc.SweepOverdue(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	stored, err := repo.GetByID(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusOverdue, stored.Status)

	// Overdue invoices can still be settled.
	paid, err := svc.MarkPaid(context.Background(), owner, inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, paid.Status)
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusDraft, StatusPending, true},
		{StatusDraft, StatusCancelled, true},
		{StatusDraft, StatusPaid, false},
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusDraft, false},
		{StatusOverdue, StatusPaid, true},
		{StatusOverdue, StatusCancelled, true},
		{StatusPaid, StatusCancelled, false},
		{StatusPaid, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusPaid, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s → %s", tc.from, tc.to)
	}
	require.True(t, StatusPaid.Terminal())
	require.True(t, StatusCancelled.Terminal())
	require.False(t, StatusPending.Terminal())
}
