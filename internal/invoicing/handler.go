package invoicing

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

// Handler exposes invoice endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// API payloads carry dates as YYYY-MM-DD strings.
type createInvoicePayload struct {
	ClientID    *uuid.UUID        `json:"client_id"`
	Status      string            `json:"status"`
	InvoiceDate string            `json:"invoice_date"`
	DueDate     string            `json:"due_date"`
	LineItems   []LineItemRequest `json:"line_items"`
	Notes       *string           `json:"notes"`
	Terms       *string           `json:"terms"`
}

type updateInvoicePayload struct {
	InvoiceDate string            `json:"invoice_date"`
	DueDate     string            `json:"due_date"`
	LineItems   []LineItemRequest `json:"line_items"`
	Notes       *string           `json:"notes"`
	Terms       *string           `json:"terms"`
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", shared.ErrInvalidInput, field)
	}
	return t, nil
}

func ownerID(r *http.Request) (uuid.UUID, error) {
	id, ok := shared.OwnerFromContext(r.Context())
	if !ok {
		return uuid.Nil, shared.ErrUnauthorized
	}
	return id, nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed id", shared.ErrInvalidInput)
	}
	return id, nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	var p createInvoicePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		shared.RespondError(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}
	req, err := p.toRequest()
	if err != nil {
		shared.RespondError(w, err)
		return
	}

	inv, err := h.service.Create(r.Context(), owner, req)
	if errors.Is(err, shared.ErrConflict) {
		// A duplicate number means this creator lost a race; one retry
		// reissues against the advanced counter.
		inv, err = h.service.Create(r.Context(), owner, req)
	}
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, inv)
}

func (p createInvoicePayload) toRequest() (CreateInvoiceRequest, error) {
	invoiceDate, err := parseDate("invoice_date", p.InvoiceDate)
	if err != nil {
		return CreateInvoiceRequest{}, err
	}
	dueDate, err := parseDate("due_date", p.DueDate)
	if err != nil {
		return CreateInvoiceRequest{}, err
	}
	return CreateInvoiceRequest{
		ClientID:    p.ClientID,
		Status:      Status(p.Status),
		InvoiceDate: invoiceDate,
		DueDate:     dueDate,
		LineItems:   p.LineItems,
		Notes:       p.Notes,
		Terms:       p.Terms,
	}, nil
}

func (p updateInvoicePayload) toRequest() (UpdateInvoiceRequest, error) {
	invoiceDate, err := parseDate("invoice_date", p.InvoiceDate)
	if err != nil {
		return UpdateInvoiceRequest{}, err
	}
	dueDate, err := parseDate("due_date", p.DueDate)
	if err != nil {
		return UpdateInvoiceRequest{}, err
	}
	return UpdateInvoiceRequest{
		InvoiceDate: invoiceDate,
		DueDate:     dueDate,
		LineItems:   p.LineItems,
		Notes:       p.Notes,
		Terms:       p.Terms,
	}, nil
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	inv, err := h.service.Get(r.Context(), owner, id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, inv)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	resp, err := h.service.List(r.Context(), owner, ListInvoicesRequest{
		Status:  Status(q.Get("status")),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	var p updateInvoicePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		shared.RespondError(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}
	req, err := p.toRequest()
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	inv, err := h.service.Update(r.Context(), owner, id, req)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, inv)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	fn func(*http.Request, uuid.UUID, uuid.UUID) (*Invoice, error)) {
	owner, err := ownerID(r)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	inv, err := fn(r, owner, id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, inv)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, owner, id uuid.UUID) (*Invoice, error) {
		return h.service.Submit(r.Context(), owner, id)
	})
}

func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, owner, id uuid.UUID) (*Invoice, error) {
		return h.service.MarkPaid(r.Context(), owner, id)
	})
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, owner, id uuid.UUID) (*Invoice, error) {
		return h.service.Cancel(r.Context(), owner, id)
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), owner, id); err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}
