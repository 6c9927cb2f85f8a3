package quotes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/HeisenPear/saas-localBizz/internal/invoicing"
	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

// Handler exposes quote endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createQuotePayload struct {
	ClientID   *uuid.UUID                  `json:"client_id"`
	Status     string                      `json:"status"`
	IssueDate  string                      `json:"issue_date"`
	ValidUntil string                      `json:"valid_until"`
	LineItems  []invoicing.LineItemRequest `json:"line_items"`
	Notes      *string                     `json:"notes"`
}

type updateQuotePayload struct {
	IssueDate  string                      `json:"issue_date"`
	ValidUntil string                      `json:"valid_until"`
	LineItems  []invoicing.LineItemRequest `json:"line_items"`
	Notes      *string                     `json:"notes"`
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
	var p createQuotePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		shared.RespondError(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}
	issueDate, err := parseDate("issue_date", p.IssueDate)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	validUntil, err := parseDate("valid_until", p.ValidUntil)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	q, err := h.service.Create(r.Context(), owner, CreateQuoteRequest{
		ClientID:   p.ClientID,
		Status:     Status(p.Status),
		IssueDate:  issueDate,
		ValidUntil: validUntil,
		LineItems:  p.LineItems,
		Notes:      p.Notes,
	})
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, q)
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
	q, err := h.service.Get(r.Context(), owner, id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, q)
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
	resp, err := h.service.List(r.Context(), owner, ListQuotesRequest{
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
	var p updateQuotePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		shared.RespondError(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}
	issueDate, err := parseDate("issue_date", p.IssueDate)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	validUntil, err := parseDate("valid_until", p.ValidUntil)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	q, err := h.service.Update(r.Context(), owner, id, UpdateQuoteRequest{
		IssueDate:  issueDate,
		ValidUntil: validUntil,
		LineItems:  p.LineItems,
		Notes:      p.Notes,
	})
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, q)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	fn func(*http.Request, uuid.UUID, uuid.UUID) (*Quote, error)) {
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
	q, err := fn(r, owner, id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, q)
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, owner, id uuid.UUID) (*Quote, error) {
		return h.service.Send(r.Context(), owner, id)
	})
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, owner, id uuid.UUID) (*Quote, error) {
		return h.service.Accept(r.Context(), owner, id)
	})
}

func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, owner, id uuid.UUID) (*Quote, error) {
		return h.service.Decline(r.Context(), owner, id)
	})
}

func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
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
	var req ConvertQuoteRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			shared.RespondError(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
			return
		}
	}
	inv, err := h.service.ConvertToInvoice(r.Context(), owner, id, req)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, inv)
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
