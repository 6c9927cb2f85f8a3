package appointments

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

// Handler exposes appointment endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
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
	var req CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}
	a, err := h.service.Create(r.Context(), owner, req)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, a)
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
	a, err := h.service.Get(r.Context(), owner, id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, a)
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
	req := ListAppointmentsRequest{
		Status:  Status(q.Get("status")),
		Page:    page,
		PerPage: perPage,
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			shared.RespondError(w, fmt.Errorf("%w: from must be RFC 3339", shared.ErrInvalidInput))
			return
		}
		req.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			shared.RespondError(w, fmt.Errorf("%w: to must be RFC 3339", shared.ErrInvalidInput))
			return
		}
		req.To = t
	}
	resp, err := h.service.List(r.Context(), owner, req)
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
	var req UpdateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}
	a, err := h.service.Update(r.Context(), owner, id, req)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, a)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	fn func(*http.Request, uuid.UUID, uuid.UUID) (*Appointment, error)) {
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
	a, err := fn(r, owner, id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, a)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, owner, id uuid.UUID) (*Appointment, error) {
		return h.service.Confirm(r.Context(), owner, id)
	})
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, owner, id uuid.UUID) (*Appointment, error) {
		return h.service.Complete(r.Context(), owner, id)
	})
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, owner, id uuid.UUID) (*Appointment, error) {
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
