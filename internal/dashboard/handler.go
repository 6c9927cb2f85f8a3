package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

// Handler exposes the dashboard endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	owner, ok := shared.OwnerFromContext(r.Context())
	if !ok {
		shared.RespondError(w, shared.ErrUnauthorized)
		return
	}
	stats, err := h.service.Stats(r.Context(), owner)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, stats)
}

// Routes mounts the dashboard endpoint on the given router.
func Routes(r chi.Router, h *Handler) {
	r.Get("/dashboard/stats", h.Stats)
}
