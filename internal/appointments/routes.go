package appointments

import "github.com/go-chi/chi/v5"

// Routes mounts appointment endpoints on the given router.
func Routes(r chi.Router, h *Handler) {
	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/confirm", h.Confirm)
		r.Post("/{id}/complete", h.Complete)
		r.Post("/{id}/cancel", h.Cancel)
	})
}
