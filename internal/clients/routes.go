package clients

import "github.com/go-chi/chi/v5"

// Routes mounts client endpoints on the given router.
func Routes(r chi.Router, h *Handler) {
	r.Route("/clients", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}
