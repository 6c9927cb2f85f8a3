package quotes

import "github.com/go-chi/chi/v5"

// Routes mounts quote endpoints on the given router.
func Routes(r chi.Router, h *Handler) {
	r.Route("/quotes", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/send", h.Send)
		r.Post("/{id}/accept", h.Accept)
		r.Post("/{id}/decline", h.Decline)
		r.Post("/{id}/convert", h.Convert)
	})
}
