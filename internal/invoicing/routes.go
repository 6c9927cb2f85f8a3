package invoicing

import "github.com/go-chi/chi/v5"

// Routes mounts invoice endpoints on the given router.
func Routes(r chi.Router, h *Handler) {
	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/submit", h.Submit)
		r.Post("/{id}/pay", h.MarkPaid)
		r.Post("/{id}/cancel", h.Cancel)
	})
}
