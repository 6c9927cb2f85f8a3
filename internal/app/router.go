package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/HeisenPear/saas-localBizz/internal/appointments"
	"github.com/HeisenPear/saas-localBizz/internal/auth"
	"github.com/HeisenPear/saas-localBizz/internal/clients"
	"github.com/HeisenPear/saas-localBizz/internal/dashboard"
	"github.com/HeisenPear/saas-localBizz/internal/invoicing"
	"github.com/HeisenPear/saas-localBizz/internal/quotes"
	"github.com/HeisenPear/saas-localBizz/jobs"
)

// RouterDeps aggregates the handlers mounted on the API router.
type RouterDeps struct {
	Middleware   MiddlewareConfig
	TokenIssuer  *auth.TokenIssuer
	Auth         *auth.Handler
	Clients      *clients.Handler
	Invoices     *invoicing.Handler
	Quotes       *quotes.Handler
	Appointments *appointments.Handler
	Dashboard    *dashboard.Handler
	Jobs         *jobs.Handler
}

// NewRouter builds the HTTP router with the full middleware stack.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(deps.Middleware) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		auth.PublicRoutes(r, deps.Auth)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(deps.TokenIssuer))
			auth.ProtectedRoutes(r, deps.Auth)
			clients.Routes(r, deps.Clients)
			invoicing.Routes(r, deps.Invoices)
			quotes.Routes(r, deps.Quotes)
			appointments.Routes(r, deps.Appointments)
			dashboard.Routes(r, deps.Dashboard)
		})
	})

	if deps.Jobs != nil {
		r.Route("/jobs", func(r chi.Router) {
			deps.Jobs.MountRoutes(r)
		})
	}

	return r
}
