package auth

import (
	"net/http"
	"strings"

	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

// Middleware verifies the Authorization bearer token and stores the
// owner ID in the request context.
func Middleware(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				shared.RespondError(w, shared.ErrInvalidCredentials)
				return
			}
			id, err := issuer.Verify(raw)
			if err != nil {
				shared.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithOwner(r.Context(), id)))
		})
	}
}
