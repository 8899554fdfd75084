// internal/app/features/authn/routes.go
package authn

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter for /auth. These are the only endpoints
// reachable without a bearer token.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.HandleLogin)
	r.Post("/register", h.HandleRegister)
	return r
}
