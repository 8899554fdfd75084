// internal/app/features/suppliers/routes.go
package suppliers

import (
	"github.com/go-chi/chi/v5"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/auth"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// Routes returns the subrouter for /suppliers. The factory reads the list
// when ordering materials; editing is office/admin.
func Routes(h *Handler, tm *auth.TokenManager) chi.Router {
	r := chi.NewRouter()
	r.Use(tm.RequireSignedIn)

	r.Get("/", h.HandleList)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin, models.RoleOffice))
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
