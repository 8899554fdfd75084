// internal/app/features/repairs/routes.go
package repairs

import (
	"github.com/go-chi/chi/v5"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/auth"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// Routes mounts the service-ticket endpoints (typically under "/repairs").
func Routes(h *Handler, tm *auth.TokenManager) chi.Router {
	r := chi.NewRouter()
	r.Use(tm.RequireSignedIn)

	// Reads available to every signed-in role.
	r.Get("/", h.HandleList)
	r.Get("/{id}", h.HandleGet)

	// Field crews report from site: notes, media, and the packing list.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin, models.RoleOffice, models.RoleInstaller))
		pr.Post("/{id}/notes", h.HandleAddNote)
		pr.Post("/{id}/media", h.HandleAddMedia)
		pr.Put("/{id}/take-list", h.HandleTakeList)
	})

	// Opening, editing, and moving tickets is office/admin work.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin, models.RoleOffice))
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Post("/{id}/approve", h.HandleApprove)
		pr.Post("/{id}/schedule", h.HandleSchedule)
		pr.Post("/{id}/close", h.HandleClose)
		pr.Put("/{id}/issue", h.HandleIssue)
	})

	return r
}
