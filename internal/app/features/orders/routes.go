// internal/app/features/orders/routes.go
package orders

import (
	"github.com/go-chi/chi/v5"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/auth"
	"github.com/rafaelGenish111/Alu-Control/internal/domain/models"
)

// Routes mounts the order endpoints under whatever base path the caller
// chooses (typically "/orders" from bootstrap). Install and procurement
// routes live here too: they operate on the same collection and chi does
// not allow a second mount to overlap this one.
func Routes(h *Handler, tm *auth.TokenManager) chi.Router {
	r := chi.NewRouter()
	r.Use(tm.RequireSignedIn)

	// Reads available to every signed-in role.
	r.Get("/", h.HandleList)
	r.Get("/search", h.HandleSearch)
	r.Get("/customers/list", h.HandleCustomers)
	r.Get("/customers/{name}/history", h.HandleClientHistory)
	r.Get("/clients/lookup/{phone}", h.HandleClientByPhone)
	r.Get("/install/team-list", h.HandleTeamList)
	r.Get("/{id}", h.HandleGet)

	// Anyone may leave a note; each note records its author.
	r.Post("/{id}/notes", h.HandleAddNote)

	// Procurement: the factory floor plus the office.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin, models.RoleOffice, models.RoleProduction))
		pr.Get("/procurement/pending", h.HandlePendingMaterials)
		pr.Get("/procurement/status", h.HandlePurchasingStatus)
		pr.Post("/procurement/order-item", h.HandleOrderItem)
		pr.Post("/procurement/arrive-item", h.HandleArriveItem)
	})

	// Installers report completion; the office can too.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin, models.RoleOffice, models.RoleInstaller))
		pr.Post("/{id}/finish", h.HandleFinish)
		pr.Put("/{id}/take-list", h.HandleTakeList)
	})

	// Everything that shapes the order is office/admin work.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin, models.RoleOffice))
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}/status", h.HandleStatus)
		pr.Put("/{id}/client", h.HandleClient)
		pr.Put("/{id}/general", h.HandleGeneral)
		pr.Put("/{id}/products", h.HandleProducts)
		pr.Put("/{id}/materials", h.HandleMaterials)
		pr.Put("/{id}/issue", h.HandleIssue)
		pr.Put("/{id}/final-invoice", h.HandleFinalInvoice)
		pr.Post("/{id}/files", h.HandleAddFile)
		pr.Post("/install/schedule", h.HandleSchedule)
		pr.Put("/{id}/installers", h.HandleInstallers)
		pr.Delete("/{id}", h.HandleSoftDelete)
		pr.Get("/deleted", h.HandleDeletedList)
		pr.Post("/{id}/restore", h.HandleRestore)
	})

	return r
}
