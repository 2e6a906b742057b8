package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/stockledger/pkg/app"
	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/services/inventory/application/handlers"
	appsvcs "github.com/ghuser/stockledger/services/inventory/application/services"
)

// InventoryRoutes registers inventory endpoints on the provided chi router.
// Everything except login requires a session; backup and restore require admin.
func InventoryRoutes(r chi.Router, a *app.Application, svcs *appsvcs.Services) {
	r.Post("/session", handlers.NewPostSessionHandler(a.Authenticator, a.SessionStore, a.Logger).Execute)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(a.SessionStore, a.Logger))

		r.Get("/session", handlers.GetSessionHandler{}.Execute)
		r.Delete("/session", handlers.NewDeleteSessionHandler(a.SessionStore).Execute)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", handlers.NewListItemsHandler(svcs).Execute)
			r.Post("/", handlers.NewPostItemHandler(svcs).Execute)
			r.Get("/duplicates", handlers.NewDuplicatesHandler(svcs).Execute)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handlers.NewGetItemHandler(svcs).Execute)
				r.Patch("/", handlers.NewPatchItemHandler(svcs).Execute)
				r.Delete("/", handlers.NewDeleteItemHandler(svcs, a.Logger).Execute)

				r.Post("/transactions", handlers.NewPostTransactionHandler(svcs).Execute)
				r.Patch("/transactions/{txID}", handlers.NewPatchTransactionHandler(svcs).Execute)
				r.Delete("/transactions/{txID}", handlers.NewDeleteTransactionHandler(svcs).Execute)
			})
		})

		r.Get("/serials", handlers.NewListSerialsHandler(svcs).Execute)
		r.Get("/serials/check", handlers.NewSerialCheckHandler(svcs).Execute)
		r.Get("/export", handlers.NewExportHandler(svcs).Execute)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(a.SessionStore, a.Logger, auth.RoleAdmin))

		backup := handlers.NewBackupHandler(svcs)
		r.Get("/backup/snapshot", backup.Snapshot)
		r.Post("/backup", backup.Run)
		r.Get("/backup/settings", backup.GetSettings)
		r.Put("/backup/settings", backup.PutSettings)
		r.Post("/restore", backup.Restore)
	})
}
