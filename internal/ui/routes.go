package ui

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all UI routes on the given router.
func (ui *UI) RegisterRoutes(r chi.Router) {
	// Public routes (no auth required).
	r.Get("/login", ui.HandleLogin)
	r.Post("/login", ui.HandleLoginPost)

	// Protected routes (auth required).
	r.Group(func(r chi.Router) {
		r.Use(ui.AuthMiddleware)

		r.Get("/", ui.HandleDashboard)
		r.Get("/logout", ui.HandleLogout)

		r.Route("/pricings/{type}", ui.listRoutes)
		r.Route("/settings", ui.listRoutes)
	})
}

// listRoutes are shared by every resource list. Mutations are plain form
// POSTs answered with a redirect back to the list.
func (ui *UI) listRoutes(r chi.Router) {
	r.Get("/", ui.HandleList)
	r.Post("/", ui.HandleCreate)
	r.Get("/export", ui.HandleExport)
	r.Post("/modal/create", ui.HandleOpenCreate)
	r.Post("/modal/close", ui.HandleCloseModal)
	r.Route("/{id}", func(r chi.Router) {
		r.Post("/", ui.HandleUpdate)
		r.Post("/edit", ui.HandleOpenEdit)
		r.Post("/delete/request", ui.HandleDeleteRequest)
		r.Post("/delete/confirm", ui.HandleDeleteConfirm)
		r.Post("/delete/cancel", ui.HandleDeleteCancel)
	})
}
