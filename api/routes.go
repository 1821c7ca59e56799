package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes mounts the public API, the admin API and the admin pages
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/health", handlers.healthHandler.health())

		// Public project reads
		r.Get("/projects", handlers.projectHandler.getAllProjects())
		r.Get("/project/slug-check", handlers.projectHandler.checkSlug())
		r.Get("/project/slug/{slug}", handlers.projectHandler.getProjectBySlug())
		r.Get("/project/{projectID}", handlers.projectHandler.getProject())

		// Sessions
		r.Post("/auth/setup", handlers.authHandler.setup())
		r.Post("/auth/session", handlers.authHandler.login())
		r.Delete("/auth/session", handlers.authHandler.logout())

		// Admin API
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.requireAdminAPI)

			r.Put("/project/order", handlers.orderHandler.reorderProjects())
			r.Post("/project", handlers.projectHandler.createProject())
			r.Put("/project/{projectID}", handlers.projectHandler.updateProject())
			r.Delete("/project/{projectID}", handlers.projectHandler.deleteProject())
			r.Post("/project/gallery", handlers.galleryHandler.addImage())
			r.Delete("/project/gallery", handlers.galleryHandler.removeImage())
		})

		// Admin pages
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware.requireAdminPage)

			r.Get("/projects", handlers.adminHandler.listProjects())
		})
	})
}
