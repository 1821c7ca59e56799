package api

import (
	"time"

	"github.com/rpupo63/studio-portfolio-backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(svcs *services.Services, db Pinger, r router) *routeHandlers {
	return &routeHandlers{
		projectHandler: newProjectHandler(svcs.Projects, r.maxUploadBytes),
		galleryHandler: newGalleryHandler(svcs.Projects, r.maxUploadBytes),
		orderHandler:   newOrderHandler(svcs.Orders),
		authHandler:    newAuthHandler(svcs.Auth, r.secureCookie),
		adminHandler:   newAdminHandler(svcs.Projects),
		healthHandler:  newHealthHandler(db, startupOr(r.startupTime)),
	}
}

func startupOr(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
