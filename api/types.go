package api

import (
	"github.com/rpupo63/studio-portfolio-backend/models"
	"github.com/rpupo63/studio-portfolio-backend/services"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler projectHandler
	galleryHandler galleryHandler
	orderHandler   orderHandler
	authHandler    authHandler
	adminHandler   adminHandler
	healthHandler  healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string            `json:"error" example:"Internal Server Error"`
	Status  string            `json:"status" example:"error"`
	Field   string            `json:"field,omitempty" example:"title"`
	Fields  map[string]string `json:"fields,omitempty"`
	Details string            `json:"details,omitempty" example:"Additional error details"`
	Cause   string            `json:"cause,omitempty" example:"Underlying error cause"`
}

// ReorderRequest accepts either the full item list or a bare id list.
type ReorderRequest struct {
	Projects []services.OrderItem `json:"projects"`
	IDs      []string             `json:"ids"`
}

type ReorderResponse struct {
	Modified int64 `json:"modified"`
}

type CredentialsRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type GalleryImageResponse struct {
	ImageURL string          `json:"imageUrl"`
	Project  *models.Project `json:"project"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
