package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/studio-portfolio-backend/services"
)

type projectHandler struct {
	responder      Responder
	logger         zerolog.Logger
	projects       *services.ProjectService
	maxUploadBytes int64
}

func newProjectHandler(projects *services.ProjectService, maxUploadBytes int64) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		projects:       projects,
		maxUploadBytes: maxUploadBytes,
	}
}

// getAllProjects lists projects in display order
// @Summary Get all projects
// @Description Retrieves projects sorted by display order, optionally filtered by category and paginated
// @Tags Projects
// @Produce json
// @Param category query string false "exterior, interior or product"
// @Param page query int false "1-based page"
// @Param limit query int false "page size, max 100"
// @Success 200 {object} services.ProjectPage
// @Failure 400 {object} ErrorResponse "Bad Request - Unknown category"
// @Router /projects [get]
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		page, _ := strconv.Atoi(query.Get("page"))
		limit, _ := strconv.Atoi(query.Get("limit"))

		result, err := h.projects.List(r.Context(), services.ListParams{
			Category: query.Get("category"),
			Page:     page,
			Limit:    limit,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, result)
	}
}

// getProject retrieves a specific project by ID
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} models.Project
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid projectID"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /project/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.Get(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

// getProjectBySlug retrieves a project by its slug
// @Summary Get project by slug
// @Tags Projects
// @Produce json
// @Param slug path string true "Project slug"
// @Success 200 {object} models.Project
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /project/slug/{slug} [get]
func (h projectHandler) getProjectBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := h.projects.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

// checkSlug reports whether a title's slug is taken
// @Summary Check slug
// @Tags Projects
// @Produce json
// @Param title query string true "Project title"
// @Success 200 {object} services.SlugSuggestion
// @Failure 400 {object} ErrorResponse "Bad Request - Missing title"
// @Router /project/slug-check [get]
func (h projectHandler) checkSlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		suggestion, err := h.projects.SuggestSlug(r.Context(), r.URL.Query().Get("title"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, suggestion)
	}
}

// createProject creates a new project from a multipart form
// @Summary Create project
// @Tags Projects
// @Accept multipart/form-data
// @Produce json
// @Param coverImage formData file true "Cover image"
// @Param galleryImages formData file false "Gallery images"
// @Success 201 {object} models.Project
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid fields"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 413 {object} ErrorResponse "Upload too large"
// @Failure 415 {object} ErrorResponse "Unsupported image type"
// @Router /project [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseMultipart(w, r, h.maxUploadBytes); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer r.MultipartForm.RemoveAll()

		fields, err := projectFields(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.Create(r.Context(), services.CreateProjectRequest{
			ProjectFields: fields,
			Cover:         formFile(r, coverImageField),
			Gallery:       galleryFiles(r),
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, project)
	}
}

// updateProject applies a partial edit from a multipart form
// @Summary Update project
// @Tags Projects
// @Accept multipart/form-data
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param removedImages formData string false "JSON array of gallery URLs to delete"
// @Param galleryOrder formData string false "JSON array of gallery URLs in display order"
// @Success 200 {object} models.Project
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid fields"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /project/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := parseMultipart(w, r, h.maxUploadBytes); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer r.MultipartForm.RemoveAll()

		fields, err := projectFields(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		removed, err := jsonListField(r, "removedImages")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		order, err := jsonListField(r, "galleryOrder")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.Update(r.Context(), projectID, services.UpdateProjectRequest{
			ProjectFields: fields,
			Cover:         formFile(r, coverImageField),
			Gallery:       galleryFiles(r),
			RemovedImages: removed,
			GalleryOrder:  order,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

// deleteProject deletes a project and its stored images
// @Summary Delete project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} StatusResponse "Success message"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid projectID"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /project/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projects.Delete(r.Context(), projectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, StatusResponse{
			Status:  "success",
			Message: "project deleted successfully",
		})
	}
}
