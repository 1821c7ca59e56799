package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/studio-portfolio-backend/errs"
	"github.com/rpupo63/studio-portfolio-backend/services"
)

type galleryHandler struct {
	responder      Responder
	logger         zerolog.Logger
	projects       *services.ProjectService
	maxUploadBytes int64
}

func newGalleryHandler(projects *services.ProjectService, maxUploadBytes int64) galleryHandler {
	logger := log.With().Str("handlerName", "galleryHandler").Logger()

	return galleryHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		projects:       projects,
		maxUploadBytes: maxUploadBytes,
	}
}

// addImage appends one image to a project's gallery
// @Summary Add gallery image
// @Tags Gallery
// @Accept multipart/form-data
// @Produce json
// @Param projectId formData string true "Project ID" format(uuid)
// @Param galleryImage formData file true "Image"
// @Success 201 {object} GalleryImageResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Missing file or id"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /project/gallery [post]
func (h galleryHandler) addImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseMultipart(w, r, h.maxUploadBytes); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer r.MultipartForm.RemoveAll()

		projectID, err := parseUUID(r.FormValue("projectId"), "projectId")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		image := formFile(r, singleGalleryField)
		if image == nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError(singleGalleryField))
			return
		}

		url, project, err := h.projects.AppendGalleryImage(r.Context(), projectID, *image)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, GalleryImageResponse{ImageURL: url, Project: project})
	}
}

// removeImage prunes one image from a project's gallery and deletes it from storage
// @Summary Remove gallery image
// @Tags Gallery
// @Produce json
// @Param projectId query string true "Project ID" format(uuid)
// @Param imageUrl query string true "Gallery image URL"
// @Success 200 {object} models.Project
// @Failure 404 {object} ErrorResponse "Not Found - Project or image not found"
// @Router /project/gallery [delete]
func (h galleryHandler) removeImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		projectID, err := parseUUID(query.Get("projectId"), "projectId")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		imageURL := query.Get("imageUrl")
		if imageURL == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("imageUrl"))
			return
		}

		project, err := h.projects.RemoveGalleryImage(r.Context(), projectID, imageURL)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, project)
	}
}
