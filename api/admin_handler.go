package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/studio-portfolio-backend/services"
)

type adminHandler struct {
	responder Responder
	logger    zerolog.Logger
	projects  *services.ProjectService
}

func newAdminHandler(projects *services.ProjectService) adminHandler {
	logger := log.With().Str("handlerName", "adminHandler").Logger()

	return adminHandler{
		responder: NewResponder(logger),
		logger:    logger,
		projects:  projects,
	}
}

// listProjects returns the summaries the admin drag list is built from
// @Summary Admin project list
// @Tags Admin
// @Produce json
// @Success 200 {array} models.ProjectSummary
// @Router /admin/projects [get]
func (h adminHandler) listProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := h.projects.Summaries(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if claims, ok := ctxGetClaims(r.Context()); ok {
			h.logger.Debug().Str("user", claims.Name).Int("projects", len(summaries)).Msg("admin list served")
		}
		h.responder.WriteJSON(w, summaries)
	}
}
