package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/studio-portfolio-backend/errs"
	"github.com/rpupo63/studio-portfolio-backend/services"
)

const maxReorderBodyBytes = 1 << 20

type orderHandler struct {
	responder Responder
	logger    zerolog.Logger
	orders    *services.OrderService
}

func newOrderHandler(orders *services.OrderService) orderHandler {
	logger := log.With().Str("handlerName", "orderHandler").Logger()

	return orderHandler{
		responder: NewResponder(logger),
		logger:    logger,
		orders:    orders,
	}
}

// reorderProjects saves a full display order
// @Summary Reorder projects
// @Description Sets each project's display order to its index in the submitted list. All ids are validated first and the update is all-or-nothing.
// @Tags Projects
// @Accept json
// @Produce json
// @Param order body ReorderRequest true "New order"
// @Success 200 {object} ReorderResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Empty, malformed or duplicate ids"
// @Failure 404 {object} ErrorResponse "Not Found - Unknown project id"
// @Router /project/order [put]
func (h orderHandler) reorderProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ReorderRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReorderBodyBytes)).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError("body", err))
			return
		}

		var (
			modified int64
			err      error
		)
		if len(req.Projects) == 0 && len(req.IDs) > 0 {
			modified, err = h.orders.ReorderIDs(r.Context(), req.IDs)
		} else {
			modified, err = h.orders.Reorder(r.Context(), req.Projects)
		}
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, ReorderResponse{Modified: modified})
	}
}
