package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rpupo63/studio-portfolio-backend/database"
	"github.com/rpupo63/studio-portfolio-backend/errs"
)

// OrderItem is one entry of a submitted ordering. The list position is what
// counts; DisplayOrder is accepted for compatibility and otherwise ignored.
type OrderItem struct {
	ID           string `json:"id"`
	DisplayOrder int    `json:"displayOrder"`
}

type OrderService struct {
	projects ProjectStore
	logger   zerolog.Logger
}

func NewOrderService(projects ProjectStore, logger zerolog.Logger) *OrderService {
	return &OrderService{
		projects: projects,
		logger:   logger.With().Str("service", "order").Logger(),
	}
}

// Reorder makes the submitted list the new display order. All ids are checked
// before anything is written, and either every row is updated or none is.
// It returns the number of projects whose order changed.
func (s *OrderService) Reorder(ctx context.Context, items []OrderItem) (int64, error) {
	ids, err := parseOrder(items)
	if err != nil {
		return 0, err
	}

	modified, err := s.projects.ApplyDisplayOrder(ctx, ids)
	if err != nil {
		var unknown *database.UnknownIDsError
		if errors.As(err, &unknown) {
			missing := make([]string, len(unknown.IDs))
			for i, id := range unknown.IDs {
				missing[i] = id.String()
			}
			return 0, errs.NewUnknownIDsError("project", missing)
		}
		return 0, errs.NewDatabaseError("reorder", "projects", err)
	}

	s.logger.Info().Int("submitted", len(ids)).Int64("modified", modified).Msg("display order applied")
	return modified, nil
}

// ReorderIDs is Reorder for a bare id list.
func (s *OrderService) ReorderIDs(ctx context.Context, ids []string) (int64, error) {
	items := make([]OrderItem, len(ids))
	for i, id := range ids {
		items[i] = OrderItem{ID: id, DisplayOrder: i}
	}
	return s.Reorder(ctx, items)
}

func parseOrder(items []OrderItem) ([]uuid.UUID, error) {
	if len(items) == 0 {
		return nil, errs.NewValidationError(map[string]string{"projects": "at least one project is required"})
	}

	fields := errs.FieldErrors{}
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]int, len(items))
	for i, item := range items {
		field := fmt.Sprintf("projects[%d].id", i)
		id, err := uuid.Parse(item.ID)
		if err != nil {
			fields.Add(field, "invalid id")
			continue
		}
		if first, dup := seen[id]; dup {
			fields.Add(field, fmt.Sprintf("duplicate of projects[%d]", first))
			continue
		}
		seen[id] = i
		ids = append(ids, id)
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
