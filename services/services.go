// Package services holds the project, ordering and auth logic between the
// HTTP handlers and the stores.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rpupo63/studio-portfolio-backend/config"
	"github.com/rpupo63/studio-portfolio-backend/database"
	"github.com/rpupo63/studio-portfolio-backend/models"
	"github.com/rpupo63/studio-portfolio-backend/storage"
)

// ProjectStore is the persistence the project and order services need.
// *database.ProjectRepo satisfies it.
type ProjectStore interface {
	FindAll(ctx context.Context, filter database.ProjectFilter) ([]*models.Project, int64, error)
	Summaries(ctx context.Context) ([]models.ProjectSummary, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	FindBySlug(ctx context.Context, slug string) (*models.Project, error)
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	FrontDisplayOrder(ctx context.Context) (int, error)
	Add(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	ApplyDisplayOrder(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// UserStore is satisfied by *database.UserRepo.
type UserStore interface {
	FindByName(ctx context.Context, name string) (*models.User, error)
	Add(ctx context.Context, user *models.User) error
	CountByRole(ctx context.Context, role models.Role) (int64, error)
}

// Services holds every service the API layer calls.
type Services struct {
	Projects *ProjectService
	Orders   *OrderService
	Auth     *AuthService
}

// New wires the services from config. JWT_SECRET is required.
func New(projects ProjectStore, users UserStore, objects storage.ObjectStorage, c config.Config, logger zerolog.Logger) (*Services, error) {
	auth, err := NewAuthService(users, config.GetString(c, "JWT_SECRET", ""),
		time.Duration(config.GetInt(c, "SESSION_TTL_HOURS", 24))*time.Hour, logger)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	maxUpload := int64(config.GetInt(c, "MAX_UPLOAD_MB", 5)) << 20

	return &Services{
		Projects: NewProjectService(projects, objects, logger,
			WithMaxAssetBytes(maxUpload),
			WithUploadConcurrency(config.GetInt(c, "UPLOAD_CONCURRENCY", 4))),
		Orders: NewOrderService(projects, logger),
		Auth:   auth,
	}, nil
}
