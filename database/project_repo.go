package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/studio-portfolio-backend/models"
)

const listOrder = "display_order ASC, created_at DESC"

// ErrProjectNotFound is returned by writes that target a project id with no row.
var ErrProjectNotFound = errors.New("project not found")

// ProjectFilter narrows FindAll. Zero Limit means no limit.
type ProjectFilter struct {
	Category *models.Category
	Offset   int
	Limit    int
}

// UnknownIDsError is returned by ApplyDisplayOrder when some ids have no record.
type UnknownIDsError struct {
	IDs []uuid.UUID
}

func (e *UnknownIDsError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("unknown project ids: %s", strings.Join(ids, ", "))
}

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// FindAll returns projects in display order along with the total matching the filter.
func (r *ProjectRepo) FindAll(ctx context.Context, filter ProjectFilter) ([]*models.Project, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.Project{})
		if filter.Category != nil {
			query = query.Where("category = ?", string(*filter.Category))
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := scoped().Order(listOrder)
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var projects []*models.Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// Summaries returns the trimmed admin-list view of every project in display order.
func (r *ProjectRepo) Summaries(ctx context.Context) ([]models.ProjectSummary, error) {
	var projects []*models.Project
	err := r.db.WithContext(ctx).
		Select("id", "title", "slug", "location", "type", "category", "client", "cover_image", "display_order", "created_at").
		Order(listOrder).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ProjectSummary, len(projects))
	for i, p := range projects {
		summaries[i] = p.Summary()
	}
	return summaries, nil
}

// FindByID returns a project by its ID, or nil when none exists
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindBySlug returns a project by slug, or nil when none exists
func (r *ProjectRepo) FindBySlug(ctx context.Context, slug string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).First(&project, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// SlugExists reports whether another project (not excludeID) already uses slug.
func (r *ProjectRepo) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Project{}).Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FrontDisplayOrder returns a display order that sorts before every existing project.
func (r *ProjectRepo) FrontDisplayOrder(ctx context.Context) (int, error) {
	var lowest sql.NullInt64
	row := r.db.WithContext(ctx).Model(&models.Project{}).Select("MIN(display_order)").Row()
	if err := row.Scan(&lowest); err != nil {
		return 0, err
	}
	if !lowest.Valid {
		return 0, nil
	}
	return int(lowest.Int64) - 1, nil
}

// Add inserts a new project into the database
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// Update writes every field of an existing project. It never inserts: a project
// deleted since it was loaded yields ErrProjectNotFound.
func (r *ProjectRepo) Update(ctx context.Context, project *models.Project) error {
	res := r.db.WithContext(ctx).Model(project).Select("*").Omit("id", "created_at").Updates(project)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update %s: %w", project.ID, ErrProjectNotFound)
	}
	return nil
}

// Delete removes a project from the database by id
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id).Error
}

// ApplyDisplayOrder sets display_order to each id's index in ids, inside one transaction.
// Every id must exist; otherwise nothing is written and an *UnknownIDsError is returned.
// The result counts rows whose order actually changed.
func (r *ProjectRepo) ApplyDisplayOrder(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var modified int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found []uuid.UUID
		if err := tx.Model(&models.Project{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
			return err
		}
		if missing := missingIDs(ids, found); len(missing) > 0 {
			return &UnknownIDsError{IDs: missing}
		}

		for position, id := range ids {
			res := tx.Model(&models.Project{}).
				Where("id = ? AND display_order <> ?", id, position).
				Update("display_order", position)
			if res.Error != nil {
				return res.Error
			}
			modified += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return modified, nil
}

// BackfillDisplayOrder renumbers every project 0..n-1 by creation time, oldest first.
// It is meant for rows created before display order existed.
func (r *ProjectRepo) BackfillDisplayOrder(ctx context.Context) (int64, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Project{}).Order("created_at ASC, id ASC").Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return r.ApplyDisplayOrder(ctx, ids)
}

func missingIDs(want, found []uuid.UUID) []uuid.UUID {
	present := make(map[uuid.UUID]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}

	var missing []uuid.UUID
	for _, id := range want {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
