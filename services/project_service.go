package services

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/rpupo63/studio-portfolio-backend/database"
	"github.com/rpupo63/studio-portfolio-backend/errs"
	"github.com/rpupo63/studio-portfolio-backend/models"
	"github.com/rpupo63/studio-portfolio-backend/ordering"
	"github.com/rpupo63/studio-portfolio-backend/storage"
)

const maxPageLimit = 100

// ProjectFields are the descriptive form fields of a project.
// On update an empty string keeps the stored value and nil Tags keeps the stored tags.
type ProjectFields struct {
	Title       string
	Location    string
	Type        string
	Category    string
	Program     string
	Client      string
	SiteArea    string
	BuiltArea   string
	Design      string
	Completion  string
	Description string
	Tags        []string
}

type CreateProjectRequest struct {
	ProjectFields
	Cover   *Asset
	Gallery []Asset
}

type UpdateProjectRequest struct {
	ProjectFields
	Cover         *Asset
	Gallery       []Asset
	RemovedImages []string
	GalleryOrder  []string
}

type ListParams struct {
	Category string
	Page     int
	Limit    int
}

type ProjectPage struct {
	Projects []*models.Project `json:"projects"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit,omitempty"`
}

type SlugSuggestion struct {
	Exists        bool   `json:"exists"`
	SuggestedSlug string `json:"suggestedSlug"`
}

type ProjectService struct {
	projects          ProjectStore
	storage           storage.ObjectStorage
	logger            zerolog.Logger
	maxAssetBytes     int64
	uploadConcurrency int
}

type ProjectOption func(*ProjectService)

func WithMaxAssetBytes(n int64) ProjectOption {
	return func(s *ProjectService) {
		if n > 0 {
			s.maxAssetBytes = n
		}
	}
}

func WithUploadConcurrency(n int) ProjectOption {
	return func(s *ProjectService) {
		if n > 0 {
			s.uploadConcurrency = n
		}
	}
}

func NewProjectService(projects ProjectStore, objects storage.ObjectStorage, logger zerolog.Logger, opts ...ProjectOption) *ProjectService {
	s := &ProjectService{
		projects:          projects,
		storage:           objects,
		logger:            logger.With().Str("service", "projects").Logger(),
		maxAssetBytes:     DefaultMaxAssetBytes,
		uploadConcurrency: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ProjectService) List(ctx context.Context, params ListParams) (*ProjectPage, error) {
	filter := database.ProjectFilter{}
	if strings.TrimSpace(params.Category) != "" {
		category, err := models.ParseCategory(params.Category)
		if err != nil {
			return nil, errs.NewInvalidFieldError("category", err.Error())
		}
		filter.Category = &category
	}

	page := max(params.Page, 1)
	limit := min(max(params.Limit, 0), maxPageLimit)
	if limit > 0 {
		filter.Limit = limit
		filter.Offset = (page - 1) * limit
	}

	projects, total, err := s.projects.FindAll(ctx, filter)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "projects", err)
	}
	if projects == nil {
		projects = []*models.Project{}
	}
	return &ProjectPage{Projects: projects, Total: total, Page: page, Limit: limit}, nil
}

func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return nil, errs.NewNotFoundError("project not found")
	}
	return project, nil
}

func (s *ProjectService) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	project, err := s.projects.FindBySlug(ctx, slug)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return nil, errs.NewNotFoundError("project not found")
	}
	return project, nil
}

func (s *ProjectService) Summaries(ctx context.Context) ([]models.ProjectSummary, error) {
	summaries, err := s.projects.Summaries(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "projects", err)
	}
	if summaries == nil {
		summaries = []models.ProjectSummary{}
	}
	return summaries, nil
}

// SuggestSlug reports whether title's base slug is taken and the slug a new project would get.
func (s *ProjectService) SuggestSlug(ctx context.Context, title string) (*SlugSuggestion, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errs.NewMissingRequiredFieldError("title")
	}

	base := Slugify(title)
	exists, err := s.projects.SlugExists(ctx, base, uuid.Nil)
	if err != nil {
		return nil, errs.NewDatabaseError("check", "slug", err)
	}

	suggested := base
	if exists {
		suggested, err = s.uniqueSlug(ctx, base, uuid.Nil)
		if err != nil {
			return nil, err
		}
	}
	return &SlugSuggestion{Exists: exists, SuggestedSlug: suggested}, nil
}

func (s *ProjectService) uniqueSlug(ctx context.Context, base string, excludeID uuid.UUID) (string, error) {
	slug, err := UniqueSlug(ctx, base, func(ctx context.Context, candidate string) (bool, error) {
		return s.projects.SlugExists(ctx, candidate, excludeID)
	})
	if err != nil {
		return "", errs.NewDatabaseError("check", "slug", err)
	}
	return slug, nil
}

// Create validates the form, uploads the assets and stores a new project at the front of the list.
func (s *ProjectService) Create(ctx context.Context, req CreateProjectRequest) (*models.Project, error) {
	fields := errs.FieldErrors{}
	if strings.TrimSpace(req.Title) == "" {
		fields.Add("title", "Title is required")
	}
	if strings.TrimSpace(req.Location) == "" {
		fields.Add("location", "Location is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		fields.Add("description", "Description is required")
	}
	if req.Cover == nil {
		fields.Add("coverImage", "Cover image is required")
	}
	category, err := models.ParseCategory(req.Category)
	if err != nil {
		fields.Add("category", err.Error())
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}
	if err := s.validateAssets(req.Cover, req.Gallery); err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, Slugify(req.Title), uuid.Nil)
	if err != nil {
		return nil, err
	}

	project := &models.Project{Slug: slug, Category: category}
	applyFields(project, req.ProjectFields)

	batch := &uploadBatch{}
	project.CoverImage, err = s.uploadOne(ctx, batch, slug, "cover", *req.Cover)
	if err != nil {
		return nil, err
	}
	gallery, err := s.uploadGallery(ctx, batch, slug, req.Gallery)
	if err != nil {
		s.rollback(ctx, batch)
		return nil, err
	}
	project.GalleryImages = datatypes.JSONSlice[string](gallery)

	project.DisplayOrder, err = s.projects.FrontDisplayOrder(ctx)
	if err != nil {
		s.rollback(ctx, batch)
		return nil, errs.NewDatabaseError("read", "display order", err)
	}

	if err := s.projects.Add(ctx, project); err != nil {
		s.rollback(ctx, batch)
		return nil, errs.NewDatabaseError("create", "project", err)
	}

	s.logger.Info().Str("projectID", project.ID.String()).Str("slug", slug).Int("galleryImages", len(gallery)).Msg("project created")
	return project, nil
}

// Update applies a partial edit. Objects removed from the record are deleted
// from storage only after the record is saved.
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, req UpdateProjectRequest) (*models.Project, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Category != "" {
		category, err := models.ParseCategory(req.Category)
		if err != nil {
			return nil, errs.NewValidationError(map[string]string{"category": err.Error()})
		}
		project.Category = category
	}
	if err := s.validateAssets(req.Cover, req.Gallery); err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(req.Title); title != "" && title != project.Title {
		project.Slug, err = s.uniqueSlug(ctx, Slugify(title), project.ID)
		if err != nil {
			return nil, err
		}
	}
	applyFields(project, req.ProjectFields)

	var obsolete []string
	if len(req.RemovedImages) > 0 {
		kept := make(datatypes.JSONSlice[string], 0, len(project.GalleryImages))
		for _, url := range project.GalleryImages {
			if slices.Contains(req.RemovedImages, url) {
				obsolete = append(obsolete, url)
				continue
			}
			kept = append(kept, url)
		}
		project.GalleryImages = kept
	}

	batch := &uploadBatch{}
	if req.Cover != nil {
		cover, err := s.uploadOne(ctx, batch, project.Slug, "cover", *req.Cover)
		if err != nil {
			return nil, err
		}
		if project.CoverImage != "" {
			obsolete = append(obsolete, project.CoverImage)
		}
		project.CoverImage = cover
	}

	added, err := s.uploadGallery(ctx, batch, project.Slug, req.Gallery)
	if err != nil {
		s.rollback(ctx, batch)
		return nil, err
	}
	project.GalleryImages = append(project.GalleryImages, added...)

	if len(req.GalleryOrder) > 0 {
		ordered, err := OrderGallery(project.GalleryImages, req.GalleryOrder)
		if err != nil {
			s.rollback(ctx, batch)
			return nil, errs.NewInternalErrorWithCause("failed to reorder gallery", err)
		}
		project.GalleryImages = ordered
	}

	if err := s.projects.Update(ctx, project); err != nil {
		s.rollback(ctx, batch)
		return nil, saveError(err)
	}

	s.deleteURLs(ctx, obsolete)
	s.logger.Info().Str("projectID", project.ID.String()).Int("removedObjects", len(obsolete)).Msg("project updated")
	return project, nil
}

// saveError maps a failed Update. A project deleted since it was loaded is a 404.
func saveError(err error) error {
	if errors.Is(err, database.ErrProjectNotFound) {
		return errs.NewNotFound("project")
	}
	return errs.NewDatabaseError("update", "project", err)
}

// OrderGallery moves the URLs listed in order to the front of gallery, in that
// order. Unknown URLs are ignored and unlisted ones keep their relative order.
func OrderGallery(gallery []string, order []string) ([]string, error) {
	out := slices.Clone(gallery)
	position := 0
	for _, url := range order {
		from := slices.Index(out, url)
		if from < position {
			continue
		}
		var err error
		out, err = ordering.Move(out, from, position)
		if err != nil {
			return nil, err
		}
		position++
	}
	return out, nil
}

// AppendGalleryImage uploads one image and adds it to the end of the gallery.
func (s *ProjectService) AppendGalleryImage(ctx context.Context, id uuid.UUID, image Asset) (string, *models.Project, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	if err := s.validateAsset(image); err != nil {
		return "", nil, err
	}

	batch := &uploadBatch{}
	url, err := s.uploadOne(ctx, batch, project.Slug, "gallery", image)
	if err != nil {
		return "", nil, err
	}

	project.GalleryImages = append(project.GalleryImages, url)
	if err := s.projects.Update(ctx, project); err != nil {
		s.rollback(ctx, batch)
		return "", nil, saveError(err)
	}
	return url, project, nil
}

// RemoveGalleryImage prunes url from the gallery and deletes its object.
func (s *ProjectService) RemoveGalleryImage(ctx context.Context, id uuid.UUID, url string) (*models.Project, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	idx := slices.Index(project.GalleryImages, url)
	if idx < 0 {
		return nil, errs.NewNotFoundError("image not found in gallery")
	}
	project.GalleryImages = slices.Delete(project.GalleryImages, idx, idx+1)

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, saveError(err)
	}
	s.deleteURLs(ctx, []string{url})
	return project, nil
}

// Delete removes the record, then its cover and gallery objects.
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	project, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.projects.Delete(ctx, id); err != nil {
		return errs.NewDatabaseError("delete", "project", err)
	}

	assets := project.Assets()
	s.deleteURLs(ctx, assets)
	s.logger.Info().Str("projectID", id.String()).Int("objects", len(assets)).Msg("project deleted")
	return nil
}

func applyFields(p *models.Project, f ProjectFields) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&p.Title, f.Title)
	set(&p.Location, f.Location)
	set(&p.Type, f.Type)
	set(&p.Program, f.Program)
	set(&p.Client, f.Client)
	set(&p.SiteArea, f.SiteArea)
	set(&p.BuiltArea, f.BuiltArea)
	set(&p.Design, f.Design)
	set(&p.Completion, f.Completion)
	set(&p.Description, f.Description)
	if f.Tags != nil {
		p.Tags = datatypes.JSONSlice[string](NormalizeTags(f.Tags))
	}
}

// NormalizeTags trims, drops blanks and removes duplicates, keeping first occurrence order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
