// Package mocks has in-memory stand-ins for the stores and object storage.
package mocks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rpupo63/studio-portfolio-backend/database"
	"github.com/rpupo63/studio-portfolio-backend/models"
)

var errDuplicate = errors.New("duplicate key value violates unique constraint")

// MockProjectStore is a thread-safe in-memory project table.
type MockProjectStore struct {
	mu       sync.Mutex
	Projects map[uuid.UUID]*models.Project

	AddError    error
	UpdateError error
	DeleteError error
	ApplyError  error
	ApplyCalls  int
}

func NewMockProjectStore() *MockProjectStore {
	return &MockProjectStore{Projects: make(map[uuid.UUID]*models.Project)}
}

func clone(p *models.Project) *models.Project {
	cp := *p
	cp.Tags = slices.Clone(p.Tags)
	cp.GalleryImages = slices.Clone(p.GalleryImages)
	return &cp
}

// Seed inserts projects directly, filling ids and timestamps.
func (m *MockProjectStore) Seed(projects ...*models.Project) {
	for _, p := range projects {
		_ = m.Add(context.Background(), p)
	}
}

func (m *MockProjectStore) sorted() []*models.Project {
	out := make([]*models.Project, 0, len(m.Projects))
	for _, p := range m.Projects {
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *MockProjectStore) FindAll(ctx context.Context, filter database.ProjectFilter) ([]*models.Project, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*models.Project
	for _, p := range m.sorted() {
		if filter.Category != nil && p.Category != *filter.Category {
			continue
		}
		matched = append(matched, clone(p))
	}

	total := int64(len(matched))
	start := min(filter.Offset, len(matched))
	end := len(matched)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(matched))
	}
	return matched[start:end], total, nil
}

func (m *MockProjectStore) Summaries(ctx context.Context) ([]models.ProjectSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.ProjectSummary
	for _, p := range m.sorted() {
		out = append(out, p.Summary())
	}
	return out, nil
}

func (m *MockProjectStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.Projects[id]; ok {
		return clone(p), nil
	}
	return nil, nil
}

func (m *MockProjectStore) FindBySlug(ctx context.Context, slug string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.Projects {
		if p.Slug == slug {
			return clone(p), nil
		}
	}
	return nil, nil
}

func (m *MockProjectStore) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slugTaken(slug, excludeID), nil
}

func (m *MockProjectStore) slugTaken(slug string, excludeID uuid.UUID) bool {
	for id, p := range m.Projects {
		if p.Slug == slug && id != excludeID {
			return true
		}
	}
	return false
}

func (m *MockProjectStore) FrontDisplayOrder(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Projects) == 0 {
		return 0, nil
	}
	lowest := 0
	first := true
	for _, p := range m.Projects {
		if first || p.DisplayOrder < lowest {
			lowest = p.DisplayOrder
			first = false
		}
	}
	return lowest - 1, nil
}

func (m *MockProjectStore) Add(ctx context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AddError != nil {
		return m.AddError
	}
	if m.slugTaken(project.Slug, uuid.Nil) {
		return errDuplicate
	}
	if err := project.BeforeCreate(nil); err != nil {
		return err
	}
	now := time.Now()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now
	m.Projects[project.ID] = clone(project)
	return nil
}

func (m *MockProjectStore) Update(ctx context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.Projects[project.ID]; !ok {
		return fmt.Errorf("update %s: %w", project.ID, database.ErrProjectNotFound)
	}
	if m.slugTaken(project.Slug, project.ID) {
		return errDuplicate
	}
	project.UpdatedAt = time.Now()
	m.Projects[project.ID] = clone(project)
	return nil
}

func (m *MockProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteError != nil {
		return m.DeleteError
	}
	delete(m.Projects, id)
	return nil
}

// ApplyDisplayOrder mirrors the repository: all ids must exist or nothing changes.
func (m *MockProjectStore) ApplyDisplayOrder(ctx context.Context, ids []uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ApplyCalls++
	if m.ApplyError != nil {
		return 0, m.ApplyError
	}

	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := m.Projects[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return 0, &database.UnknownIDsError{IDs: missing}
	}

	var modified int64
	for position, id := range ids {
		if p := m.Projects[id]; p.DisplayOrder != position {
			p.DisplayOrder = position
			modified++
		}
	}
	return modified, nil
}

// Order returns project ids in list order.
func (m *MockProjectStore) Order() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []uuid.UUID
	for _, p := range m.sorted() {
		ids = append(ids, p.ID)
	}
	return ids
}

// MockUserStore is an in-memory user table keyed by name.
type MockUserStore struct {
	mu    sync.Mutex
	Users map[string]*models.User

	FindError error
}

func NewMockUserStore() *MockUserStore {
	return &MockUserStore{Users: make(map[string]*models.User)}
}

func (m *MockUserStore) FindByName(ctx context.Context, name string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FindError != nil {
		return nil, m.FindError
	}
	if u, ok := m.Users[name]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *MockUserStore) Add(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Users[user.Name]; ok {
		return errDuplicate
	}
	if err := user.BeforeCreate(nil); err != nil {
		return err
	}
	cp := *user
	m.Users[user.Name] = &cp
	return nil
}

func (m *MockUserStore) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, u := range m.Users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}
