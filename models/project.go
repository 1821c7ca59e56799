package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project is one portfolio entry: descriptive metadata plus its cover and gallery images.
type Project struct {
	ID            uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey;not null"`
	Title         string                      `json:"title" gorm:"type:text;not null"`
	Slug          string                      `json:"slug" gorm:"type:text;not null;uniqueIndex:idx_projects_slug"`
	Location      string                      `json:"location" gorm:"type:text;not null"`
	Type          string                      `json:"type" gorm:"type:text;not null;default:''"`
	Category      Category                    `json:"category" gorm:"type:text;not null;default:'exterior';index:idx_projects_category"`
	Program       string                      `json:"program" gorm:"type:text;not null;default:''"`
	Client        string                      `json:"client" gorm:"type:text;not null;default:''"`
	SiteArea      string                      `json:"siteArea" gorm:"type:text;not null;default:''"`
	BuiltArea     string                      `json:"builtArea" gorm:"type:text;not null;default:''"`
	Design        string                      `json:"design" gorm:"type:text;not null;default:''"`
	Completion    string                      `json:"completion" gorm:"type:text;not null;default:''"`
	Description   string                      `json:"description" gorm:"type:text;not null"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	CoverImage    string                      `json:"coverImage" gorm:"type:text;not null"`
	GalleryImages datatypes.JSONSlice[string] `json:"galleryImages"`
	DisplayOrder  int                         `json:"displayOrder" gorm:"not null;default:0;index:idx_projects_display_order"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

func (Project) TableName() string {
	return "projects"
}

// BeforeCreate assigns an id and normalizes nil slices so JSON columns never store null.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Tags == nil {
		p.Tags = datatypes.JSONSlice[string]{}
	}
	if p.GalleryImages == nil {
		p.GalleryImages = datatypes.JSONSlice[string]{}
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	return nil
}

// Summary is the trimmed view used by the admin list.
func (p Project) Summary() ProjectSummary {
	return ProjectSummary{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Location:     p.Location,
		Type:         p.Type,
		Category:     p.Category,
		Client:       p.Client,
		CoverImage:   p.CoverImage,
		DisplayOrder: p.DisplayOrder,
	}
}

// ProjectSummary is what the admin drag list holds.
type ProjectSummary struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Location     string    `json:"location"`
	Type         string    `json:"type"`
	Category     Category  `json:"category"`
	Client       string    `json:"client"`
	CoverImage   string    `json:"coverImage"`
	DisplayOrder int       `json:"displayOrder"`
}

// Assets lists every stored image URL the project references, cover first.
func (p Project) Assets() []string {
	assets := make([]string, 0, len(p.GalleryImages)+1)
	if p.CoverImage != "" {
		assets = append(assets, p.CoverImage)
	}
	assets = append(assets, p.GalleryImages...)
	return assets
}
