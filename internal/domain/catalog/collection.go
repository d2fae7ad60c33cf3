package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CollectionImage is owned by its collection. Position in the list is the
// display order.
type CollectionImage struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Alt          string `json:"alt"`
	Width        *int   `json:"width,omitempty"`
	Height       *int   `json:"height,omitempty"`
}

type Collection struct {
	ID             string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title          string `gorm:"not null" json:"title"`
	Slug           string `gorm:"not null;uniqueIndex:idx_collections_slug" json:"slug"`
	Description    string `gorm:"type:text;not null;default:''" json:"description"`
	SEOTitle       string `gorm:"column:seo_title;not null;default:''" json:"seo_title"`
	SEODescription string `gorm:"column:seo_description;type:text;not null;default:''" json:"seo_description"`

	CategoryID *string   `gorm:"type:varchar(36);index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	Images datatypes.JSONSlice[CollectionImage] `json:"images"`

	IsPublished bool `gorm:"not null;default:false;index" json:"is_published"`
	Order       int  `gorm:"column:sort_order;not null;default:0;index" json:"order"`
	ViewCount   int  `gorm:"not null;default:0;index" json:"view_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Collection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Images == nil {
		c.Images = datatypes.JSONSlice[CollectionImage]{}
	}
	return nil
}

// Cover is the first image, used as the gallery tile.
func (c Collection) Cover() *CollectionImage {
	if len(c.Images) == 0 {
		return nil
	}
	img := c.Images[0]
	return &img
}
