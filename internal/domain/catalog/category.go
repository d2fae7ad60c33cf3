package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID    string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name  string `gorm:"not null" json:"name"`
	Slug  string `gorm:"not null;uniqueIndex:idx_categories_slug" json:"slug"`
	Order int    `gorm:"column:sort_order;not null;default:0;index" json:"order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
