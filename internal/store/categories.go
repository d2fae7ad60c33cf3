package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"portfolio-app/internal/domain/catalog"
)

func (s *Store) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	var out []catalog.Category
	err := s.conn(ctx).
		Order("sort_order ASC").
		Order("name ASC").
		Find(&out).Error
	if err != nil {
		return nil, storeErr("list categories", err)
	}
	return out, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*catalog.Category, error) {
	var c catalog.Category
	if err := s.conn(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, storeErr("get category", err)
	}
	return &c, nil
}

func (s *Store) CategorySlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugTaken(s.conn(ctx).Model(&catalog.Category{}), slug, excludeID)
}

func (s *Store) CategorySlugs(ctx context.Context) ([]string, error) {
	var slugs []string
	if err := s.conn(ctx).Model(&catalog.Category{}).Pluck("slug", &slugs).Error; err != nil {
		return nil, storeErr("category slugs", err)
	}
	return slugs, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *catalog.Category) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureSlugFree(tx.Model(&catalog.Category{}), c.Slug, ""); err != nil {
			return err
		}
		return tx.Create(c).Error
	})
	return storeErr("create category", err)
}

func (s *Store) UpdateCategory(ctx context.Context, id string, updates map[string]interface{}) (*catalog.Category, error) {
	var c catalog.Category
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			return err
		}
		if slug, ok := updates["slug"].(string); ok && slug != c.Slug {
			if err := ensureSlugFree(tx.Model(&catalog.Category{}), slug, id); err != nil {
				return err
			}
		}
		if len(updates) > 0 {
			if err := tx.Model(&catalog.Category{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.First(&c, "id = ?", id).Error
	})
	if err != nil {
		return nil, storeErr("update category", err)
	}
	return &c, nil
}

// DeleteCategory refuses while any collection still points at the category.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var c catalog.Category
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			return err
		}

		var refs int64
		if err := tx.Model(&catalog.Collection{}).Where("category_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("%w: category %q is used by %d collection(s)", catalog.ErrConflict, c.Name, refs)
		}

		return tx.Delete(&catalog.Category{}, "id = ?", id).Error
	})
	return storeErr("delete category", err)
}
