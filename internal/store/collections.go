package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"portfolio-app/internal/domain/catalog"
)

type CollectionFilter struct {
	PublishedOnly bool
	CategoryID    string
}

func (f CollectionFilter) apply(q *gorm.DB) *gorm.DB {
	if f.PublishedOnly {
		q = q.Where("is_published = ?", true)
	}
	if f.CategoryID != "" {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	return q
}

func collectionsQuery(db *gorm.DB, f CollectionFilter) *gorm.DB {
	return f.apply(db.Model(&catalog.Collection{})).
		Order("sort_order ASC").
		Order("created_at ASC")
}

func (s *Store) ListCollections(ctx context.Context, f CollectionFilter) ([]catalog.Collection, error) {
	var out []catalog.Collection
	if err := collectionsQuery(s.conn(ctx), f).Preload("Category").Find(&out).Error; err != nil {
		return nil, storeErr("list collections", err)
	}
	return out, nil
}

func (s *Store) CountCollections(ctx context.Context, f CollectionFilter) (int64, error) {
	var total int64
	if err := f.apply(s.conn(ctx).Model(&catalog.Collection{})).Count(&total).Error; err != nil {
		return 0, storeErr("count collections", err)
	}
	return total, nil
}

// CollectionsPage returns limit records from offset plus the filtered total.
func (s *Store) CollectionsPage(ctx context.Context, f CollectionFilter, offset, limit int) ([]catalog.Collection, int64, error) {
	total, err := s.CountCollections(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	var out []catalog.Collection
	err = collectionsQuery(s.conn(ctx), f).
		Preload("Category").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, storeErr("page collections", err)
	}
	return out, total, nil
}

func (s *Store) GetCollection(ctx context.Context, id string, publishedOnly bool) (*catalog.Collection, error) {
	q := CollectionFilter{PublishedOnly: publishedOnly}.apply(s.conn(ctx).Preload("Category"))

	var c catalog.Collection
	if err := q.First(&c, "id = ?", id).Error; err != nil {
		return nil, storeErr("get collection", err)
	}
	return &c, nil
}

func (s *Store) GetCollectionBySlug(ctx context.Context, slug string, publishedOnly bool) (*catalog.Collection, error) {
	q := CollectionFilter{PublishedOnly: publishedOnly}.apply(s.conn(ctx).Preload("Category"))

	var c catalog.Collection
	if err := q.First(&c, "slug = ?", slug).Error; err != nil {
		return nil, storeErr("get collection by slug", err)
	}
	return &c, nil
}

// CollectionSlugExists is a point query; excludeID skips the record being
// edited.
func (s *Store) CollectionSlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugTaken(s.conn(ctx).Model(&catalog.Collection{}), slug, excludeID)
}

func (s *Store) CollectionSlugs(ctx context.Context) ([]string, error) {
	var slugs []string
	if err := s.conn(ctx).Model(&catalog.Collection{}).Pluck("slug", &slugs).Error; err != nil {
		return nil, storeErr("collection slugs", err)
	}
	return slugs, nil
}

func (s *Store) CreateCollection(ctx context.Context, c *catalog.Collection) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureSlugFree(tx.Model(&catalog.Collection{}), c.Slug, ""); err != nil {
			return err
		}
		if err := ensureCategory(tx, c.CategoryID); err != nil {
			return err
		}
		c.Category = nil
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		return tx.Preload("Category").First(c, "id = ?", c.ID).Error
	})
	return storeErr("create collection", err)
}

// UpdateCollection applies a column map to one record and returns the
// reloaded row.
func (s *Store) UpdateCollection(ctx context.Context, id string, updates map[string]interface{}) (*catalog.Collection, error) {
	var c catalog.Collection
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			return err
		}

		if slug, ok := updates["slug"].(string); ok && slug != c.Slug {
			if err := ensureSlugFree(tx.Model(&catalog.Collection{}), slug, id); err != nil {
				return err
			}
		}
		if v, ok := updates["category_id"]; ok {
			if cid, _ := v.(*string); cid != nil {
				if err := ensureCategory(tx, cid); err != nil {
					return err
				}
			}
		}

		if len(updates) > 0 {
			if err := tx.Model(&catalog.Collection{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.Preload("Category").First(&c, "id = ?", id).Error
	})
	if err != nil {
		return nil, storeErr("update collection", err)
	}
	return &c, nil
}

// ReorderCollections sets each record's order to its position in ids.
func (s *Store) ReorderCollections(ctx context.Context, ids []string) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			res := tx.Model(&catalog.Collection{}).Where("id = ?", id).Update("sort_order", i)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: collection %s", catalog.ErrNotFound, id)
			}
		}
		return nil
	})
	return storeErr("reorder collections", err)
}

// DeleteCollection removes the record and returns it as it was.
func (s *Store) DeleteCollection(ctx context.Context, id string) (*catalog.Collection, error) {
	var c catalog.Collection
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&catalog.Collection{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, storeErr("delete collection", err)
	}
	return &c, nil
}

// ImageURLsInUse lists every image and thumbnail URL referenced by
// collections other than excludeID.
func (s *Store) ImageURLsInUse(ctx context.Context, excludeID string) (map[string]struct{}, error) {
	var rows []catalog.Collection
	q := s.conn(ctx).Model(&catalog.Collection{}).Select("id", "images")
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, storeErr("images in use", err)
	}

	used := make(map[string]struct{})
	for _, r := range rows {
		for _, img := range r.Images {
			used[img.URL] = struct{}{}
			if img.ThumbnailURL != "" {
				used[img.ThumbnailURL] = struct{}{}
			}
		}
	}
	return used, nil
}

func slugTaken(q *gorm.DB, slug, excludeID string) (bool, error) {
	q = q.Where("slug = ?", slug)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, storeErr("slug exists", err)
	}
	return n > 0, nil
}

func ensureSlugFree(q *gorm.DB, slug, excludeID string) error {
	taken, err := slugTaken(q, slug, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: slug %q already exists", catalog.ErrConflict, slug)
	}
	return nil
}

func ensureCategory(tx *gorm.DB, id *string) error {
	if id == nil || *id == "" {
		return nil
	}
	var n int64
	if err := tx.Model(&catalog.Category{}).Where("id = ?", *id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: unknown category %s", catalog.ErrValidation, *id)
	}
	return nil
}
