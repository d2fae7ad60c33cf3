package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"portfolio-app/internal/domain/catalog"
	"portfolio-app/internal/logger"
)

const topCollectionsLimit = 10

// RecordEvent appends one analytics row. A view also bumps the
// collection's view_count; both happen in one transaction.
func (s *Store) RecordEvent(ctx context.Context, collectionID, eventType string) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&catalog.Collection{}).Where("id = ?", collectionID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: collection %s", catalog.ErrNotFound, collectionID)
		}

		ev := catalog.AnalyticsEvent{CollectionID: collectionID, EventType: eventType}
		if err := tx.Create(&ev).Error; err != nil {
			return err
		}

		if eventType != catalog.EventView {
			return nil
		}
		return incrementViews(ctx, tx, collectionID)
	})
	return storeErr("record event", err)
}

// RecordView satisfies gallery.ViewRecorder.
func (s *Store) RecordView(ctx context.Context, collectionID string) error {
	return s.RecordEvent(ctx, collectionID, catalog.EventView)
}

// atomicIncrement is the single-statement view_count + 1.
var atomicIncrement = func(tx *gorm.DB, id string) error {
	return tx.Model(&catalog.Collection{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

const viewSavepoint = "view_increment"

// incrementViews runs atomicIncrement under a savepoint. If it fails the
// transaction is rolled back to the savepoint, so postgres accepts further
// statements, and a read-modify-write is used instead. The fallback can
// lose concurrent updates.
func incrementViews(ctx context.Context, tx *gorm.DB, id string) error {
	if err := tx.SavePoint(viewSavepoint).Error; err != nil {
		return err
	}
	err := atomicIncrement(tx, id)
	if err == nil {
		return nil
	}

	logger.FromContext(ctx).Warn("analytics: atomic increment failed, using fallback",
		"collection_id", id,
		"error", err,
	)
	if err := tx.RollbackTo(viewSavepoint).Error; err != nil {
		return err
	}

	var c catalog.Collection
	if err := tx.Select("id", "view_count").First(&c, "id = ?", id).Error; err != nil {
		return err
	}
	return tx.Model(&catalog.Collection{}).
		Where("id = ?", id).
		UpdateColumn("view_count", c.ViewCount+1).Error
}

func (s *Store) EventsSince(ctx context.Context, since time.Time, collectionID string) ([]catalog.AnalyticsEvent, error) {
	q := s.conn(ctx).Where("created_at >= ?", since)
	if collectionID != "" {
		q = q.Where("collection_id = ?", collectionID)
	}

	var out []catalog.AnalyticsEvent
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, storeErr("events since", err)
	}
	return out, nil
}

func (s *Store) TopCollections(ctx context.Context, limit int) ([]catalog.TopCollection, error) {
	var out []catalog.TopCollection
	err := s.conn(ctx).Model(&catalog.Collection{}).
		Select("id", "title", "view_count").
		Order("view_count DESC").
		Order("title ASC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, storeErr("top collections", err)
	}
	return out, nil
}

// AnalyticsSummary covers the last days days, optionally for one collection.
func (s *Store) AnalyticsSummary(ctx context.Context, days int, collectionID string, now time.Time) (catalog.AnalyticsSummary, error) {
	since := now.AddDate(0, 0, -days)

	events, err := s.EventsSince(ctx, since, collectionID)
	if err != nil {
		return catalog.AnalyticsSummary{}, err
	}
	top, err := s.TopCollections(ctx, topCollectionsLimit)
	if err != nil {
		return catalog.AnalyticsSummary{}, err
	}
	return catalog.Summarize(events, top, days), nil
}
