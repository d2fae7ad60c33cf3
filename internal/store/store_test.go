package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"portfolio-app/database"
	"portfolio-app/internal/domain/catalog"
	"portfolio-app/internal/domain/settings"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return New(db)
}

func seedCategory(t *testing.T, s *Store, name, slug string) *catalog.Category {
	t.Helper()
	c := &catalog.Category{Name: name, Slug: slug}
	if err := s.CreateCategory(context.Background(), c); err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c
}

func seedCollection(t *testing.T, s *Store, c catalog.Collection) *catalog.Collection {
	t.Helper()
	if err := s.CreateCollection(context.Background(), &c); err != nil {
		t.Fatalf("create collection %s: %v", c.Slug, err)
	}
	return &c
}

func TestCreateCollectionConflictsOnSlug(t *testing.T) {
	s := newStore(t)
	seedCollection(t, s, catalog.Collection{Title: "Loft", Slug: "loft"})

	err := s.CreateCollection(context.Background(), &catalog.Collection{Title: "Other", Slug: "loft"})
	if !errors.Is(err, catalog.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestCreateCollectionRejectsUnknownCategory(t *testing.T) {
	s := newStore(t)
	missing := "no-such-category"

	err := s.CreateCollection(context.Background(), &catalog.Collection{Title: "Loft", Slug: "loft", CategoryID: &missing})
	if !errors.Is(err, catalog.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestCreateCollectionPreservesImageOrder(t *testing.T) {
	s := newStore(t)
	imgs := datatypes.JSONSlice[catalog.CollectionImage]{
		{URL: "c.jpg"}, {URL: "a.jpg"}, {URL: "b.jpg"},
	}
	c := seedCollection(t, s, catalog.Collection{Title: "Loft", Slug: "loft", Images: imgs})

	got, err := s.GetCollection(context.Background(), c.ID, false)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Images) != 3 || got.Images[0].URL != "c.jpg" || got.Images[2].URL != "b.jpg" {
		t.Errorf("images = %+v", got.Images)
	}
	if got.ViewCount != 0 || got.IsPublished {
		t.Errorf("defaults: views=%d published=%v", got.ViewCount, got.IsPublished)
	}
}

func TestListCollectionsFilters(t *testing.T) {
	s := newStore(t)
	cat := seedCategory(t, s, "Residential", "residential")
	seedCollection(t, s, catalog.Collection{Title: "B", Slug: "b", IsPublished: true, Order: 2, CategoryID: &cat.ID})
	seedCollection(t, s, catalog.Collection{Title: "A", Slug: "a", IsPublished: true, Order: 1})
	seedCollection(t, s, catalog.Collection{Title: "Draft", Slug: "draft", Order: 0, CategoryID: &cat.ID})

	ctx := context.Background()

	all, _ := s.ListCollections(ctx, CollectionFilter{})
	if len(all) != 3 || all[0].Slug != "draft" || all[1].Slug != "a" {
		t.Errorf("all = %v", slugsOf(all))
	}

	published, _ := s.ListCollections(ctx, CollectionFilter{PublishedOnly: true})
	if len(published) != 2 || published[0].Slug != "a" || published[1].Slug != "b" {
		t.Errorf("published = %v", slugsOf(published))
	}

	inCat, _ := s.ListCollections(ctx, CollectionFilter{PublishedOnly: true, CategoryID: cat.ID})
	if len(inCat) != 1 || inCat[0].Category == nil || inCat[0].Category.Name != "Residential" {
		t.Errorf("in category = %+v", inCat)
	}

	page, total, err := s.CollectionsPage(ctx, CollectionFilter{}, 1, 1)
	if err != nil || total != 3 || len(page) != 1 || page[0].Slug != "a" {
		t.Errorf("page = %v total=%d err=%v", slugsOf(page), total, err)
	}
}

func TestGetCollectionHidesDrafts(t *testing.T) {
	s := newStore(t)
	c := seedCollection(t, s, catalog.Collection{Title: "Draft", Slug: "draft"})

	if _, err := s.GetCollection(context.Background(), c.ID, true); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("published-only get err = %v, want ErrNotFound", err)
	}
	if _, err := s.GetCollectionBySlug(context.Background(), "draft", false); err != nil {
		t.Errorf("admin get by slug: %v", err)
	}
}

func TestUpdateCollection(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	seedCollection(t, s, catalog.Collection{Title: "Taken", Slug: "taken"})
	c := seedCollection(t, s, catalog.Collection{Title: "Loft", Slug: "loft", Description: "keep"})

	got, err := s.UpdateCollection(ctx, c.ID, map[string]interface{}{"title": "Loft II", "is_published": true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "Loft II" || !got.IsPublished || got.Description != "keep" || got.Slug != "loft" {
		t.Errorf("updated = %+v", got)
	}

	if _, err := s.UpdateCollection(ctx, c.ID, map[string]interface{}{"slug": "taken"}); !errors.Is(err, catalog.ErrConflict) {
		t.Errorf("slug conflict err = %v", err)
	}
	if _, err := s.UpdateCollection(ctx, c.ID, map[string]interface{}{"slug": "loft"}); err != nil {
		t.Errorf("own slug rejected: %v", err)
	}
	if _, err := s.UpdateCollection(ctx, "missing", map[string]interface{}{"title": "x"}); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
}

func TestReorderCollections(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	a := seedCollection(t, s, catalog.Collection{Title: "A", Slug: "a"})
	b := seedCollection(t, s, catalog.Collection{Title: "B", Slug: "b", Order: 5})

	if err := s.ReorderCollections(ctx, []string{b.ID, a.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	list, _ := s.ListCollections(ctx, CollectionFilter{})
	if list[0].ID != b.ID || list[0].Order != 0 || list[1].Order != 1 {
		t.Errorf("order = %v", slugsOf(list))
	}

	if err := s.ReorderCollections(ctx, []string{a.ID, "ghost"}); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("ghost err = %v", err)
	}
	again, _ := s.GetCollection(ctx, a.ID, false)
	if again.Order != 1 {
		t.Errorf("failed reorder was not rolled back: order = %d", again.Order)
	}
}

func TestDeleteCollectionAndImagesInUse(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	shared := catalog.CollectionImage{URL: "shared.jpg", ThumbnailURL: "shared_thumb.jpg"}
	a := seedCollection(t, s, catalog.Collection{Title: "A", Slug: "a", Images: datatypes.JSONSlice[catalog.CollectionImage]{shared, {URL: "own.jpg"}}})
	seedCollection(t, s, catalog.Collection{Title: "B", Slug: "b", Images: datatypes.JSONSlice[catalog.CollectionImage]{shared}})

	used, err := s.ImageURLsInUse(ctx, a.ID)
	if err != nil {
		t.Fatalf("in use: %v", err)
	}
	if _, ok := used["shared_thumb.jpg"]; !ok {
		t.Error("shared thumbnail not reported")
	}
	if _, ok := used["own.jpg"]; ok {
		t.Error("own image of excluded collection reported")
	}

	deleted, err := s.DeleteCollection(ctx, a.ID)
	if err != nil || len(deleted.Images) != 2 {
		t.Fatalf("delete = %+v, %v", deleted, err)
	}
	if _, err := s.DeleteCollection(ctx, a.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestDeleteReferencedCategoryConflicts(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	cat := seedCategory(t, s, "Civic", "civic")
	col := seedCollection(t, s, catalog.Collection{Title: "Library", Slug: "library", CategoryID: &cat.ID})

	err := s.DeleteCategory(ctx, cat.ID)
	if !errors.Is(err, catalog.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	if _, err := s.GetCategory(ctx, cat.ID); err != nil {
		t.Errorf("category gone after refused delete: %v", err)
	}
	got, err := s.GetCollection(ctx, col.ID, false)
	if err != nil || got.CategoryID == nil || *got.CategoryID != cat.ID {
		t.Errorf("collection changed: %+v, %v", got, err)
	}
}

func TestDeleteCategory(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	cat := seedCategory(t, s, "Civic", "civic")

	if err := s.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteCategory(ctx, cat.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestCategorySlugConflict(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	seedCategory(t, s, "Civic", "civic")
	other := seedCategory(t, s, "Retail", "retail")

	if err := s.CreateCategory(ctx, &catalog.Category{Name: "Civic 2", Slug: "civic"}); !errors.Is(err, catalog.ErrConflict) {
		t.Errorf("create err = %v", err)
	}
	if _, err := s.UpdateCategory(ctx, other.ID, map[string]interface{}{"slug": "civic"}); !errors.Is(err, catalog.ErrConflict) {
		t.Errorf("update err = %v", err)
	}

	cats, _ := s.ListCategories(ctx)
	if len(cats) != 2 {
		t.Errorf("categories = %d", len(cats))
	}
}

func TestRecordViewIncrementsOnceAndAppendsOnce(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	c := seedCollection(t, s, catalog.Collection{Title: "C1", Slug: "c1", IsPublished: true})

	if err := s.RecordEvent(ctx, c.ID, catalog.EventView); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, _ := s.GetCollection(ctx, c.ID, false)
	if got.ViewCount != 1 {
		t.Errorf("view_count = %d, want 1", got.ViewCount)
	}
	events, _ := s.EventsSince(ctx, time.Now().Add(-time.Hour), c.ID)
	if len(events) != 1 || events[0].EventType != catalog.EventView {
		t.Errorf("events = %+v", events)
	}
}

func TestRecordViewFallsBackAfterFailedIncrement(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	c := seedCollection(t, s, catalog.Collection{Title: "C1", Slug: "c1", IsPublished: true})

	orig := atomicIncrement
	t.Cleanup(func() { atomicIncrement = orig })
	// applies the increment, then fails; the savepoint must undo it
	atomicIncrement = func(tx *gorm.DB, id string) error {
		if err := orig(tx, id); err != nil {
			return err
		}
		return tx.Exec("UPDATE collections SET no_such_column = 1").Error
	}

	if err := s.RecordEvent(ctx, c.ID, catalog.EventView); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, _ := s.GetCollection(ctx, c.ID, false)
	if got.ViewCount != 1 {
		t.Errorf("view_count = %d, want 1", got.ViewCount)
	}
	events, _ := s.EventsSince(ctx, time.Now().Add(-time.Hour), c.ID)
	if len(events) != 1 {
		t.Errorf("events = %d, want 1", len(events))
	}
}

func TestRecordEventOtherTypeDoesNotCountView(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	c := seedCollection(t, s, catalog.Collection{Title: "C1", Slug: "c1"})

	if err := s.RecordEvent(ctx, c.ID, "share"); err != nil {
		t.Fatalf("record: %v", err)
	}
	got, _ := s.GetCollection(ctx, c.ID, false)
	if got.ViewCount != 0 {
		t.Errorf("view_count = %d", got.ViewCount)
	}
}

func TestRecordEventUnknownCollection(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.RecordView(ctx, "ghost"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	events, _ := s.EventsSince(ctx, time.Time{}, "")
	if len(events) != 0 {
		t.Errorf("orphan events written: %d", len(events))
	}
}

func TestAnalyticsSummary(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	a := seedCollection(t, s, catalog.Collection{Title: "A", Slug: "a"})
	b := seedCollection(t, s, catalog.Collection{Title: "B", Slug: "b"})

	for i := 0; i < 3; i++ {
		_ = s.RecordView(ctx, b.ID)
	}
	_ = s.RecordView(ctx, a.ID)
	_ = s.RecordEvent(ctx, a.ID, "share")

	sum, err := s.AnalyticsSummary(ctx, 30, "", time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.TotalEvents != 5 || sum.Counts["view"] != 4 || sum.Counts["share"] != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.Period != "30 days" || sum.PeriodDays != 30 {
		t.Errorf("period = %q / %d", sum.Period, sum.PeriodDays)
	}
	if len(sum.TopCollections) != 2 || sum.TopCollections[0].ID != b.ID || sum.TopCollections[0].ViewCount != 3 {
		t.Errorf("top = %+v", sum.TopCollections)
	}

	onlyA, _ := s.AnalyticsSummary(ctx, 30, a.ID, time.Now().Add(time.Minute))
	if onlyA.TotalEvents != 2 {
		t.Errorf("filtered total = %d", onlyA.TotalEvents)
	}
}

func TestThemeDefaultsAndSave(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	theme, err := s.Theme(ctx)
	if err != nil || theme != settings.DefaultTheme() {
		t.Fatalf("default theme = %+v, %v", theme, err)
	}

	want := settings.ThemeSettings{GridSpacing: 24, AnimationSpeedMs: 450}
	if err := s.SaveTheme(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveTheme(ctx, want); err != nil {
		t.Fatalf("save twice: %v", err)
	}
	if got, _ := s.Theme(ctx); got != want {
		t.Errorf("theme = %+v, want %+v", got, want)
	}
}

func slugsOf(cs []catalog.Collection) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Slug
	}
	return out
}
