package gallery

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"portfolio-app/internal/api/apitest"
	"portfolio-app/internal/domain/catalog"
	dg "portfolio-app/internal/domain/gallery"
	"portfolio-app/internal/domain/settings"
	"portfolio-app/internal/infra/cache"
)

// memCache is a map-backed cache.Cache that keeps values as-is.
type memCache struct {
	entries map[string]Page
	sets    int
}

func (m *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	p, ok := m.entries[key]
	if ok {
		*dst.(*Page) = p
	}
	return ok, nil
}

func (m *memCache) Set(_ context.Context, key string, v any) error {
	m.entries[key] = v.(Page)
	m.sets++
	return nil
}

func (m *memCache) Invalidate(context.Context) error {
	clear(m.entries)
	return nil
}

func seed(t *testing.T, env *apitest.Env, n int, published bool) []*catalog.Collection {
	t.Helper()
	var out []*catalog.Collection
	for i := 0; i < n; i++ {
		w, h := 1200, 800
		col := &catalog.Collection{
			Title:       fmt.Sprintf("Project %d", i),
			Slug:        fmt.Sprintf("project-%d-%t", i, published),
			Order:       i,
			IsPublished: published,
			Images: datatypes.NewJSONSlice([]catalog.CollectionImage{
				{URL: fmt.Sprintf("/media/p%d.jpg", i), ThumbnailURL: fmt.Sprintf("/media/p%d_thumb.jpg", i), Width: &w, Height: &h},
				{URL: fmt.Sprintf("/media/p%d-b.jpg", i)},
			}),
		}
		if err := env.Store.CreateCollection(context.Background(), col); err != nil {
			t.Fatal(err)
		}
		out = append(out, col)
	}
	return out
}

func setup(t *testing.T, c cache.Cache, limit ...gin.HandlerFunc) *apitest.Env {
	t.Helper()
	env := apitest.New(t)
	NewHandler(env.Store, c).RegisterRoutes(env.Public, limit...)
	return env
}

func TestGalleryPages(t *testing.T) {
	env := setup(t, cache.Nop{})
	seed(t, env, 30, true)
	seed(t, env, 2, false)

	tests := []struct {
		name      string
		visible   int
		wantFirst string
		wantLen   int
		wantVis   int
		wantMore  bool
	}{
		{"first page", 0, "Project 0", 12, 12, true},
		{"second page", 12, "Project 12", 12, 24, true},
		{"last page", 24, "Project 24", 6, 30, false},
		{"exhausted", 30, "", 0, 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var page Page
			apitest.Decode(t, env.Do(t, http.MethodGet, fmt.Sprintf("/gallery?visible=%d", tt.visible), nil, ""), &page)

			if len(page.Tiles) != tt.wantLen || page.Visible != tt.wantVis || page.HasMore != tt.wantMore {
				t.Fatalf("got %d tiles visible %d more %v", len(page.Tiles), page.Visible, page.HasMore)
			}
			if page.Total != 30 {
				t.Errorf("total = %d, want 30", page.Total)
			}
			if tt.wantLen > 0 && page.Tiles[0].Title != tt.wantFirst {
				t.Errorf("first = %q, want %q", page.Tiles[0].Title, tt.wantFirst)
			}
		})
	}
}

func TestGalleryTilesAndTheme(t *testing.T) {
	env := setup(t, cache.Nop{})
	seed(t, env, 5, true)
	if err := env.Store.SaveTheme(context.Background(), settings.ThemeSettings{GridSpacing: 24, AnimationSpeedMs: 150}); err != nil {
		t.Fatal(err)
	}

	var page Page
	apitest.Decode(t, env.Do(t, http.MethodGet, "/gallery", nil, ""), &page)

	first := page.Tiles[0]
	if first.AspectRatio != dg.AspectLandscape || first.ImageCount != 2 || first.Placeholder != "/media/p0_thumb.jpg" {
		t.Errorf("tile = %+v", first)
	}
	if !page.Tiles[3].Priority || page.Tiles[4].Priority {
		t.Error("only the first four tiles are priority")
	}
	if page.Theme.GridSpacing != 24 || page.Theme.AnimationSpeedMs != 150 {
		t.Errorf("theme = %+v", page.Theme)
	}
}

func TestGalleryVisibleValidation(t *testing.T) {
	env := setup(t, cache.Nop{})
	seed(t, env, 30, true)

	tests := []struct {
		visible string
		status  int
	}{
		{"-1", http.StatusBadRequest},
		{"abc", http.StatusBadRequest},
		{"5", http.StatusBadRequest},
		{"13", http.StatusBadRequest},
		{"24", http.StatusOK},
		{"30", http.StatusOK},
		{"31", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run("visible="+tt.visible, func(t *testing.T) {
			rr := env.Do(t, http.MethodGet, "/gallery?visible="+tt.visible, nil, "")
			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", rr.Code, tt.status, rr.Body.String())
			}
		})
	}
}

func TestGalleryReadsThroughCache(t *testing.T) {
	mc := &memCache{entries: map[string]Page{}}
	env := setup(t, mc)
	seed(t, env, 3, true)

	var page Page
	apitest.Decode(t, env.Do(t, http.MethodGet, "/gallery", nil, ""), &page)
	seed(t, env, 1, false)
	if err := env.Store.CreateCollection(context.Background(), &catalog.Collection{Title: "Late", Slug: "late", IsPublished: true}); err != nil {
		t.Fatal(err)
	}
	apitest.Decode(t, env.Do(t, http.MethodGet, "/gallery", nil, ""), &page)

	if page.Total != 3 {
		t.Errorf("cached total = %d, want 3", page.Total)
	}
	if mc.sets != 1 {
		t.Errorf("cache sets = %d, want 1", mc.sets)
	}
}

func TestOpenRecordsOneView(t *testing.T) {
	env := setup(t, cache.Nop{})
	col := seed(t, env, 1, true)[0]

	rr := env.Do(t, http.MethodPost, "/gallery/"+col.ID+"/open", map[string]any{"index": 1, "keys": []string{dg.KeyArrowRight, "+"}}, "")
	apitest.ExpectStatus(t, rr, http.StatusOK)

	var out struct {
		Lightbox dg.LightboxState `json:"lightbox"`
	}
	apitest.Decode(t, rr, &out)
	if !out.Lightbox.Open || out.Lightbox.Index != 0 || out.Lightbox.Zoom != 1.5 || out.Lightbox.Count != 2 {
		t.Errorf("state = %+v", out.Lightbox)
	}

	got, err := env.Store.GetCollection(context.Background(), col.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.ViewCount != 1 {
		t.Errorf("view_count = %d, want 1", got.ViewCount)
	}
}

func TestOpenInvalidatesCachedPages(t *testing.T) {
	mc := &memCache{entries: map[string]Page{}}
	env := setup(t, mc)
	col := seed(t, env, 1, true)[0]

	var page Page
	apitest.Decode(t, env.Do(t, http.MethodGet, "/gallery", nil, ""), &page)
	if len(mc.entries) != 1 {
		t.Fatalf("cached entries = %d, want 1", len(mc.entries))
	}

	apitest.ExpectStatus(t, env.Do(t, http.MethodPost, "/gallery/"+col.ID+"/open", nil, ""), http.StatusOK)
	if len(mc.entries) != 0 {
		t.Errorf("cached entries after open = %d, want 0", len(mc.entries))
	}

	apitest.Decode(t, env.Do(t, http.MethodGet, "/gallery", nil, ""), &page)
	if len(page.Tiles) != 1 || page.Tiles[0].ViewCount != 1 {
		t.Errorf("tiles = %+v, want view_count 1", page.Tiles)
	}
}

func TestOpenRunsLimiter(t *testing.T) {
	blocked := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
	}
	env := setup(t, cache.Nop{}, blocked)
	col := seed(t, env, 1, true)[0]

	apitest.ExpectStatus(t, env.Do(t, http.MethodPost, "/gallery/"+col.ID+"/open", nil, ""), http.StatusTooManyRequests)

	got, err := env.Store.GetCollection(context.Background(), col.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.ViewCount != 0 {
		t.Errorf("view_count = %d, want 0", got.ViewCount)
	}
	apitest.ExpectStatus(t, env.Do(t, http.MethodGet, "/gallery", nil, ""), http.StatusOK)
}

func TestOpenHidesDrafts(t *testing.T) {
	env := setup(t, cache.Nop{})
	draft := seed(t, env, 1, false)[0]

	apitest.ExpectStatus(t, env.Do(t, http.MethodPost, "/gallery/"+draft.ID+"/open", nil, ""), http.StatusNotFound)
}

func TestDetailSEO(t *testing.T) {
	env := setup(t, cache.Nop{})
	cat := &catalog.Category{Name: "Residential", Slug: "residential"}
	if err := env.Store.CreateCategory(context.Background(), cat); err != nil {
		t.Fatal(err)
	}
	col := &catalog.Collection{
		Title: "Lake House", Slug: "lake-house", IsPublished: true, CategoryID: &cat.ID,
		Description: "Timber retreat overlooking the water",
		Images:      datatypes.NewJSONSlice([]catalog.CollectionImage{{URL: "/media/lake.jpg"}}),
	}
	if err := env.Store.CreateCollection(context.Background(), col); err != nil {
		t.Fatal(err)
	}

	var out struct {
		SEO SEO                   `json:"seo"`
		OG  catalog.OpenGraphMeta `json:"og"`
	}
	rr := env.Do(t, http.MethodGet, "/gallery/collections/lake-house", nil, "")
	apitest.ExpectStatus(t, rr, http.StatusOK)
	apitest.Decode(t, rr, &out)

	if out.SEO.Title != "Lake House - Residential Project | JVA Designs" {
		t.Errorf("title = %q", out.SEO.Title)
	}
	if out.SEO.Description != "Timber retreat overlooking the water" {
		t.Errorf("description = %q", out.SEO.Description)
	}
	if out.OG.Image != "/media/lake.jpg" || out.OG.Type != "article" {
		t.Errorf("og = %+v", out.OG)
	}

	apitest.ExpectStatus(t, env.Do(t, http.MethodGet, "/gallery/collections/nope", nil, ""), http.StatusNotFound)
}
