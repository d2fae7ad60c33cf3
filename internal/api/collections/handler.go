package collections

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"portfolio-app/internal/api/apierror"
	"portfolio-app/internal/app/http/middleware"
	"portfolio-app/internal/domain/catalog"
	"portfolio-app/internal/infra/blob"
	"portfolio-app/internal/infra/cache"
	"portfolio-app/internal/logger"
	"portfolio-app/internal/store"
)

const invalidSlugMsg = "slug must contain only lowercase letters, digits and single hyphens"

type Handler struct {
	Store  *store.Store
	Blobs  blob.Store
	Bucket string
	Cache  cache.Cache
}

func NewHandler(st *store.Store, blobs blob.Store, bucket string, c cache.Cache) *Handler {
	if c == nil {
		c = cache.Nop{}
	}
	return &Handler{Store: st, Blobs: blobs, Bucket: bucket, Cache: c}
}

// RegisterRoutes mounts reads on public (which must run OptionalAuth) and
// writes on admin.
func (h *Handler) RegisterRoutes(public, admin *gin.RouterGroup) {
	public.GET("/collections", h.List)
	public.GET("/collections/:id", h.Get)

	admin.POST("/collections", h.Create)
	admin.PUT("/collections/reorder", h.Reorder)
	admin.PUT("/collections/:id", h.Update)
	admin.DELETE("/collections/:id", h.Delete)
	admin.POST("/collections/:id/duplicate", h.Duplicate)
	admin.GET("/admin/slugs", h.SuggestSlug)
}

// ------------------------------
// GET /collections?published=true&category_id=
// ------------------------------
func (h *Handler) List(c *gin.Context) {
	f := store.CollectionFilter{
		PublishedOnly: c.Query("published") == "true" || !middleware.IsAdmin(c),
		CategoryID:    c.Query("category_id"),
	}

	out, err := h.Store.ListCollections(c.Request.Context(), f)
	if err != nil {
		apierror.Respond(c, err, "Failed to fetch collections")
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": out})
}

// ------------------------------
// GET /collections/:id
// ------------------------------
func (h *Handler) Get(c *gin.Context) {
	col, err := h.Store.GetCollection(c.Request.Context(), c.Param("id"), !middleware.IsAdmin(c))
	if err != nil {
		apierror.Respond(c, apierror.NotFound(err, "Collection not found"), "Failed to fetch collection")
		return
	}
	c.JSON(http.StatusOK, gin.H{"collection": col})
}

// ------------------------------
// POST /collections
// ------------------------------
func (h *Handler) Create(c *gin.Context) {
	var req CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.BadRequest(c, err.Error())
		return
	}

	title := catalog.SanitizeTitle(req.Title)
	slug := strings.TrimSpace(req.Slug)
	if title == "" || slug == "" {
		apierror.BadRequest(c, "Title and slug are required")
		return
	}
	if !catalog.ValidSlug(slug) {
		apierror.BadRequest(c, invalidSlugMsg)
		return
	}

	col := catalog.Collection{
		Title:          title,
		Slug:           slug,
		Description:    req.Description,
		SEOTitle:       firstNonEmpty(req.SEOTitle, title),
		SEODescription: firstNonEmpty(req.SEODescription, req.Description),
		CategoryID:     normalizeID(req.CategoryID),
		Images:         datatypes.NewJSONSlice(fillAlts(req.Images, title, req.Description)),
		IsPublished:    req.IsPublished,
		Order:          req.Order,
	}

	if err := h.Store.CreateCollection(c.Request.Context(), &col); err != nil {
		apierror.Respond(c, err, "Failed to create collection")
		return
	}
	h.invalidate(c.Request.Context())

	c.JSON(http.StatusCreated, gin.H{"collection": col})
}

// ------------------------------
// PUT /collections/:id (absent fields are left alone)
// ------------------------------
func (h *Handler) Update(c *gin.Context) {
	var req UpdateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.BadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := catalog.SanitizeTitle(*req.Title)
		if title == "" {
			apierror.BadRequest(c, "Title cannot be empty")
			return
		}
		updates["title"] = title
	}
	if req.Slug != nil {
		slug := strings.TrimSpace(*req.Slug)
		if !catalog.ValidSlug(slug) {
			apierror.BadRequest(c, invalidSlugMsg)
			return
		}
		updates["slug"] = slug
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.SEOTitle != nil {
		updates["seo_title"] = *req.SEOTitle
	}
	if req.SEODescription != nil {
		updates["seo_description"] = *req.SEODescription
	}
	if req.CategoryID.Set {
		updates["category_id"] = normalizeID(req.CategoryID.Value)
	}
	if req.Images != nil {
		imgs := *req.Images
		if imgs == nil {
			imgs = []catalog.CollectionImage{}
		}
		updates["images"] = datatypes.NewJSONSlice(imgs)
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
	}
	if req.Order != nil {
		updates["sort_order"] = *req.Order
	}

	col, err := h.Store.UpdateCollection(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		apierror.Respond(c, apierror.NotFound(err, "Collection not found"), "Failed to update collection")
		return
	}
	h.invalidate(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"collection": col})
}

// ------------------------------
// PUT /collections/reorder  body: {"ids": [...]}
// ------------------------------
func (h *Handler) Reorder(c *gin.Context) {
	var req ReorderCollectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		apierror.BadRequest(c, "ids required")
		return
	}

	if err := h.Store.ReorderCollections(c.Request.Context(), req.IDs); err != nil {
		apierror.Respond(c, err, "Failed to reorder collections")
		return
	}
	h.invalidate(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ------------------------------
// DELETE /collections/:id
// ------------------------------
func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	col, err := h.Store.DeleteCollection(ctx, c.Param("id"))
	if err != nil {
		apierror.Respond(c, apierror.NotFound(err, "Collection not found"), "Failed to delete collection")
		return
	}
	h.invalidate(ctx)
	h.releaseBlobs(ctx, col.Images)

	c.JSON(http.StatusOK, gin.H{"message": "Collection deleted successfully"})
}

// releaseBlobs removes the owned blobs of images that no remaining
// collection references. Failures are only logged.
func (h *Handler) releaseBlobs(ctx context.Context, images []catalog.CollectionImage) {
	log := logger.FromContext(ctx)

	used, err := h.Store.ImageURLsInUse(ctx, "")
	if err != nil {
		log.Error("collections: skip blob cleanup", "error", err)
		return
	}

	var paths []string
	for _, img := range images {
		for _, u := range []string{img.URL, img.ThumbnailURL} {
			if u == "" {
				continue
			}
			if _, shared := used[u]; shared {
				continue
			}
			if p, ok := h.Blobs.PathFromURL(h.Bucket, u); ok {
				paths = append(paths, p)
			}
		}
	}
	if len(paths) == 0 {
		return
	}
	if err := h.Blobs.Remove(context.WithoutCancel(ctx), h.Bucket, paths); err != nil {
		log.Error("collections: blob cleanup failed", "paths", paths, "error", err)
	}
}

// ------------------------------
// GET /admin/slugs?text=&kind=collection|category
// ------------------------------
func (h *Handler) SuggestSlug(c *gin.Context) {
	text := c.Query("text")
	if strings.TrimSpace(text) == "" {
		apierror.BadRequest(c, "text is required")
		return
	}
	if catalog.GenerateSlug(text) == "" {
		apierror.BadRequest(c, "text has no characters usable in a slug")
		return
	}

	var (
		existing []string
		err      error
	)
	switch kind := c.DefaultQuery("kind", "collection"); kind {
	case "collection":
		existing, err = h.Store.CollectionSlugs(c.Request.Context())
	case "category":
		existing, err = h.Store.CategorySlugs(c.Request.Context())
	default:
		apierror.BadRequest(c, fmt.Sprintf("unknown kind %q", kind))
		return
	}
	if err != nil {
		apierror.Respond(c, err, "Failed to generate slug")
		return
	}

	c.JSON(http.StatusOK, gin.H{"slug": catalog.GenerateUniqueSlug(text, existing)})
}

func (h *Handler) invalidate(ctx context.Context) {
	if err := h.Cache.Invalidate(ctx); err != nil {
		logger.FromContext(ctx).Warn("collections: cache invalidation failed", "error", err)
	}
}

func fillAlts(images []catalog.CollectionImage, title, description string) []catalog.CollectionImage {
	out := make([]catalog.CollectionImage, len(images))
	for i, img := range images {
		if strings.TrimSpace(img.Alt) == "" {
			img.Alt = catalog.GenerateImageAlt(title, i, description)
		}
		out[i] = img
	}
	return out
}

func normalizeID(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	v := strings.TrimSpace(*id)
	return &v
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
