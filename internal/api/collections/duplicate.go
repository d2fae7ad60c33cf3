package collections

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"portfolio-app/internal/api/apierror"
	"portfolio-app/internal/domain/catalog"
	"portfolio-app/internal/logger"
)

// ------------------------------
// POST /collections/:id/duplicate
// Copy is unpublished, placed right after the source, with its own blobs.
// ------------------------------
func (h *Handler) Duplicate(c *gin.Context) {
	ctx := c.Request.Context()

	src, err := h.Store.GetCollection(ctx, c.Param("id"), false)
	if err != nil {
		apierror.Respond(c, apierror.NotFound(err, "Collection not found"), "Failed to duplicate collection")
		return
	}

	slug, err := catalog.DuplicateSlug(ctx, src.Slug, func(ctx context.Context, s string) (bool, error) {
		return h.Store.CollectionSlugExists(ctx, s, "")
	})
	if err != nil {
		apierror.Respond(c, err, "Failed to duplicate collection")
		return
	}

	dup := catalog.Collection{
		ID:             uuid.NewString(),
		Title:          src.Title + " (Copy)",
		Slug:           slug,
		Description:    src.Description,
		SEOTitle:       src.SEOTitle,
		SEODescription: src.SEODescription,
		CategoryID:     src.CategoryID,
		IsPublished:    false,
		Order:          src.Order + 1,
	}

	images, copied, err := h.copyImages(ctx, dup.ID, src.Images)
	if err != nil {
		apierror.Respond(c, err, "Failed to duplicate collection")
		return
	}
	dup.Images = datatypes.NewJSONSlice(images)

	if err := h.Store.CreateCollection(ctx, &dup); err != nil {
		h.discard(ctx, copied)
		apierror.Respond(c, err, "Failed to duplicate collection")
		return
	}
	h.invalidate(ctx)

	c.JSON(http.StatusCreated, gin.H{"collection": dup, "message": "Collection duplicated successfully"})
}

// copyImages gives every owned blob a new path under newID. URLs the blob
// store does not own are kept as they are.
func (h *Handler) copyImages(ctx context.Context, newID string, images []catalog.CollectionImage) ([]catalog.CollectionImage, []string, error) {
	out := make([]catalog.CollectionImage, len(images))
	var copied []string

	copyOne := func(url, dst string) (string, error) {
		src, ok := h.Blobs.PathFromURL(h.Bucket, url)
		if !ok {
			return url, nil
		}
		if err := h.Blobs.Copy(ctx, h.Bucket, src, dst); err != nil {
			return "", fmt.Errorf("%w: copy %s: %v", catalog.ErrUpload, src, err)
		}
		copied = append(copied, dst)
		return h.Blobs.PublicURL(h.Bucket, dst), nil
	}

	for n, img := range images {
		var err error
		if img.URL != "" {
			if img.URL, err = copyOne(img.URL, fmt.Sprintf("%s_%d.jpg", newID, n)); err != nil {
				h.discard(ctx, copied)
				return nil, nil, err
			}
		}
		if img.ThumbnailURL != "" {
			if img.ThumbnailURL, err = copyOne(img.ThumbnailURL, fmt.Sprintf("%s_%d_thumb.jpg", newID, n)); err != nil {
				h.discard(ctx, copied)
				return nil, nil, err
			}
		}
		out[n] = img
	}
	return out, copied, nil
}

func (h *Handler) discard(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}
	if err := h.Blobs.Remove(context.WithoutCancel(ctx), h.Bucket, paths); err != nil {
		logger.FromContext(ctx).Error("collections: orphaned copies", "paths", paths, "error", err)
	}
}
