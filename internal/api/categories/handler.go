package categories

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio-app/internal/api/apierror"
	"portfolio-app/internal/domain/catalog"
	"portfolio-app/internal/infra/cache"
	"portfolio-app/internal/logger"
	"portfolio-app/internal/store"
)

type Handler struct {
	Store *store.Store
	Cache cache.Cache
}

func NewHandler(st *store.Store, c cache.Cache) *Handler {
	if c == nil {
		c = cache.Nop{}
	}
	return &Handler{Store: st, Cache: c}
}

func (h *Handler) RegisterRoutes(public, admin *gin.RouterGroup) {
	public.GET("/categories", h.List)

	admin.POST("/categories", h.Create)
	admin.PUT("/categories/:id", h.Update)
	admin.DELETE("/categories/:id", h.Delete)
}

type CreateCategoryRequest struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Order int    `json:"order"`
}

type UpdateCategoryRequest struct {
	Name  *string `json:"name"`
	Slug  *string `json:"slug"`
	Order *int    `json:"order"`
}

// ------------------------------
// GET /categories
// ------------------------------
func (h *Handler) List(c *gin.Context) {
	out, err := h.Store.ListCategories(c.Request.Context())
	if err != nil {
		apierror.Respond(c, err, "Failed to fetch categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// ------------------------------
// POST /categories
// ------------------------------
func (h *Handler) Create(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.BadRequest(c, err.Error())
		return
	}

	name := strings.TrimSpace(req.Name)
	slug := strings.TrimSpace(req.Slug)
	if name == "" || slug == "" {
		apierror.BadRequest(c, "Name and slug are required")
		return
	}
	if !catalog.ValidSlug(slug) {
		apierror.BadRequest(c, "slug must contain only lowercase letters, digits and single hyphens")
		return
	}

	cat := catalog.Category{Name: name, Slug: slug, Order: req.Order}
	if err := h.Store.CreateCategory(c.Request.Context(), &cat); err != nil {
		apierror.Respond(c, slugConflict(err), "Failed to create category")
		return
	}
	h.invalidate(c.Request.Context())

	c.JSON(http.StatusCreated, gin.H{"category": cat})
}

// ------------------------------
// PUT /categories/:id
// ------------------------------
func (h *Handler) Update(c *gin.Context) {
	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.BadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			apierror.BadRequest(c, "Name cannot be empty")
			return
		}
		updates["name"] = name
	}
	if req.Slug != nil {
		slug := strings.TrimSpace(*req.Slug)
		if !catalog.ValidSlug(slug) {
			apierror.BadRequest(c, "slug must contain only lowercase letters, digits and single hyphens")
			return
		}
		updates["slug"] = slug
	}
	if req.Order != nil {
		updates["sort_order"] = *req.Order
	}

	cat, err := h.Store.UpdateCategory(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		apierror.Respond(c, slugConflict(apierror.NotFound(err, "Category not found")), "Failed to update category")
		return
	}
	h.invalidate(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"category": cat})
}

// ------------------------------
// DELETE /categories/:id
// ------------------------------
func (h *Handler) Delete(c *gin.Context) {
	if err := h.Store.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		apierror.Respond(c, apierror.NotFound(err, "Category not found"), "Failed to delete category")
		return
	}
	h.invalidate(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

func (h *Handler) invalidate(ctx context.Context) {
	if err := h.Cache.Invalidate(ctx); err != nil {
		logger.FromContext(ctx).Warn("categories: cache invalidation failed", "error", err)
	}
}

func slugConflict(err error) error {
	if errors.Is(err, catalog.ErrConflict) {
		return fmt.Errorf("%w: A category with this slug already exists", catalog.ErrConflict)
	}
	return err
}
