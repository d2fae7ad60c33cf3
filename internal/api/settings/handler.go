package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-app/internal/api/apierror"
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
	public.GET("/settings/theme", h.GetTheme)
	admin.PUT("/settings/theme", h.UpdateTheme)
}

type UpdateThemeRequest struct {
	GridSpacing      *int `json:"gridSpacing"`
	AnimationSpeedMs *int `json:"animationSpeed"`
}

// ------------------------------
// GET /settings/theme
// ------------------------------
func (h *Handler) GetTheme(c *gin.Context) {
	theme, err := h.Store.Theme(c.Request.Context())
	if err != nil {
		apierror.Respond(c, err, "Failed to load theme")
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

// ------------------------------
// PUT /settings/theme (absent fields keep their current value)
// ------------------------------
func (h *Handler) UpdateTheme(c *gin.Context) {
	var req UpdateThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	theme, err := h.Store.Theme(ctx)
	if err != nil {
		apierror.Respond(c, err, "Failed to load theme")
		return
	}
	if req.GridSpacing != nil {
		theme.GridSpacing = *req.GridSpacing
	}
	if req.AnimationSpeedMs != nil {
		theme.AnimationSpeedMs = *req.AnimationSpeedMs
	}

	if err := theme.Validate(); err != nil {
		apierror.Respond(c, err, "Invalid theme")
		return
	}
	if err := h.Store.SaveTheme(ctx, theme); err != nil {
		apierror.Respond(c, err, "Failed to save theme")
		return
	}
	if err := h.Cache.Invalidate(ctx); err != nil {
		logger.FromContext(ctx).Warn("settings: cache invalidation failed", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"theme": theme})
}
