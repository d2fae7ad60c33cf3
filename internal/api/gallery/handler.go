package gallery

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"portfolio-app/internal/api/apierror"
	"portfolio-app/internal/domain/catalog"
	dg "portfolio-app/internal/domain/gallery"
	"portfolio-app/internal/domain/settings"
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

// RegisterRoutes mounts the gallery on public. Opening a collection counts a
// view, so it runs behind the given limiters.
func (h *Handler) RegisterRoutes(public *gin.RouterGroup, limit ...gin.HandlerFunc) {
	public.GET("/gallery", h.Page)
	public.POST("/gallery/:id/open", append(limit, h.Open)...)
	public.GET("/gallery/collections/:slug", h.Detail)
}

// Page is one step of the masonry grid.
type Page struct {
	Tiles   []dg.Tile              `json:"tiles"`
	HasMore bool                   `json:"has_more"`
	Visible int                    `json:"visible"`
	Total   int                    `json:"total"`
	Theme   settings.ThemeSettings `json:"theme"`
}

// ------------------------------
// GET /gallery?category_id=&visible=
// visible is how many tiles the client already shows; the response carries
// the tiles of the next page. Below total it must be a whole number of pages.
// ------------------------------
func (h *Handler) Page(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	visible := 0
	if raw := c.Query("visible"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			apierror.BadRequest(c, "visible must be a non-negative integer")
			return
		}
		visible = n
	}
	categoryID := c.Query("category_id")

	key := cache.Key("page", categoryID, strconv.Itoa(visible))
	var page Page
	if hit, err := h.Cache.Get(ctx, key, &page); err != nil {
		log.Warn("gallery: cache read failed", "key", key, "error", err)
	} else if hit {
		c.JSON(http.StatusOK, page)
		return
	}

	f := store.CollectionFilter{PublishedOnly: true, CategoryID: categoryID}
	total, err := h.Store.CountCollections(ctx, f)
	if err != nil {
		apierror.Respond(c, err, "Failed to load gallery")
		return
	}

	pager := dg.NewPager(int(total), dg.WithLatency(0))
	if visible < pager.Total() && visible%pager.PageSize() != 0 {
		apierror.BadRequest(c, fmt.Sprintf("visible must be a multiple of %d", pager.PageSize()))
		return
	}
	from := 0
	if visible > 0 {
		pager.Resume(visible)
		from = pager.Visible()
		if _, err := pager.LoadMore(ctx); err != nil {
			apierror.Respond(c, err, "Failed to load gallery")
			return
		}
	}
	to := pager.Visible()

	page = Page{Tiles: []dg.Tile{}, HasMore: pager.HasMore(), Visible: to, Total: pager.Total()}
	if to > from {
		cols, _, err := h.Store.CollectionsPage(ctx, f, from, to-from)
		if err != nil {
			apierror.Respond(c, err, "Failed to load gallery")
			return
		}
		page.Tiles = dg.Tiles(cols, from)
	}

	if page.Theme, err = h.Store.Theme(ctx); err != nil {
		log.Warn("gallery: theme unavailable, using defaults", "error", err)
	}

	if err := h.Cache.Set(ctx, key, page); err != nil {
		log.Warn("gallery: cache write failed", "key", key, "error", err)
	}
	c.JSON(http.StatusOK, page)
}

type OpenRequest struct {
	Index int      `json:"index"`
	Keys  []string `json:"keys"`
}

// ------------------------------
// POST /gallery/:id/open  body: {"index": 0, "keys": ["ArrowRight"]}
// Records one view, then replays keys against the viewer.
// ------------------------------
func (h *Handler) Open(c *gin.Context) {
	var req OpenRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierror.BadRequest(c, err.Error())
			return
		}
	}

	ctx := c.Request.Context()
	col, err := h.Store.GetCollection(ctx, c.Param("id"), true)
	if err != nil {
		apierror.Respond(c, apierror.NotFound(err, "Collection not found"), "Failed to open collection")
		return
	}

	lb := dg.NewLightbox(h.Store)
	lb.Open(ctx, col.ID, col.Images, req.Index)
	for _, k := range req.Keys {
		lb.Key(k)
	}

	// cached tiles carry view_count
	if err := h.Cache.Invalidate(ctx); err != nil {
		logger.FromContext(ctx).Warn("gallery: cache invalidate failed", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"lightbox": lb.State()})
}

type SEO struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// ------------------------------
// GET /gallery/collections/:slug
// ------------------------------
func (h *Handler) Detail(c *gin.Context) {
	col, err := h.Store.GetCollectionBySlug(c.Request.Context(), c.Param("slug"), true)
	if err != nil {
		apierror.Respond(c, apierror.NotFound(err, "Collection not found"), "Failed to fetch collection")
		return
	}

	categoryName := ""
	if col.Category != nil {
		categoryName = col.Category.Name
	}
	description := col.SEODescription
	if description == "" {
		description = col.Description
	}

	seo := SEO{
		Title:       catalog.GenerateSeoTitle(col.Title, categoryName),
		Description: catalog.GenerateSeoDescription(description, col.Title),
		Keywords:    catalog.ExtractKeywords(col.Title, col.Description),
	}
	image := ""
	if cover := col.Cover(); cover != nil {
		image = cover.URL
	}

	c.JSON(http.StatusOK, gin.H{
		"collection": col,
		"seo":        seo,
		"og":         catalog.GenerateOpenGraphMeta(seo.Title, seo.Description, image),
	})
}
