package analytics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-app/internal/api/apierror"
	"portfolio-app/internal/domain/catalog"
	"portfolio-app/internal/infra/cache"
	"portfolio-app/internal/logger"
	"portfolio-app/internal/store"
)

const (
	DefaultDays     = 30
	maxEventTypeLen = 32
)

type Handler struct {
	Store *store.Store
	Cache cache.Cache
	Now   func() time.Time
}

func NewHandler(st *store.Store, c cache.Cache) *Handler {
	if c == nil {
		c = cache.Nop{}
	}
	return &Handler{Store: st, Cache: c, Now: time.Now}
}

// RegisterRoutes mounts tracking on public behind the given limiters and the
// summary on admin.
func (h *Handler) RegisterRoutes(public, admin *gin.RouterGroup, limit ...gin.HandlerFunc) {
	public.POST("/analytics", append(limit, h.Track)...)
	admin.GET("/analytics", h.Summary)
}

type TrackRequest struct {
	CollectionID string `json:"collection_id"`
	EventType    string `json:"event_type"`
}

// ------------------------------
// POST /analytics
// ------------------------------
func (h *Handler) Track(c *gin.Context) {
	var req TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.BadRequest(c, err.Error())
		return
	}

	id := strings.TrimSpace(req.CollectionID)
	eventType := strings.TrimSpace(req.EventType)
	if id == "" || eventType == "" {
		apierror.BadRequest(c, "collection_id and event_type are required")
		return
	}
	if len(eventType) > maxEventTypeLen {
		apierror.BadRequest(c, "event_type is too long")
		return
	}

	ctx := c.Request.Context()
	if err := h.Store.RecordEvent(ctx, id, eventType); err != nil {
		apierror.Respond(c, apierror.NotFound(err, "Collection not found"), "Failed to track event")
		return
	}
	if eventType == catalog.EventView {
		if err := h.Cache.Invalidate(ctx); err != nil {
			logger.FromContext(ctx).Warn("analytics: cache invalidate failed", "error", err)
		}
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Event tracked"})
}

// ------------------------------
// GET /analytics?days=30&collection_id=
// ------------------------------
func (h *Handler) Summary(c *gin.Context) {
	days := DefaultDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			apierror.BadRequest(c, "days must be a positive integer")
			return
		}
		days = n
	}

	summary, err := h.Store.AnalyticsSummary(c.Request.Context(), days, c.Query("collection_id"), h.Now())
	if err != nil {
		apierror.Respond(c, err, "Failed to fetch analytics")
		return
	}
	c.JSON(http.StatusOK, summary)
}
