package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	analyticsapi "portfolio-app/internal/api/analytics"
	authapi "portfolio-app/internal/api/auth"
	categoriesapi "portfolio-app/internal/api/categories"
	collectionsapi "portfolio-app/internal/api/collections"
	galleryapi "portfolio-app/internal/api/gallery"
	settingsapi "portfolio-app/internal/api/settings"
	uploadapi "portfolio-app/internal/api/upload"
	"portfolio-app/internal/app/http/middleware"
	"portfolio-app/internal/infra/blob"
	"portfolio-app/internal/infra/cache"
	"portfolio-app/internal/logger"
	"portfolio-app/internal/media"
	"portfolio-app/internal/store"
)

type Deps struct {
	Store  *store.Store
	Blobs  blob.Store
	Bucket string
	Cache  cache.Cache
	// Media serves blobs under /media when set.
	Media http.FileSystem

	JWTSecret         string
	JWTTTL            time.Duration
	AdminEmail        string
	AdminPasswordHash string

	CORSOrigin      string
	UploadMaxBytes  int64
	UploadMaxPixels int
	AnalyticsRate   float64
	AnalyticsBurst  int
}

// NewRouter builds the engine with the shared middleware and every route.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(logger.GinMiddleware(), gin.Recovery())

	// CORS before routes
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{d.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) {
		if err := d.Store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if d.Media != nil {
		r.StaticFS("/media", d.Media)
	}

	// Public reads; a valid admin token also unlocks drafts
	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware(), middleware.OptionalAuth(d.JWTSecret))

	// Admin routes
	admin := r.Group("/")
	admin.Use(middleware.SanitizeAndCleanInputMiddleware(), middleware.AuthMiddleware(d.JWTSecret), middleware.RequireRole(middleware.RoleAdmin))

	// Credentials are compared verbatim, so login skips the sanitizer
	authapi.NewHandler(d.AdminEmail, d.AdminPasswordHash, d.JWTSecret, d.JWTTTL).RegisterRoutes(r.Group("/"))

	collectionsapi.NewHandler(d.Store, d.Blobs, d.Bucket, d.Cache).RegisterRoutes(public, admin)
	categoriesapi.NewHandler(d.Store, d.Cache).RegisterRoutes(public, admin)
	settingsapi.NewHandler(d.Store, d.Cache).RegisterRoutes(public, admin)

	// Both view-counting endpoints share one per-IP budget
	limiter := middleware.NewIPRateLimiter(d.AnalyticsRate, d.AnalyticsBurst)
	galleryapi.NewHandler(d.Store, d.Cache).RegisterRoutes(public, limiter.Middleware())
	analyticsapi.NewHandler(d.Store, d.Cache).RegisterRoutes(public, admin, limiter.Middleware())

	pipeline := media.NewPipeline(d.Blobs, d.Bucket, media.WithMaxPixels(d.UploadMaxPixels))
	uploadapi.NewHandler(pipeline, d.UploadMaxBytes).RegisterRoutes(admin)
}
