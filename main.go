package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"portfolio-app/config"
	"portfolio-app/database"
	routes "portfolio-app/internal/app/http"
	"portfolio-app/internal/app/imagecheck"
	"portfolio-app/internal/infra/blob"
	"portfolio-app/internal/infra/cache"
	"portfolio-app/internal/logger"
	"portfolio-app/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("portfolio-app", "error", err)
		os.Exit(1)
	}
}

var (
	rootCmd = &cobra.Command{
		Use:           "portfolio-app",
		Short:         "Architecture portfolio API and maintenance tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE:  runMigrate,
	}
	verifyCmd = &cobra.Command{
		Use:   "verify-images",
		Short: "Fetch every published gallery tile and report broken images",
		RunE:  runVerifyImages,
	}

	// Flags
	dsn       string
	noMigrate bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Database URL. Falls back to DB_URL")
	serveCmd.Flags().BoolVar(&noMigrate, "no-migrate", false, "Skip auto-migration on start")
	rootCmd.AddCommand(serveCmd, migrateCmd, verifyCmd)
}

// setup loads config, installs the logger and opens the database.
func setup() (*config.Config, *gorm.DB, error) {
	if dsn != "" {
		if err := os.Setenv("DB_URL", dsn); err != nil {
			return nil, nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Open(cfg.DBURL, cfg.GormLogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	_, db, err := setup()
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	slog.Info("migrations applied")
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}
	if !noMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}
	gin.SetMode(cfg.GinMode)

	blobs, err := blob.NewOSStore(cfg.MediaRoot, cfg.PublicBaseURL)
	if err != nil {
		return fmt.Errorf("media root %s: %w", cfg.MediaRoot, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, closeCache := openCache(ctx, cfg)
	defer closeCache()

	r := routes.NewRouter(routes.Deps{
		Store:             store.New(db),
		Blobs:             blobs,
		Bucket:            cfg.MediaBucket,
		Cache:             c,
		Media:             blobs.HTTPFileSystem(),
		JWTSecret:         cfg.JWTSecret,
		JWTTTL:            cfg.JWTTTL,
		AdminEmail:        cfg.AdminEmail,
		AdminPasswordHash: cfg.AdminPasswordHash,
		CORSOrigin:        cfg.CORSOrigin,
		UploadMaxBytes:    cfg.UploadMaxBytes,
		UploadMaxPixels:   cfg.UploadMaxPixels,
		AnalyticsRate:     cfg.AnalyticsRate,
		AnalyticsBurst:    cfg.AnalyticsBurst,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		slog.Info("server stopped")
	}
	return nil
}

// openCache uses redis when REDIS_ADDR is set. An unreachable redis is
// logged and the server runs uncached.
func openCache(ctx context.Context, cfg *config.Config) (cache.Cache, func()) {
	if cfg.RedisAddr == "" {
		return cache.Nop{}, func() {}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rc, err := cache.NewRedis(pingCtx, cache.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
	})
	if err != nil {
		slog.Warn("redis unavailable, gallery cache disabled", "error", err)
		return cache.Nop{}, func() {}
	}
	return rc, func() { _ = rc.Close() }
}

func runVerifyImages(cmd *cobra.Command, args []string) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}

	rep, err := imagecheck.New(store.New(db), cfg.PublicBaseURL).Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("verify images: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return err
	}
	if len(rep.Failed) > 0 {
		return fmt.Errorf("%d of %d tile image(s) failed to load", len(rep.Failed), rep.Checked)
	}
	return nil
}
