package config

import (
	"testing"
	"time"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DB_URL", "sqlite::memory:")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("PUBLIC_BASE_URL", "https://cdn.example.com/media/")
	t.Setenv("CACHE_TTL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != ":9090" {
		t.Errorf("addr = %q", cfg.Addr())
	}
	if cfg.PublicBaseURL != "https://cdn.example.com/media" {
		t.Errorf("public base url = %q", cfg.PublicBaseURL)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("cache ttl = %v", cfg.CacheTTL)
	}
	if cfg.MediaBucket != "portfolio-images" {
		t.Errorf("media bucket default = %q", cfg.MediaBucket)
	}
	if cfg.UploadMaxBytes != 25<<20 {
		t.Errorf("upload max bytes default = %d", cfg.UploadMaxBytes)
	}
	if cfg.UploadMaxPixels != 100_000_000 {
		t.Errorf("upload max pixels default = %d", cfg.UploadMaxPixels)
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DB_URL", "sqlite::memory:")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is empty")
	}
}
