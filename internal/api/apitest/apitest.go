// Package apitest holds fixtures shared by the api handler tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-app/database"
	"portfolio-app/internal/api/auth"
	"portfolio-app/internal/app/http/middleware"
	"portfolio-app/internal/infra/blob"
	"portfolio-app/internal/store"
)

const (
	Secret  = "test-secret"
	Bucket  = "portfolio-images"
	BaseURL = "http://localhost:8080/media"
)

type Env struct {
	Store  *store.Store
	Blobs  *blob.FSStore
	Router *gin.Engine
	Public *gin.RouterGroup
	Admin  *gin.RouterGroup
}

// New wires a router with the same auth groups the server uses, over an
// in-memory database and blob store.
func New(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	r := gin.New()
	return &Env{
		Store:  store.New(db),
		Blobs:  blob.NewMemStore(BaseURL),
		Router: r,
		Public: r.Group("/", middleware.OptionalAuth(Secret)),
		Admin:  r.Group("/", middleware.AuthMiddleware(Secret), middleware.RequireRole(middleware.RoleAdmin)),
	}
}

func AdminToken(t *testing.T) string {
	t.Helper()
	tok, err := auth.IssueToken(Secret, "admin@example.com", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

// Do sends body as JSON (nil for none) with an optional bearer token.
func (e *Env) Do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.Router.ServeHTTP(rr, req)
	return rr
}

// Decode unmarshals a recorder body into v.
func Decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rr.Body.String(), err)
	}
}

func ExpectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d: %s", rr.Code, want, rr.Body.String())
	}
}
