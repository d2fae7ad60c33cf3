package blob

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
)

const bucket = "portfolio-images"

func TestUploadAndPublicURL(t *testing.T) {
	s := NewMemStore("http://localhost:8080/media/")
	ctx := context.Background()

	if err := s.Upload(ctx, bucket, "a_1.jpg", []byte("jpeg"), UploadOptions{ContentType: "image/jpeg"}); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	got, err := afero.ReadFile(s.fs, "/"+bucket+"/a_1.jpg")
	if err != nil || string(got) != "jpeg" {
		t.Fatalf("stored %q, %v", got, err)
	}

	url := s.PublicURL(bucket, "a_1.jpg")
	if url != "http://localhost:8080/media/portfolio-images/a_1.jpg" {
		t.Errorf("PublicURL = %q", url)
	}
	if p, ok := s.PathFromURL(bucket, url); !ok || p != "a_1.jpg" {
		t.Errorf("PathFromURL = %q, %v", p, ok)
	}
	if _, ok := s.PathFromURL(bucket, "https://elsewhere.example.com/a.jpg"); ok {
		t.Error("foreign URL reported as owned")
	}
}

func TestUploadWithoutUpsert(t *testing.T) {
	s := NewMemStore("http://x")
	ctx := context.Background()

	_ = s.Upload(ctx, bucket, "a.jpg", []byte("1"), UploadOptions{})
	err := s.Upload(ctx, bucket, "a.jpg", []byte("2"), UploadOptions{})
	if !errors.Is(err, ErrExists) {
		t.Fatalf("err = %v, want ErrExists", err)
	}

	if err := s.Upload(ctx, bucket, "a.jpg", []byte("3"), UploadOptions{Upsert: true}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, _ := afero.ReadFile(s.fs, "/"+bucket+"/a.jpg")
	if string(got) != "3" {
		t.Errorf("content = %q", got)
	}
}

func TestRejectsTraversal(t *testing.T) {
	s := NewMemStore("http://x")

	for _, p := range []string{"", "../etc/passwd", "a/../../b", "/"} {
		err := s.Upload(context.Background(), bucket, p, []byte("x"), UploadOptions{Upsert: true})
		if !errors.Is(err, ErrBadPath) {
			t.Errorf("Upload(%q) err = %v, want ErrBadPath", p, err)
		}
	}
}

func TestCopyAndRemove(t *testing.T) {
	s := NewMemStore("http://x")
	ctx := context.Background()
	_ = s.Upload(ctx, bucket, "src.jpg", []byte("data"), UploadOptions{Upsert: true})

	if err := s.Copy(ctx, bucket, "src.jpg", "dst.jpg"); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if err := s.Copy(ctx, bucket, "missing.jpg", "x.jpg"); err == nil {
		t.Error("Copy of missing blob succeeded")
	}

	if err := s.Remove(ctx, bucket, []string{"src.jpg", "never-there.jpg"}); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if ok, _ := afero.Exists(s.fs, "/"+bucket+"/src.jpg"); ok {
		t.Error("src.jpg still present")
	}
	if ok, _ := afero.Exists(s.fs, "/"+bucket+"/dst.jpg"); !ok {
		t.Error("dst.jpg removed")
	}
}
