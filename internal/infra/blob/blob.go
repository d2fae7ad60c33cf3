package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

var (
	ErrExists  = errors.New("blob already exists")
	ErrBadPath = errors.New("invalid blob path")
)

type UploadOptions struct {
	ContentType string
	Upsert      bool
}

// Store is the object store used for collection images.
type Store interface {
	Upload(ctx context.Context, bucket, path string, data []byte, opts UploadOptions) error
	PublicURL(bucket, path string) string
	Remove(ctx context.Context, bucket string, paths []string) error
	Copy(ctx context.Context, bucket, src, dst string) error
	// PathFromURL reverses PublicURL. ok is false for URLs this store
	// does not own.
	PathFromURL(bucket, url string) (p string, ok bool)
}

// FSStore keeps blobs as files under <bucket>/<path> on an afero filesystem.
type FSStore struct {
	fs      afero.Fs
	baseURL string
}

func NewFSStore(fsys afero.Fs, publicBaseURL string) *FSStore {
	return &FSStore{fs: fsys, baseURL: strings.TrimRight(publicBaseURL, "/")}
}

// NewOSStore roots the store at dir on the local disk.
func NewOSStore(dir, publicBaseURL string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return NewFSStore(afero.NewBasePathFs(afero.NewOsFs(), dir), publicBaseURL), nil
}

// NewMemStore is an in-memory store for tests.
func NewMemStore(publicBaseURL string) *FSStore {
	return NewFSStore(afero.NewMemMapFs(), publicBaseURL)
}

func (s *FSStore) Upload(ctx context.Context, bucket, p string, data []byte, opts UploadOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := objectName(bucket, p)
	if err != nil {
		return err
	}

	if !opts.Upsert {
		exists, err := afero.Exists(s.fs, name)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrExists, name)
		}
	}

	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(s.fs, name, data, 0o644)
}

func (s *FSStore) PublicURL(bucket, p string) string {
	return s.baseURL + "/" + bucket + "/" + strings.TrimLeft(p, "/")
}

// Remove deletes paths; missing blobs are not an error.
func (s *FSStore) Remove(ctx context.Context, bucket string, paths []string) error {
	var errs []error
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		name, err := objectName(bucket, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.fs.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (s *FSStore) Copy(ctx context.Context, bucket, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from, err := objectName(bucket, src)
	if err != nil {
		return err
	}
	data, err := afero.ReadFile(s.fs, from)
	if err != nil {
		return fmt.Errorf("read %s: %w", from, err)
	}
	return s.Upload(ctx, bucket, dst, data, UploadOptions{Upsert: true})
}

func (s *FSStore) PathFromURL(bucket, url string) (string, bool) {
	prefix := s.PublicURL(bucket, "")
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	p := strings.TrimPrefix(url, prefix)
	if _, err := objectName(bucket, p); err != nil {
		return "", false
	}
	return p, true
}

// HTTPFileSystem exposes the blobs for static serving; the URL path is
// <bucket>/<path>.
func (s *FSStore) HTTPFileSystem() http.FileSystem {
	return afero.NewHttpFs(s.fs)
}

func objectName(bucket, p string) (string, error) {
	if bucket == "" || strings.Contains(bucket, "/") {
		return "", fmt.Errorf("%w: bucket %q", ErrBadPath, bucket)
	}
	clean := path.Clean("/" + p)
	if p == "" || clean == "/" || clean != "/"+strings.TrimLeft(p, "/") {
		return "", fmt.Errorf("%w: %q", ErrBadPath, p)
	}
	return "/" + bucket + clean, nil
}
