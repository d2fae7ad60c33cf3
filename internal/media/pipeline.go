package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"portfolio-app/internal/domain/catalog"
	"portfolio-app/internal/infra/blob"
	"portfolio-app/internal/logger"
)

/*
	Image pipeline
	--------------
	decode -> thumbnail (fit 400x600, q80) -> full size (long edge 2400, q90)
	-> upload thumb, then full. A failed full upload removes the thumb.
*/

const (
	ThumbMaxWidth  = 400
	ThumbMaxHeight = 600
	ThumbQuality   = 80

	FullMaxEdge = 2400
	FullQuality = 90

	ContentType = "image/jpeg"

	// DefaultMaxPixels caps width*height before a full decode.
	DefaultMaxPixels = 100_000_000
)

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Pipeline struct {
	store     blob.Store
	bucket    string
	maxPixels int
}

type Option func(*Pipeline)

// WithMaxPixels overrides DefaultMaxPixels. Non-positive values are ignored.
func WithMaxPixels(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxPixels = n
		}
	}
}

func NewPipeline(store blob.Store, bucket string, opts ...Option) *Pipeline {
	p := &Pipeline{store: store, bucket: bucket, maxPixels: DefaultMaxPixels}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Decode reads the header, rejects images above maxPixels, then decodes
// data once and reports its native size.
func Decode(data []byte, maxPixels int) (image.Image, Dimensions, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, Dimensions{}, fmt.Errorf("%w: %v", catalog.ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, Dimensions{}, fmt.Errorf("%w: %dx%d exceeds %d pixels", catalog.ErrDecode, cfg.Width, cfg.Height, maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Dimensions{}, fmt.Errorf("%w: %v", catalog.ErrDecode, err)
	}
	b := img.Bounds()
	return img, Dimensions{Width: b.Dx(), Height: b.Dy()}, nil
}

// FitWithin scales w x h down to fit maxW x maxH, keeping the aspect ratio.
// Images already inside the box are returned unchanged.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 || (w <= maxW && h <= maxH) {
		return w, h
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	return max(1, int(math.Round(float64(w)*scale))), max(1, int(math.Round(float64(h)*scale)))
}

// Process derives and uploads both renditions under path (no extension).
// It never returns a partial descriptor.
func (p *Pipeline) Process(ctx context.Context, data []byte, path string) (catalog.CollectionImage, error) {
	img, dim, err := Decode(data, p.maxPixels)
	if err != nil {
		return catalog.CollectionImage{}, err
	}

	tw, th := FitWithin(dim.Width, dim.Height, ThumbMaxWidth, ThumbMaxHeight)
	thumb, err := encode(img, tw, th, ThumbQuality)
	if err != nil {
		return catalog.CollectionImage{}, err
	}

	fw, fh := FitWithin(dim.Width, dim.Height, FullMaxEdge, FullMaxEdge)
	full, err := encode(img, fw, fh, FullQuality)
	if err != nil {
		return catalog.CollectionImage{}, err
	}

	thumbPath := path + "_thumb.jpg"
	fullPath := path + ".jpg"
	opts := blob.UploadOptions{ContentType: ContentType, Upsert: true}

	if err := p.store.Upload(ctx, p.bucket, thumbPath, thumb, opts); err != nil {
		return catalog.CollectionImage{}, fmt.Errorf("%w: thumbnail %s: %v", catalog.ErrUpload, thumbPath, err)
	}
	if err := p.store.Upload(ctx, p.bucket, fullPath, full, opts); err != nil {
		if rmErr := p.store.Remove(context.WithoutCancel(ctx), p.bucket, []string{thumbPath}); rmErr != nil {
			logger.FromContext(ctx).Error("media: orphaned thumbnail",
				"path", thumbPath,
				"error", rmErr,
			)
		}
		return catalog.CollectionImage{}, fmt.Errorf("%w: full size %s: %v", catalog.ErrUpload, fullPath, err)
	}

	width, height := dim.Width, dim.Height
	return catalog.CollectionImage{
		URL:          p.store.PublicURL(p.bucket, fullPath),
		ThumbnailURL: p.store.PublicURL(p.bucket, thumbPath),
		Width:        &width,
		Height:       &height,
	}, nil
}

// File is one uploaded file of a batch.
type File struct {
	Name string
	Data []byte
}

type Failure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ProcessBatch runs files one at a time in order. A failing file is
// reported and skipped; the rest of the batch still runs.
func (p *Pipeline) ProcessBatch(ctx context.Context, collectionID string, files []File) ([]catalog.CollectionImage, []Failure) {
	log := logger.FromContext(ctx)
	images := make([]catalog.CollectionImage, 0, len(files))
	var failed []Failure

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			failed = append(failed, Failure{Name: f.Name, Error: err.Error()})
			continue
		}

		img, err := p.Process(ctx, f.Data, ObjectName(collectionID, time.Now()))
		if err != nil {
			log.Warn("media: upload failed", "file", f.Name, "error", err)
			failed = append(failed, Failure{Name: f.Name, Error: err.Error()})
			continue
		}
		img.Alt = AltFromFileName(f.Name)
		images = append(images, img)
	}
	return images, failed
}

// ObjectName is "{collection id or temp}_{unix millis}_{random}".
func ObjectName(collectionID string, now time.Time) string {
	owner := collectionID
	if owner == "" {
		owner = "temp"
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%s", owner, now.UnixMilli(), random)
}

// AltFromFileName drops the last extension: "north-facade.v2.png" -> "north-facade.v2".
func AltFromFileName(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}

func encode(src image.Image, w, h, quality int) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("%w: encode jpeg: %v", catalog.ErrDecode, err)
	}
	return buf.Bytes(), nil
}
