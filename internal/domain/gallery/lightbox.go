package gallery

import (
	"context"

	"portfolio-app/internal/domain/catalog"
	"portfolio-app/internal/logger"
)

const (
	MinZoom  = 1.0
	MaxZoom  = 3.0
	ZoomStep = 0.5

	// SwipeThreshold is the horizontal drag offset, in pixels, that turns a
	// drag into navigation.
	SwipeThreshold = 50.0
)

// Keys understood by Lightbox.Key.
const (
	KeyEscape     = "Escape"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// ViewRecorder appends a view event for a collection.
type ViewRecorder interface {
	RecordView(ctx context.Context, collectionID string) error
}

// Lightbox is the full-screen viewer over one collection's images.
// The zero value is closed.
type Lightbox struct {
	recorder ViewRecorder

	open         bool
	collectionID string
	images       []catalog.CollectionImage
	index        int
	zoom         float64
}

func NewLightbox(recorder ViewRecorder) *Lightbox {
	return &Lightbox{recorder: recorder}
}

// LightboxState is a snapshot of the viewer.
type LightboxState struct {
	Open         bool                     `json:"open"`
	CollectionID string                   `json:"collection_id,omitempty"`
	Index        int                      `json:"index"`
	Zoom         float64                  `json:"zoom"`
	Count        int                      `json:"count"`
	Image        *catalog.CollectionImage `json:"image,omitempty"`
}

// Open shows images starting at index and records exactly one view.
// An out-of-range index starts at the first image. Recording failures are
// logged and otherwise ignored.
func (l *Lightbox) Open(ctx context.Context, collectionID string, images []catalog.CollectionImage, index int) {
	if index < 0 || index >= len(images) {
		index = 0
	}

	l.open = true
	l.collectionID = collectionID
	l.images = images
	l.index = index
	l.zoom = MinZoom

	if l.recorder == nil {
		return
	}
	if err := l.recorder.RecordView(ctx, collectionID); err != nil {
		logger.FromContext(ctx).Warn("lightbox: view not recorded",
			"collection_id", collectionID,
			"error", err,
		)
	}
}

func (l *Lightbox) Close() {
	l.open = false
	l.collectionID = ""
	l.images = nil
	l.index = 0
	l.zoom = MinZoom
}

func (l *Lightbox) IsOpen() bool { return l.open }

func (l *Lightbox) Next() {
	if !l.navigable() {
		return
	}
	l.show((l.index + 1) % len(l.images))
}

func (l *Lightbox) Previous() {
	if !l.navigable() {
		return
	}
	n := len(l.images)
	l.show((l.index - 1 + n) % n)
}

// Select jumps to image i, as from the thumbnail strip.
func (l *Lightbox) Select(i int) {
	if !l.navigable() || i < 0 || i >= len(l.images) {
		return
	}
	l.show(i)
}

func (l *Lightbox) ZoomIn() {
	if l.open {
		l.zoom = min(l.zoom+ZoomStep, MaxZoom)
	}
}

func (l *Lightbox) ZoomOut() {
	if l.open {
		l.zoom = max(l.zoom-ZoomStep, MinZoom)
	}
}

// Drag ends a horizontal drag. Dragging is only possible at zoom 1.
func (l *Lightbox) Drag(offsetX float64) {
	if !l.open || l.zoom != MinZoom {
		return
	}
	switch {
	case offsetX > SwipeThreshold:
		l.Previous()
	case offsetX < -SwipeThreshold:
		l.Next()
	}
}

// Key applies a keyboard shortcut; unknown keys are ignored.
func (l *Lightbox) Key(key string) {
	if !l.open {
		return
	}
	switch key {
	case KeyEscape:
		l.Close()
	case KeyArrowLeft:
		l.Previous()
	case KeyArrowRight:
		l.Next()
	case "+", "=":
		l.ZoomIn()
	case "-":
		l.ZoomOut()
	}
}

func (l *Lightbox) State() LightboxState {
	if !l.open {
		return LightboxState{Zoom: MinZoom}
	}
	st := LightboxState{
		Open:         true,
		CollectionID: l.collectionID,
		Index:        l.index,
		Zoom:         l.zoom,
		Count:        len(l.images),
	}
	if l.index < len(l.images) {
		img := l.images[l.index]
		st.Image = &img
	}
	return st
}

func (l *Lightbox) navigable() bool {
	return l.open && len(l.images) > 0
}

func (l *Lightbox) show(i int) {
	l.index = i
	l.zoom = MinZoom
}
