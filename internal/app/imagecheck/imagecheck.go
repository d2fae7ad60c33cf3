// Package imagecheck fetches every published gallery tile and reports the
// ones whose image would never load.
package imagecheck

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"time"

	_ "golang.org/x/image/webp"

	"portfolio-app/internal/domain/gallery"
	"portfolio-app/internal/logger"
	"portfolio-app/internal/store"
)

const defaultTick = 100 * time.Millisecond

type Checker struct {
	Store  *store.Store
	Client *http.Client
	// BaseURL resolves relative tile URLs.
	BaseURL string
	Tick    time.Duration
}

type Failure struct {
	CollectionID string `json:"collection_id"`
	Slug         string `json:"slug"`
	URL          string `json:"url"`
	Error        string `json:"error"`
}

type Report struct {
	Checked int       `json:"checked"`
	Failed  []Failure `json:"failed"`
}

func New(st *store.Store, baseURL string) *Checker {
	return &Checker{
		Store:   st,
		Client:  &http.Client{Timeout: 30 * time.Second},
		BaseURL: baseURL,
		Tick:    defaultTick,
	}
}

// Run checks tiles one at a time. Tiles without an image are skipped.
func (c *Checker) Run(ctx context.Context) (Report, error) {
	log := logger.FromContext(ctx)

	cols, err := c.Store.ListCollections(ctx, store.CollectionFilter{PublishedOnly: true})
	if err != nil {
		return Report{}, err
	}

	rep := Report{Failed: []Failure{}}
	for _, tile := range gallery.Tiles(cols, 0) {
		if tile.URL == "" {
			continue
		}
		rep.Checked++

		p := gallery.NewProgressive(tile.URL, tile.Placeholder)
		if err := c.load(ctx, p); err != nil {
			return rep, err
		}
		if ferr := p.Failed(); ferr != nil {
			log.Warn("imagecheck: tile failed", "slug", tile.Slug, "url", tile.URL, "error", ferr)
			rep.Failed = append(rep.Failed, Failure{
				CollectionID: tile.ID,
				Slug:         tile.Slug,
				URL:          tile.URL,
				Error:        ferr.Error(),
			})
			continue
		}
		log.Debug("imagecheck: tile ok", "slug", tile.Slug, "progress", p.Progress())
	}
	return rep, nil
}

// load ticks p while the image is fetched and resolves it with the result.
// Only cancellation of ctx is returned as an error.
func (c *Checker) load(ctx context.Context, p *gallery.Progressive) error {
	done := make(chan error, 1)
	go func() { done <- c.fetch(ctx, p.Source) }()

	tick := c.Tick
	if tick <= 0 {
		tick = defaultTick
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Resolve(err)
			return nil
		case <-ticker.C:
			p.Tick()
		case <-ctx.Done():
			<-done
			return ctx.Err()
		}
	}
}

func (c *Checker) fetch(ctx context.Context, raw string) error {
	u, err := c.resolve(raw)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", u, resp.Status)
	}
	if _, _, err := image.DecodeConfig(resp.Body); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}

func (c *Checker) resolve(raw string) (string, error) {
	ref, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() || c.BaseURL == "" {
		return ref.String(), nil
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
