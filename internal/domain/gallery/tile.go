package gallery

import "portfolio-app/internal/domain/catalog"

const (
	AspectLandscape = "4:3"
	AspectPortrait  = "3:4"

	priorityTiles = 4
)

// Tile is one collection in the masonry grid.
type Tile struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	CategoryName string `json:"category_name,omitempty"`

	URL         string `json:"url,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Alt         string `json:"alt"`
	AspectRatio string `json:"aspect_ratio"`
	Priority    bool   `json:"priority"`

	ImageCount int `json:"image_count"`
	ViewCount  int `json:"view_count"`
}

// AspectRatio is landscape only when the first image is known to be wider
// than tall.
func AspectRatio(c catalog.Collection) string {
	cover := c.Cover()
	if cover == nil || cover.Width == nil || cover.Height == nil || *cover.Width == 0 || *cover.Height == 0 {
		return AspectPortrait
	}
	if float64(*cover.Width)/float64(*cover.Height) > 1 {
		return AspectLandscape
	}
	return AspectPortrait
}

// NewTile builds the tile at grid position.
func NewTile(c catalog.Collection, position int) Tile {
	t := Tile{
		ID:          c.ID,
		Title:       c.Title,
		Slug:        c.Slug,
		Description: c.Description,
		Alt:         c.Title,
		AspectRatio: AspectRatio(c),
		Priority:    position < priorityTiles,
		ImageCount:  len(c.Images),
		ViewCount:   c.ViewCount,
	}
	if c.Category != nil {
		t.CategoryName = c.Category.Name
	}
	if cover := c.Cover(); cover != nil {
		t.URL = cover.URL
		t.Placeholder = cover.ThumbnailURL
		if t.Placeholder == "" {
			t.Placeholder = cover.URL
		}
		if cover.Alt != "" {
			t.Alt = cover.Alt
		}
	}
	return t
}

// Tiles builds tiles for collections starting at grid position offset.
func Tiles(collections []catalog.Collection, offset int) []Tile {
	out := make([]Tile, 0, len(collections))
	for i, c := range collections {
		out = append(out, NewTile(c, offset+i))
	}
	return out
}
