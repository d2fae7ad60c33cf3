package collections

import (
	"bytes"
	"encoding/json"

	"portfolio-app/internal/domain/catalog"
)

// NullableString tells an absent key apart from an explicit null.
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

type CreateCollectionRequest struct {
	Title          string                    `json:"title"`
	Slug           string                    `json:"slug"`
	Description    string                    `json:"description"`
	SEOTitle       string                    `json:"seo_title"`
	SEODescription string                    `json:"seo_description"`
	CategoryID     *string                   `json:"category_id"`
	Images         []catalog.CollectionImage `json:"images"`
	IsPublished    bool                      `json:"is_published"`
	Order          int                       `json:"order"`
}

type UpdateCollectionRequest struct {
	Title          *string                    `json:"title"`
	Slug           *string                    `json:"slug"`
	Description    *string                    `json:"description"`
	SEOTitle       *string                    `json:"seo_title"`
	SEODescription *string                    `json:"seo_description"`
	CategoryID     NullableString             `json:"category_id"`
	Images         *[]catalog.CollectionImage `json:"images"`
	IsPublished    *bool                      `json:"is_published"`
	Order          *int                       `json:"order"`
}

type ReorderCollectionsRequest struct {
	IDs []string `json:"ids"`
}
