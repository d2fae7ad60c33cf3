package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

/*
	Slug helpers
	------------
	- GenerateSlug / GenerateUniqueSlug are pure
	- DuplicateSlug queries the live store through the exists callback
*/

var (
	nonSlug  = regexp.MustCompile(`[^\w\s-]`)
	slugRuns = regexp.MustCompile(`[\s_-]+`)
)

// MaxDuplicateAttempts bounds the "-copy-N" search.
const MaxDuplicateAttempts = 1000

// GenerateSlug builds a URL-safe slug from free text.
// Example: "  Villa Nørre  Strand_II " -> "villa-nrre-strand-ii"
func GenerateSlug(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = nonSlug.ReplaceAllString(s, "")
	s = slugRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// GenerateUniqueSlug returns GenerateSlug(text), suffixed with -1, -2, ...
// until it is not in existing. Text with no slug characters yields "".
func GenerateUniqueSlug(text string, existing []string) string {
	base := GenerateSlug(text)
	if base == "" {
		return ""
	}

	taken := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		taken[s] = struct{}{}
	}

	slug := base
	for n := 1; ; n++ {
		if _, ok := taken[slug]; !ok {
			return slug
		}
		slug = base + "-" + strconv.Itoa(n)
	}
}

// ValidSlug reports whether s is non-empty and already canonical.
func ValidSlug(s string) bool {
	return s != "" && GenerateSlug(s) == s
}

// SlugExistsFunc is a point query against the store for an exact slug.
type SlugExistsFunc func(ctx context.Context, slug string) (bool, error)

// DuplicateSlug finds the first free slug among base-copy, base-copy-1,
// base-copy-2, ... issuing one exists query per attempt.
func DuplicateSlug(ctx context.Context, base string, exists SlugExistsFunc) (string, error) {
	candidate := base + "-copy"
	for attempt := 1; attempt <= MaxDuplicateAttempts; attempt++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-copy-" + strconv.Itoa(attempt)
	}
	return "", fmt.Errorf("%w: no free copy slug for %q after %d attempts", ErrConflict, base, MaxDuplicateAttempts)
}
