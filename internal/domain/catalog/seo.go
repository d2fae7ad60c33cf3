package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	SiteName             = "JVA Designs"
	seoDescriptionMaxLen = 155
	maxKeywords          = 10
)

var spaces = regexp.MustCompile(`\s+`)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
}

func GenerateSeoTitle(title, categoryName string) string {
	if categoryName != "" {
		return title + " - " + categoryName + " Project | " + SiteName
	}
	return title + " | " + SiteName + " Architecture"
}

// GenerateSeoDescription trims to 155 characters, ending with "..." when cut.
func GenerateSeoDescription(description, title string) string {
	if strings.TrimSpace(description) == "" {
		return "Explore " + title + ", an architectural project by " + SiteName +
			". Award-winning architecture firm specializing in modern, sustainable design."
	}

	runes := []rune(description)
	if len(runes) <= seoDescriptionMaxLen {
		return description
	}
	return strings.TrimSpace(string(runes[:seoDescriptionMaxLen-3])) + "..."
}

// GenerateImageAlt: "<title> - View <n>[ - <first sentence>]".
func GenerateImageAlt(title string, index int, description string) string {
	alt := title + " - View " + strconv.Itoa(index+1)
	if description != "" {
		first, _, _ := strings.Cut(description, ".")
		alt += " - " + first
	}
	return alt
}

func SanitizeTitle(title string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(title), " ")
}

// ExtractKeywords returns up to 10 distinct words longer than 3 characters.
func ExtractKeywords(title, description string) []string {
	words := strings.Fields(strings.ToLower(title + " " + description))

	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, maxKeywords)
	for _, w := range words {
		if len([]rune(w)) <= 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}

type OpenGraphMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Type        string `json:"type"`
	SiteName    string `json:"siteName"`
}

func GenerateOpenGraphMeta(title, description, imageURL string) OpenGraphMeta {
	if imageURL == "" {
		imageURL = "/og-image.jpg"
	}
	return OpenGraphMeta{
		Title:       title,
		Description: description,
		Image:       imageURL,
		Type:        "article",
		SiteName:    SiteName,
	}
}
