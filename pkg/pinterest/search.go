package pinterest

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// BaseURL is the Pinterest web root
	BaseURL = "https://www.pinterest.com"

	// PinImageSelector matches pin thumbnails on a search results page.
	// Pinterest serves pin images from the pinimg CDN, which separates
	// them from avatars, icons and other chrome.
	PinImageSelector = `img[src*="pinimg"]`

	maxSlugLength = 50
)

// SearchURL builds the search results URL for a keyword query.
// Spaces are encoded as %20, not +, to match the URLs Pinterest
// itself produces.
func SearchURL(keywords string) string {
	encoded := url.QueryEscape(strings.TrimSpace(keywords))
	encoded = strings.ReplaceAll(encoded, "+", "%20")
	return fmt.Sprintf("%s/search/pins/?q=%s", BaseURL, encoded)
}

// Slug converts a keyword query into a filesystem-safe prefix for
// saved screenshots. Spaces and commas become underscores and the
// result is truncated to keep filenames manageable. Truncation counts
// runes so multi-byte keywords never get cut mid-character.
func Slug(keywords string) string {
	slug := strings.TrimSpace(keywords)
	slug = strings.ReplaceAll(slug, " ", "_")
	slug = strings.ReplaceAll(slug, ",", "_")
	if runes := []rune(slug); len(runes) > maxSlugLength {
		slug = string(runes[:maxSlugLength])
	}
	return slug
}
