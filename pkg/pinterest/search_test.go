package pinterest

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSearchURL(t *testing.T) {
	tests := []struct {
		name     string
		keywords string
		expected string
	}{
		{
			name:     "single word",
			keywords: "sunset",
			expected: "https://www.pinterest.com/search/pins/?q=sunset",
		},
		{
			name:     "multiple words use percent encoding",
			keywords: "vintage car posters",
			expected: "https://www.pinterest.com/search/pins/?q=vintage%20car%20posters",
		},
		{
			name:     "surrounding whitespace trimmed",
			keywords: "  coffee art  ",
			expected: "https://www.pinterest.com/search/pins/?q=coffee%20art",
		},
		{
			name:     "special characters escaped",
			keywords: "black & white",
			expected: "https://www.pinterest.com/search/pins/?q=black%20%26%20white",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SearchURL(tt.keywords)
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name     string
		keywords string
		expected string
	}{
		{
			name:     "spaces become underscores",
			keywords: "vintage car posters",
			expected: "vintage_car_posters",
		},
		{
			name:     "commas become underscores",
			keywords: "red,green,blue",
			expected: "red_green_blue",
		},
		{
			name:     "mixed separators",
			keywords: "sunset, beach photos",
			expected: "sunset__beach_photos",
		},
		{
			name:     "single word unchanged",
			keywords: "minimalism",
			expected: "minimalism",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slug(tt.keywords)
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestSlugTruncation(t *testing.T) {
	long := strings.Repeat("a", 80)
	got := Slug(long)
	if len(got) != maxSlugLength {
		t.Errorf("Expected slug length %d, got %d", maxSlugLength, len(got))
	}
}

func TestSlugTruncationMultiByte(t *testing.T) {
	long := strings.Repeat("あ", 80)
	got := Slug(long)

	if !utf8.ValidString(got) {
		t.Errorf("Expected valid UTF-8 slug, got %q", got)
	}
	if n := utf8.RuneCountInString(got); n != maxSlugLength {
		t.Errorf("Expected slug rune count %d, got %d", maxSlugLength, n)
	}
	if !strings.HasSuffix(got, "あ") {
		t.Errorf("Expected slug to end on a whole rune, got %q", got)
	}
}
