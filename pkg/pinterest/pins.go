package pinterest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	errs "pinscope/pkg/errors"
)

// Pin describes a captured pin for the metadata sidecar written next to
// the screenshots.
type Pin struct {
	Index     int    `json:"index"`
	Alt       string `json:"alt,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
	Filename  string `json:"filename,omitempty"`
}

// ExtractPins parses rendered search page HTML and returns metadata for
// up to max pin images, in document order. A max of 0 means no limit.
func ExtractPins(html string, max int) ([]Pin, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeCapture, "failed to parse page HTML", err)
	}

	var pins []Pin
	doc.Find("img").EachWithBreak(func(i int, s *goquery.Selection) bool {
		src, ok := s.Attr("src")
		if !ok || !strings.Contains(src, "pinimg") {
			return true
		}

		pins = append(pins, Pin{
			Index:     len(pins) + 1,
			Alt:       strings.TrimSpace(s.AttrOr("alt", "")),
			SourceURL: src,
		})

		return max <= 0 || len(pins) < max
	})

	return pins, nil
}
