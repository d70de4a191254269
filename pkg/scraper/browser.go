package scraper

import (
	"context"
	"time"

	"pinscope/pkg/pinterest"
)

// rodBrowser adapts pinterest.Browser to the Browser interface.
type rodBrowser struct {
	b *pinterest.Browser
}

func (r *rodBrowser) SetSession(cookie, userAgent string) error {
	return r.b.SetSession(cookie, userAgent)
}

func (r *rodBrowser) Navigate(ctx context.Context, url string) error {
	return r.b.Navigate(ctx, url)
}

func (r *rodBrowser) ScrollPage(ctx context.Context, count int, pause time.Duration) error {
	return r.b.ScrollPage(ctx, count, pause)
}

func (r *rodBrowser) Pins(max int) ([]Pin, error) {
	images, err := r.b.PinImages(max)
	if err != nil {
		return nil, err
	}

	pins := make([]Pin, len(images))
	for i, img := range images {
		pins[i] = &rodPin{img}
	}
	return pins, nil
}

func (r *rodBrowser) HTML() (string, error) {
	return r.b.HTML()
}

func (r *rodBrowser) Close() {
	r.b.Close()
}

// rodPin adapts pinterest.PinImage to the Pin interface.
type rodPin struct {
	img *pinterest.PinImage
}

func (p *rodPin) Meta() pinterest.Pin {
	return pinterest.Pin{
		Index:     p.img.Index,
		Alt:       p.img.Alt,
		SourceURL: p.img.SourceURL,
	}
}

func (p *rodPin) Capture(settle time.Duration) ([]byte, error) {
	return p.img.Capture(settle)
}
