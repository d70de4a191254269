package pinterest

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"pinscope/pkg/config"
	errs "pinscope/pkg/errors"
	"pinscope/pkg/logger"
)

// Browser wraps a headless Chromium instance with a single page pointed
// at Pinterest. It is not safe for concurrent use; the scrape flow is
// strictly sequential.
type Browser struct {
	browser *rod.Browser
	page    *rod.Page
	cfg     config.BrowserConfig
	log     logger.Logger
}

// NewBrowser launches the browser and prepares a stealth page with the
// configured viewport.
func NewBrowser(cfg config.BrowserConfig, log logger.Logger) (*Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}

	// Pinterest blocks obviously automated browsers
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeBrowser, "failed to launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeBrowser, "failed to connect to browser", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.MustClose()
		return nil, errs.Wrap(errs.ErrorTypeBrowser, "failed to create page", err)
	}

	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		log.WithError(err).Warn("Stealth injection failed, proceeding without it")
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             cfg.ViewportWidth,
		Height:            cfg.ViewportHeight,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}); err != nil {
		browser.MustClose()
		return nil, errs.Wrap(errs.ErrorTypeBrowser, "failed to set viewport", err)
	}

	log.WithFields(map[string]interface{}{
		"headless": cfg.Headless,
		"viewport": map[string]int{"width": cfg.ViewportWidth, "height": cfg.ViewportHeight},
	}).Debug("Browser launched")

	return &Browser{
		browser: browser,
		page:    page,
		cfg:     cfg,
		log:     log,
	}, nil
}

// SetSession installs the Pinterest session cookie and user agent.
// Must be called before Navigate for the cookie to take effect.
func (b *Browser) SetSession(cookie, userAgent string) error {
	if userAgent != "" {
		if err := b.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: userAgent,
		}); err != nil {
			return errs.Wrap(errs.ErrorTypeBrowser, "failed to set user agent", err)
		}
	}

	if cookie != "" {
		_, err := proto.NetworkSetCookie{
			Name:   "_pinterest_sess",
			Value:  cookie,
			Domain: ".pinterest.com",
			Path:   "/",
		}.Call(b.page)
		if err != nil {
			return errs.Wrap(errs.ErrorTypeBrowser, "failed to set session cookie", err)
		}
		b.log.Debug("Session cookie installed")
	}

	return nil
}

// Navigate loads the given URL and waits for the page to settle and for
// the first pin image to appear.
func (b *Browser) Navigate(ctx context.Context, url string) error {
	p := b.page.Context(ctx).Timeout(b.cfg.NavigationTimeout)

	if err := p.Navigate(url); err != nil {
		return errs.Wrap(errs.ErrorTypeNavigation, "failed to navigate to search page", err)
	}

	if err := p.WaitLoad(); err != nil {
		return errs.Wrap(errs.ErrorTypeNavigation, "page load did not complete", err)
	}

	// Results render asynchronously after the document loads. Missing
	// images here usually means an empty result set, which the capture
	// step reports, so failure to find one is not fatal.
	if _, err := b.page.Context(ctx).Timeout(b.cfg.SelectorTimeout).Element(PinImageSelector); err != nil {
		b.log.WithError(err).Warn("No pin images appeared within selector timeout")
	}

	return nil
}

// ScrollPage scrolls the results feed to trigger lazy loading. Each
// scroll moves one viewport height and is followed by a pause so new
// pins have time to render.
func (b *Browser) ScrollPage(ctx context.Context, count int, pause time.Duration) error {
	p := b.page.Context(ctx)

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := p.Eval(`() => window.scrollBy(0, window.innerHeight)`); err != nil {
			return errs.Wrap(errs.ErrorTypeNavigation, "scroll evaluation failed", err)
		}

		b.log.WithField("scroll", i+1).Debug("Scrolled results feed")

		select {
		case <-time.After(pause):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// PinImages returns up to max pin thumbnails found on the current page,
// in document order. Index is 1-based to match saved filenames.
func (b *Browser) PinImages(max int) ([]*PinImage, error) {
	elements, err := b.page.Elements(PinImageSelector)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeCapture, "failed to query pin images", err)
	}

	var pins []*PinImage
	for i, el := range elements {
		if max > 0 && len(pins) >= max {
			break
		}

		pin := &PinImage{Index: i + 1, element: el}
		if alt, err := el.Attribute("alt"); err == nil && alt != nil {
			pin.Alt = *alt
		}
		if src, err := el.Attribute("src"); err == nil && src != nil {
			pin.SourceURL = *src
		}
		pins = append(pins, pin)
	}

	return pins, nil
}

// HTML returns the rendered page HTML for metadata extraction.
func (b *Browser) HTML() (string, error) {
	html, err := b.page.HTML()
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeCapture, "failed to extract page HTML", err)
	}
	return html, nil
}

// Close shuts down the page and the browser process.
func (b *Browser) Close() {
	if b.page != nil {
		_ = b.page.Close()
	}
	if b.browser != nil {
		b.browser.MustClose()
	}
	b.log.Debug("Browser closed")
}

// PinImage is a single pin thumbnail located on the results page.
type PinImage struct {
	Index     int
	Alt       string
	SourceURL string
	element   *rod.Element
}

// Capture scrolls the element into view, waits for it to settle, then
// screenshots just that element as PNG.
func (p *PinImage) Capture(settle time.Duration) ([]byte, error) {
	if p.element == nil {
		return nil, errs.New(errs.ErrorTypeCapture, "pin has no backing element")
	}

	if err := p.element.ScrollIntoView(); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeCapture, "failed to scroll pin into view", err)
	}

	time.Sleep(settle)

	data, err := p.element.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeCapture, "failed to screenshot pin", err)
	}

	return data, nil
}
