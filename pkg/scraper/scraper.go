package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pinscope/pkg/checkpoint"
	"pinscope/pkg/config"
	"pinscope/pkg/logger"
	"pinscope/pkg/pinterest"
	"pinscope/pkg/ratelimit"
	"pinscope/pkg/retry"
	"pinscope/pkg/storage"
	"pinscope/pkg/ui"
)

// Browser abstracts the headless browser so the capture flow can be
// tested without Chromium.
type Browser interface {
	SetSession(cookie, userAgent string) error
	Navigate(ctx context.Context, url string) error
	ScrollPage(ctx context.Context, count int, pause time.Duration) error
	Pins(max int) ([]Pin, error)
	HTML() (string, error)
	Close()
}

// Pin is a located pin thumbnail that can be screenshotted.
type Pin interface {
	Meta() pinterest.Pin
	Capture(settle time.Duration) ([]byte, error)
}

// Scraper orchestrates the Pinterest screenshot capture process
type Scraper struct {
	config        *config.Config
	logger        logger.Logger
	pacer         ratelimit.Limiter
	checkpointMgr *checkpoint.Manager
	storage       *storage.Manager

	// factories, swapped out in tests
	newBrowser    func() (Browser, error)
	newCheckpoint func(slug string) (*checkpoint.Manager, error)
}

// Result summarizes a completed scrape run
type Result struct {
	Keywords  string        `json:"keywords"`
	Slug      string        `json:"slug"`
	Requested int           `json:"requested"`
	Captured  int           `json:"captured"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	OutputDir string        `json:"output_dir"`
	Files     []string      `json:"files"`
	Elapsed   time.Duration `json:"elapsed"`
}

// New creates a new Scraper instance
func New(cfg *config.Config) (*Scraper, error) {
	log := logger.GetLogger()

	s := &Scraper{
		config: cfg,
		logger: log,
		pacer:  ratelimit.NewFixedDelay(cfg.Scrape.CaptureDelay),
	}
	s.newBrowser = func() (Browser, error) {
		b, err := pinterest.NewBrowser(cfg.Browser, log)
		if err != nil {
			return nil, err
		}
		return &rodBrowser{b}, nil
	}
	s.newCheckpoint = checkpoint.NewManager

	return s, nil
}

// Run captures screenshots for a keyword search without resume support
func (s *Scraper) Run(ctx context.Context, keywords string) (*Result, error) {
	return s.runWithOptions(ctx, keywords, false, false)
}

// RunWithResume captures screenshots with checkpoint support
func (s *Scraper) RunWithResume(ctx context.Context, keywords string, resume, forceRestart bool) (*Result, error) {
	return s.runWithOptions(ctx, keywords, resume, forceRestart)
}

func (s *Scraper) runWithOptions(ctx context.Context, keywords string, resume, forceRestart bool) (*Result, error) {
	slug := pinterest.Slug(keywords)
	start := time.Now()

	ui.PrintHighlight("\n[INITIATING CAPTURE SEQUENCE]\n")

	checkpointMgr, err := s.newCheckpoint(slug)
	if err != nil {
		s.logger.WithError(err).WithField("keywords", keywords).Error("Failed to create checkpoint manager")
		return nil, fmt.Errorf("failed to create checkpoint manager: %w", err)
	}
	s.checkpointMgr = checkpointMgr

	cp, err := s.resolveCheckpoint(keywords, slug, resume, forceRestart)
	if err != nil {
		return nil, err
	}

	s.logger.InfoWithFields("Starting capture run", map[string]interface{}{
		"keywords": keywords,
		"slug":     slug,
		"resume":   resume && cp.TotalCaptured > 0,
	})

	storageManager, err := storage.NewManager(s.config.Output.BaseDirectory)
	if err != nil {
		s.logger.WithError(err).Error("Failed to create storage manager")
		return nil, fmt.Errorf("failed to create storage manager: %w", err)
	}
	s.storage = storageManager

	browser, err := s.newBrowser()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer browser.Close()

	if err := browser.SetSession(s.config.Pinterest.SessionCookie, s.config.Pinterest.UserAgent); err != nil {
		s.logger.WithError(err).Warn("Failed to install session, continuing logged out")
	}

	searchURL := pinterest.SearchURL(keywords)
	ui.PrintInfo("Search", searchURL)

	// Navigation is the flaky part of the run, so it gets the retry
	// treatment. Capture failures later are per-pin and never retried.
	err = retry.Do(func() error {
		return browser.Navigate(ctx, searchURL)
	}, &retry.Config{
		MaxAttempts: s.config.Retry.MaxAttempts,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:    s.config.Retry.BaseDelay,
			MaxDelay:     s.config.Retry.MaxDelay,
			Multiplier:   s.config.Retry.BackoffMultiplier,
			JitterFactor: 0.1,
		},
		Context: ctx,
		Logger:  s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open search results: %w", err)
	}

	if err := browser.ScrollPage(ctx, s.config.Scrape.ScrollCount, s.config.Scrape.ScrollPause); err != nil {
		return nil, fmt.Errorf("failed to scroll results: %w", err)
	}

	pins, err := browser.Pins(s.config.Scrape.MaxImages)
	if err != nil {
		return nil, fmt.Errorf("failed to locate pins: %w", err)
	}
	if len(pins) == 0 {
		ui.PrintWarning("No pin images found for this search")
	}

	result := s.captureAll(ctx, pins, keywords, slug, cp)

	if s.config.Output.MetadataSidecar && len(pins) > 0 {
		s.writeSidecar(browser, result)
	}

	// A finished run invalidates its checkpoint
	if s.checkpointMgr.Exists() {
		if err := s.checkpointMgr.Delete(); err != nil {
			s.logger.WithError(err).Warn("Failed to delete checkpoint")
		}
	}

	result.Elapsed = time.Since(start).Round(time.Millisecond)

	s.logger.InfoWithFields("Capture run completed", map[string]interface{}{
		"keywords": keywords,
		"captured": result.Captured,
		"skipped":  result.Skipped,
		"failed":   result.Failed,
		"elapsed":  result.Elapsed.String(),
	})

	ui.PrintSuccess(fmt.Sprintf("\n[CAPTURE COMPLETE] %d saved, %d skipped, %d failed in %s\n",
		result.Captured, result.Skipped, result.Failed, result.Elapsed))

	return result, nil
}

// resolveCheckpoint applies the resume / force-restart rules and returns
// the checkpoint to run against.
func (s *Scraper) resolveCheckpoint(keywords, slug string, resume, forceRestart bool) (*checkpoint.Checkpoint, error) {
	if forceRestart && s.checkpointMgr.Exists() {
		if err := s.checkpointMgr.Delete(); err != nil {
			s.logger.WithError(err).Warn("Failed to delete existing checkpoint")
		}
		ui.PrintInfo("Force restart", "Ignoring existing checkpoint")
	} else if resume && s.checkpointMgr.Exists() {
		cp, err := s.checkpointMgr.Load()
		if err != nil {
			s.logger.WithError(err).Error("Failed to load checkpoint")
			return nil, fmt.Errorf("failed to load checkpoint: %w", err)
		}
		if cp != nil {
			ui.PrintInfo("Resuming from checkpoint", fmt.Sprintf("Captured: %d images", cp.TotalCaptured))
			s.logger.InfoWithFields("Resuming from checkpoint", map[string]interface{}{
				"keywords":       keywords,
				"total_captured": cp.TotalCaptured,
			})
			return cp, nil
		}
	} else if s.checkpointMgr.Exists() && !resume {
		info, _ := s.checkpointMgr.Info()
		if info != nil {
			fmt.Printf("\n%s Previous capture found (%d images)\n", ui.Yellow("►"), info["total_captured"])
			fmt.Printf("  Use: %s to continue where you left off\n", ui.Green("--resume"))
			fmt.Printf("  Use: %s to start fresh\n\n", ui.Yellow("--force-restart"))
			return nil, fmt.Errorf("checkpoint exists - use --resume to continue or --force-restart to start fresh")
		}
	}

	cp, err := s.checkpointMgr.Create(keywords, slug)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to create checkpoint, continuing without one")
		cp = &checkpoint.Checkpoint{
			Keywords:       keywords,
			Slug:           slug,
			CapturedImages: make(map[int]string),
		}
	}
	return cp, nil
}

// captureAll walks the located pins and screenshots each one, pacing
// captures with the fixed delay limiter.
func (s *Scraper) captureAll(ctx context.Context, pins []Pin, keywords, slug string, cp *checkpoint.Checkpoint) *Result {
	result := &Result{
		Keywords:  keywords,
		Slug:      slug,
		Requested: s.config.Scrape.MaxImages,
		OutputDir: s.storage.OutputDir(),
	}

	timestamp := time.Now().Format("20060102_150405")

	for _, pin := range pins {
		if ctx.Err() != nil {
			s.logger.Warn("Capture run cancelled")
			break
		}

		meta := pin.Meta()
		filename := fmt.Sprintf("%s_%s_%d.png", slug, timestamp, meta.Index)

		if cp.IsCaptured(meta.Index) {
			s.logger.WithField("index", meta.Index).Debug("Skipping pin captured in previous run")
			result.Skipped++
			continue
		}

		if s.storage.Exists(filename) && !s.config.Output.OverwriteExisting {
			s.logger.WithField("filename", filename).Debug("Skipping existing file")
			result.Skipped++
			continue
		}

		s.pacer.Wait()

		data, err := pin.Capture(s.config.Scrape.SettleDelay)
		if err != nil {
			s.logger.WithError(err).WithField("index", meta.Index).Error("Failed to capture pin")
			ui.PrintError(fmt.Sprintf("Failed to capture pin %d", meta.Index), err)
			result.Failed++
			continue
		}

		path, err := s.storage.SaveImage(data, filename)
		if err != nil {
			s.logger.WithError(err).WithField("filename", filename).Error("Failed to save screenshot")
			result.Failed++
			continue
		}

		if err := s.checkpointMgr.RecordCapture(cp, meta.Index, filename); err != nil {
			s.logger.WithError(err).Warn("Failed to record capture in checkpoint")
		}

		result.Captured++
		result.Files = append(result.Files, filename)
		ui.PrintProgress(result.Captured, len(pins), fmt.Sprintf("captured %s", filename))

		s.logger.DebugWithFields("Screenshot saved", map[string]interface{}{
			"index": meta.Index,
			"path":  path,
			"bytes": len(data),
		})
	}

	return result
}

// writeSidecar stores pin metadata from the rendered page alongside the
// screenshots.
func (s *Scraper) writeSidecar(browser Browser, result *Result) {
	html, err := browser.HTML()
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read page HTML for metadata sidecar")
		return
	}

	pins, err := pinterest.ExtractPins(html, s.config.Scrape.MaxImages)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to parse pin metadata")
		return
	}

	// Attach filenames for the pins we actually captured. Saved names
	// always end in the 1-based pin index.
	for i := range pins {
		suffix := fmt.Sprintf("_%d.png", pins[i].Index)
		for _, f := range result.Files {
			if strings.HasSuffix(f, suffix) {
				pins[i].Filename = f
				break
			}
		}
	}

	if _, err := s.storage.WriteJSON("pins.json", pins); err != nil {
		s.logger.WithError(err).Warn("Failed to write metadata sidecar")
		return
	}

	s.logger.Info("Pin metadata written to pins.json")
}
