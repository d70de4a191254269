package analyzer

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	// Registered so DecodeConfig can size every supported format
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"pinscope/pkg/config"
	"pinscope/pkg/logger"
	"pinscope/pkg/retry"
	"pinscope/pkg/ui"
)

// Analysis is the per-image result record
type Analysis struct {
	Filename      string   `json:"filename"`
	Path          string   `json:"path"`
	Width         int      `json:"width,omitempty"`
	Height        int      `json:"height,omitempty"`
	ExtractedText string   `json:"extracted_text"`
	Caption       string   `json:"caption"`
	Keywords      []string `json:"keywords"`
}

// Summary aggregates keyword statistics across a run
type Summary struct {
	TotalImages     int     `json:"total_images"`
	TotalKeywords   int     `json:"total_keywords"`
	UniqueKeywords  int     `json:"unique_keywords"`
	AverageKeywords float64 `json:"average_keywords"`
}

// Analyzer extracts keywords from a directory of images by combining
// OCR output with model-generated captions.
type Analyzer struct {
	config    config.AnalyzeConfig
	extractor TextExtractor
	captioner Captioner
	logger    logger.Logger

	captionsUp bool
}

// New creates an Analyzer with the given extractor and captioner
func New(cfg config.AnalyzeConfig, extractor TextExtractor, captioner Captioner, log logger.Logger) *Analyzer {
	return &Analyzer{
		config:    cfg,
		extractor: extractor,
		captioner: captioner,
		logger:    log,
	}
}

// AnalyzeDirectory analyzes every image directly inside inputDir that
// matches the configured extensions, in sorted filename order.
func (a *Analyzer) AnalyzeDirectory(ctx context.Context, inputDir string) ([]Analysis, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, fmt.Errorf("input directory does not exist: %s", inputDir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path is not a directory: %s", inputDir)
	}

	files, err := a.listImages(inputDir)
	if err != nil {
		return nil, err
	}

	a.logger.InfoWithFields("Found images to analyze", map[string]interface{}{
		"directory": inputDir,
		"count":     len(files),
	})
	ui.PrintInfo("Images found", fmt.Sprintf("%d", len(files)))

	if len(files) == 0 {
		return nil, nil
	}

	// One health probe per run. If the backend is down the whole run
	// degrades to OCR-only rather than timing out on every image.
	if a.config.CaptionEnabled && a.captioner != nil {
		a.captionsUp = a.captioner.Healthy(ctx)
		if !a.captionsUp {
			a.logger.Warn("Caption backend unreachable, continuing with OCR only")
			ui.PrintWarning("Caption backend unreachable, continuing with OCR only")
		}
	}

	results := make([]Analysis, 0, len(files))
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		ui.PrintProgress(i+1, len(files), filepath.Base(path))
		results = append(results, a.AnalyzeImage(ctx, path))
	}

	return results, nil
}

// AnalyzeImage analyzes a single image. Extraction failures degrade to
// empty fields rather than aborting the record.
func (a *Analyzer) AnalyzeImage(ctx context.Context, path string) Analysis {
	result := Analysis{
		Filename: filepath.Base(path),
		Path:     path,
		Keywords: []string{},
	}

	if w, h, err := imageDimensions(path); err == nil {
		result.Width = w
		result.Height = h
	} else {
		a.logger.WithError(err).WithField("path", path).Debug("Could not read image dimensions")
	}

	text, err := a.extractor.ExtractText(path)
	if err != nil {
		a.logger.WithError(err).WithField("path", path).Error("OCR failed")
	} else {
		result.ExtractedText = text
	}

	if a.config.CaptionEnabled && a.captionsUp {
		caption, err := a.captionWithRetry(ctx, path)
		if err != nil {
			a.logger.WithError(err).WithField("path", path).Error("Captioning failed")
		} else {
			result.Caption = caption
		}
	}

	result.Keywords = MergeKeywords(
		ExtractKeywords(result.ExtractedText),
		ExtractKeywords(result.Caption),
	)

	a.logger.DebugWithFields("Image analyzed", map[string]interface{}{
		"filename": result.Filename,
		"keywords": len(result.Keywords),
	})

	return result
}

// captionWithRetry retries transient caption failures with backoff
func (a *Analyzer) captionWithRetry(ctx context.Context, path string) (string, error) {
	return retry.DoWithResult(func() (string, error) {
		return a.captioner.Caption(ctx, path)
	}, &retry.Config{
		MaxAttempts: 3,
		Backoff: &retry.ConstantBackoff{
			Delay: a.config.CaptionTimeout / 10,
		},
		Context: ctx,
		Logger:  a.logger,
	})
}

// listImages returns sorted paths of matching images in dir, without
// recursing into subdirectories.
func (a *Analyzer) listImages(dir string) ([]string, error) {
	allowed := make(map[string]bool, len(a.config.Extensions))
	for _, ext := range a.config.Extensions {
		allowed[strings.ToLower(ext)] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if allowed[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	return files, nil
}

// Summarize computes aggregate keyword statistics
func Summarize(results []Analysis) Summary {
	summary := Summary{TotalImages: len(results)}
	if len(results) == 0 {
		return summary
	}

	unique := make(map[string]struct{})
	for _, r := range results {
		summary.TotalKeywords += len(r.Keywords)
		for _, k := range r.Keywords {
			unique[k] = struct{}{}
		}
	}
	summary.UniqueKeywords = len(unique)
	summary.AverageKeywords = float64(summary.TotalKeywords) / float64(len(results))

	return summary
}

// imageDimensions reads just enough of the file to get its size
func imageDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}

	return cfg.Width, cfg.Height, nil
}
