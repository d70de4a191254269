package analyzer

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"pinscope/pkg/config"
	"pinscope/pkg/logger"
	"pinscope/pkg/ui"
)

func init() {
	ui.SetQuiet(true)
}

type stubExtractor struct {
	texts map[string]string
	err   error
}

func (s *stubExtractor) ExtractText(path string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.texts[filepath.Base(path)], nil
}

func (s *stubExtractor) Close() error { return nil }

type stubCaptioner struct {
	captions map[string]string
	err      error
	healthy  bool
	calls    int
}

func (s *stubCaptioner) Caption(ctx context.Context, imagePath string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.captions[filepath.Base(imagePath)], nil
}

func (s *stubCaptioner) Healthy(ctx context.Context) bool { return s.healthy }

// writePNG writes a real encoded PNG so dimension probing works
func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", name, err)
	}
	defer f.Close()

	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return path
}

func newTestAnalyzer(extractor TextExtractor, captioner Captioner) *Analyzer {
	cfg := config.DefaultConfig().Analyze
	return New(cfg, extractor, captioner, logger.GetLogger())
}

func TestAnalyzeDirectory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "first.png", 320, 240)
	writePNG(t, dir, "second.png", 100, 100)

	// Non-image files are ignored
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0644); err != nil {
		t.Fatal(err)
	}

	extractor := &stubExtractor{texts: map[string]string{
		"first.png":  "SUMMER SALE beach umbrellas",
		"second.png": "",
	}}
	captioner := &stubCaptioner{
		healthy: true,
		captions: map[string]string{
			"first.png":  "a beach with umbrellas",
			"second.png": "a mountain cabin in the snow",
		},
	}

	a := newTestAnalyzer(extractor, captioner)

	results, err := a.AnalyzeDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("AnalyzeDirectory failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	first := results[0]
	if first.Filename != "first.png" {
		t.Errorf("Expected sorted order with first.png first, got %s", first.Filename)
	}
	if first.Width != 320 || first.Height != 240 {
		t.Errorf("Expected 320x240, got %dx%d", first.Width, first.Height)
	}

	// Keywords merge OCR and caption text, sorted and deduplicated
	expected := []string{"beach", "sale", "summer", "umbrellas"}
	if !reflect.DeepEqual(first.Keywords, expected) {
		t.Errorf("Expected keywords %v, got %v", expected, first.Keywords)
	}

	second := results[1]
	if second.ExtractedText != "" {
		t.Errorf("Expected empty OCR text, got %q", second.ExtractedText)
	}
	if second.Caption != "a mountain cabin in the snow" {
		t.Errorf("Expected caption, got %q", second.Caption)
	}
	expected = []string{"cabin", "mountain", "snow"}
	if !reflect.DeepEqual(second.Keywords, expected) {
		t.Errorf("Expected keywords %v, got %v", expected, second.Keywords)
	}
}

func TestAnalyzeDirectoryMissingInput(t *testing.T) {
	a := newTestAnalyzer(&stubExtractor{}, &stubCaptioner{})

	if _, err := a.AnalyzeDirectory(context.Background(), "/does/not/exist"); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestAnalyzeDirectoryEmpty(t *testing.T) {
	a := newTestAnalyzer(&stubExtractor{}, &stubCaptioner{})

	results, err := a.AnalyzeDirectory(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("AnalyzeDirectory failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestAnalyzeDegradesWithoutCaptionBackend(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "only.png", 10, 10)

	extractor := &stubExtractor{texts: map[string]string{"only.png": "vintage posters"}}
	captioner := &stubCaptioner{healthy: false, captions: map[string]string{"only.png": "unused"}}

	a := newTestAnalyzer(extractor, captioner)

	results, err := a.AnalyzeDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("AnalyzeDirectory failed: %v", err)
	}

	if captioner.calls != 0 {
		t.Errorf("Expected no caption calls when backend is down, got %d", captioner.calls)
	}
	if results[0].Caption != "" {
		t.Errorf("Expected empty caption, got %q", results[0].Caption)
	}

	expected := []string{"posters", "vintage"}
	if !reflect.DeepEqual(results[0].Keywords, expected) {
		t.Errorf("Expected OCR-only keywords %v, got %v", expected, results[0].Keywords)
	}
}

func TestAnalyzeImageOCRFailure(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "broken.png", 5, 5)

	extractor := &stubExtractor{err: errors.New("tesseract crashed")}
	captioner := &stubCaptioner{healthy: true, captions: map[string]string{"broken.png": "a blurry photo"}}

	a := newTestAnalyzer(extractor, captioner)
	a.captionsUp = true

	result := a.AnalyzeImage(context.Background(), path)

	if result.ExtractedText != "" {
		t.Errorf("Expected empty text after OCR failure, got %q", result.ExtractedText)
	}
	expected := []string{"blurry", "photo"}
	if !reflect.DeepEqual(result.Keywords, expected) {
		t.Errorf("Expected caption keywords %v, got %v", expected, result.Keywords)
	}
}
