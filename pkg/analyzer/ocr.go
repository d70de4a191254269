package analyzer

import (
	"strings"

	"github.com/otiai10/gosseract/v2"

	errs "pinscope/pkg/errors"
)

// TextExtractor extracts visible text from an image file
type TextExtractor interface {
	ExtractText(path string) (string, error)
	Close() error
}

// TesseractExtractor implements TextExtractor using the Tesseract engine
type TesseractExtractor struct {
	client *gosseract.Client
}

// NewTesseractExtractor creates an OCR extractor for the given languages
func NewTesseractExtractor(languages []string) (*TesseractExtractor, error) {
	client := gosseract.NewClient()

	if len(languages) > 0 {
		if err := client.SetLanguage(languages...); err != nil {
			_ = client.Close()
			return nil, errs.Wrap(errs.ErrorTypeOCR, "failed to set OCR languages", err)
		}
	}

	return &TesseractExtractor{client: client}, nil
}

// ExtractText runs OCR against an image file and returns trimmed text
func (t *TesseractExtractor) ExtractText(path string) (string, error) {
	if err := t.client.SetImage(path); err != nil {
		return "", errs.Wrap(errs.ErrorTypeOCR, "failed to load image for OCR", err)
	}

	text, err := t.client.Text()
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeOCR, "text recognition failed", err)
	}

	return strings.TrimSpace(text), nil
}

// Close releases the Tesseract client
func (t *TesseractExtractor) Close() error {
	return t.client.Close()
}
