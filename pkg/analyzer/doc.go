// Package analyzer extracts keywords from a directory of images. Each
// image gets two text sources: Tesseract OCR for visible text and a
// vision model caption. Words from both are normalized, filtered
// against a stop word list, deduplicated and sorted, then exported as
// JSON, CSV or XLSX.
package analyzer
