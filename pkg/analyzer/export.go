package analyzer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	errs "pinscope/pkg/errors"
)

var exportHeaders = []string{
	"filename", "path", "extracted_text", "caption", "keywords", "keyword_count",
}

// Export writes results in the requested format. The output extension
// is replaced per format, so "results.json" with format "both" writes
// results.json and results.csv. It returns the written paths.
//
// Formats: json, csv, xlsx, both (json+csv), all (json+csv+xlsx).
func Export(results []Analysis, outputPath, format string) ([]string, error) {
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errs.Wrap(errs.ErrorTypeExport, "failed to create output directory", err)
		}
	}

	base := strings.TrimSuffix(outputPath, filepath.Ext(outputPath))

	var formats []string
	switch strings.ToLower(format) {
	case "json":
		formats = []string{"json"}
	case "csv":
		formats = []string{"csv"}
	case "xlsx":
		formats = []string{"xlsx"}
	case "both":
		formats = []string{"json", "csv"}
	case "all":
		formats = []string{"json", "csv", "xlsx"}
	default:
		return nil, errs.New(errs.ErrorTypeExport, fmt.Sprintf("unsupported export format: %s", format))
	}

	var written []string
	for _, f := range formats {
		path := base + "." + f
		var err error
		switch f {
		case "json":
			err = ExportJSON(results, path)
		case "csv":
			err = ExportCSV(results, path)
		case "xlsx":
			err = ExportXLSX(results, path)
		}
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}

// ExportJSON writes results as indented JSON
func ExportJSON(results []Analysis, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeExport, "failed to create JSON file", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(results); err != nil {
		return errs.Wrap(errs.ErrorTypeExport, "failed to encode JSON", err)
	}

	return nil
}

// ExportCSV writes results as a flattened CSV with one row per image
func ExportCSV(results []Analysis, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeExport, "failed to create CSV file", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportHeaders); err != nil {
		return errs.Wrap(errs.ErrorTypeExport, "failed to write CSV header", err)
	}

	for _, r := range results {
		record := []string{
			r.Filename,
			r.Path,
			r.ExtractedText,
			r.Caption,
			strings.Join(r.Keywords, ", "),
			strconv.Itoa(len(r.Keywords)),
		}
		if err := w.Write(record); err != nil {
			return errs.Wrap(errs.ErrorTypeExport, "failed to write CSV row", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errs.Wrap(errs.ErrorTypeExport, "failed to flush CSV", err)
	}

	return nil
}

// ExportXLSX writes results as an Excel workbook
func ExportXLSX(results []Analysis, path string) error {
	f := excelize.NewFile()
	const sheet = "Analysis"

	if _, err := f.NewSheet(sheet); err != nil {
		return errs.Wrap(errs.ErrorTypeExport, "failed to create sheet", err)
	}
	if index, err := f.GetSheetIndex(sheet); err == nil {
		f.SetActiveSheet(index)
	}
	_ = f.DeleteSheet("Sheet1")

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for row, r := range results {
		write := func(col int, v interface{}) {
			cell, _ := excelize.CoordinatesToCellName(col, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.Filename)
		write(2, r.Path)
		write(3, r.ExtractedText)
		write(4, r.Caption)
		write(5, strings.Join(r.Keywords, ", "))
		write(6, len(r.Keywords))
	}

	_ = f.SetColWidth(sheet, "A", "A", 36)
	_ = f.SetColWidth(sheet, "B", "B", 48)
	_ = f.SetColWidth(sheet, "C", "D", 40)
	_ = f.SetColWidth(sheet, "E", "E", 48)

	if err := f.SaveAs(path); err != nil {
		return errs.Wrap(errs.ErrorTypeExport, "failed to save workbook", err)
	}

	return nil
}
