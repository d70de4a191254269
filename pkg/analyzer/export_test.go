package analyzer

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func sampleResults() []Analysis {
	return []Analysis{
		{
			Filename:      "cats_20250101_120000_1.png",
			Path:          "/tmp/images/cats_20250101_120000_1.png",
			Width:         236,
			Height:        410,
			ExtractedText: "ADOPT DON'T SHOP",
			Caption:       "a cat sitting on a windowsill",
			Keywords:      []string{"adopt", "cat", "shop", "sitting", "windowsill"},
		},
		{
			Filename: "cats_20250101_120000_2.png",
			Path:     "/tmp/images/cats_20250101_120000_2.png",
			Keywords: []string{},
		},
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")

	if err := ExportJSON(sampleResults(), path); err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}

	var decoded []Analysis
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if len(decoded) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(decoded))
	}
	if decoded[0].Caption != "a cat sitting on a windowsill" {
		t.Errorf("Expected caption preserved, got %q", decoded[0].Caption)
	}
	if len(decoded[0].Keywords) != 5 {
		t.Errorf("Expected 5 keywords, got %d", len(decoded[0].Keywords))
	}
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")

	if err := ExportCSV(sampleResults(), path); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open output: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(records))
	}
	if records[0][5] != "keyword_count" {
		t.Errorf("Expected keyword_count header, got %s", records[0][5])
	}
	if records[1][4] != "adopt, cat, shop, sitting, windowsill" {
		t.Errorf("Expected joined keywords, got %s", records[1][4])
	}
	if records[1][5] != "5" {
		t.Errorf("Expected keyword count 5, got %s", records[1][5])
	}
	if records[2][5] != "0" {
		t.Errorf("Expected keyword count 0, got %s", records[2][5])
	}
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")

	if err := ExportXLSX(sampleResults(), path); err != nil {
		t.Fatalf("ExportXLSX failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Expected workbook file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("Expected non-empty workbook")
	}
}

func TestExportFormatDispatch(t *testing.T) {
	tests := []struct {
		format   string
		expected []string
	}{
		{"json", []string{"results.json"}},
		{"csv", []string{"results.csv"}},
		{"both", []string{"results.json", "results.csv"}},
		{"all", []string{"results.json", "results.csv", "results.xlsx"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dir := t.TempDir()
			out := filepath.Join(dir, "results.json")

			written, err := Export(sampleResults(), out, tt.format)
			if err != nil {
				t.Fatalf("Export failed: %v", err)
			}

			if len(written) != len(tt.expected) {
				t.Fatalf("Expected %d files, got %d", len(tt.expected), len(written))
			}
			for i, name := range tt.expected {
				if filepath.Base(written[i]) != name {
					t.Errorf("Expected %s, got %s", name, filepath.Base(written[i]))
				}
				if _, err := os.Stat(written[i]); err != nil {
					t.Errorf("Expected file %s on disk: %v", name, err)
				}
			}
		})
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	if _, err := Export(sampleResults(), filepath.Join(t.TempDir(), "r.json"), "yaml"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}
