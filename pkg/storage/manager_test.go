package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestNewManagerCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "screenshots")

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Expected output directory to exist: %v", err)
	}
	if m.OutputDir() != dir {
		t.Errorf("Expected output dir %s, got %s", dir, m.OutputDir())
	}
}

func TestScanExistingFiles(t *testing.T) {
	dir := t.TempDir()

	existing := []string{"nature_20260101_120000_1.png", "nature_20260101_120000_2.jpg", "notes.txt"}
	for _, name := range existing {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to seed file: %v", err)
		}
	}

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if !m.Exists("nature_20260101_120000_1.png") {
		t.Error("Expected scanned PNG to be known")
	}
	if !m.Exists("nature_20260101_120000_2.jpg") {
		t.Error("Expected scanned JPG to be known")
	}
	if m.SavedCount() != 2 {
		t.Errorf("Expected 2 known images (txt ignored), got %d", m.SavedCount())
	}
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	data := []byte("fake png bytes")
	path, err := m.SaveImage(data, "mountains_20260823_090000_1.png")
	if err != nil {
		t.Fatalf("Failed to save image: %v", err)
	}

	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read saved image: %v", err)
	}
	if string(saved) != string(data) {
		t.Error("Saved bytes do not match input")
	}

	if !m.Exists("mountains_20260823_090000_1.png") {
		t.Error("Expected saved image to be tracked")
	}

	// No temp file left behind
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Expected temporary file to be cleaned up")
	}
}

func TestExistsChecksFilesystem(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	// File created after the startup scan
	name := "late_arrival.png"
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if !m.Exists(name) {
		t.Error("Expected Exists to find file created after the scan")
	}
	if m.Exists("never_saved.png") {
		t.Error("Expected Exists to be false for unknown file")
	}
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	record := map[string]string{"alt": "a mountain lake", "src": "https://i.pinimg.com/x.jpg"}
	path, err := m.WriteJSON("pins.json", []map[string]string{record})
	if err != nil {
		t.Fatalf("Failed to write JSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read JSON: %v", err)
	}

	var decoded []map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["alt"] != "a mountain lake" {
		t.Errorf("Unexpected decoded content: %v", decoded)
	}
}
