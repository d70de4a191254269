package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pinscope/pkg/config"
	"pinscope/pkg/logger"
)

func testAnalyzeConfig(url string) config.AnalyzeConfig {
	cfg := config.DefaultConfig().Analyze
	cfg.OllamaURL = url
	cfg.CaptionTimeout = 5 * time.Second
	cfg.CaptionsPerSecond = 1000 // don't slow tests down
	return cfg
}

func writeTempImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.png")
	if err := os.WriteFile(path, []byte{0x89, 0x50, 0x4E, 0x47}, 0644); err != nil {
		t.Fatalf("Failed to write temp image: %v", err)
	}
	return path
}

func TestOllamaCaptionerCaption(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected /api/generate, got %s", r.URL.Path)
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Stream {
			t.Error("Expected stream to be disabled")
		}
		if req.Model != "llava" {
			t.Errorf("Expected model llava, got %s", req.Model)
		}
		if len(req.Images) != 1 || req.Images[0] == "" {
			t.Error("Expected one base64 image in request")
		}

		json.NewEncoder(w).Encode(generateResponse{
			Model:    req.Model,
			Response: "  a red car parked on a beach \n",
			Done:     true,
		})
	}))
	defer server.Close()

	captioner := NewOllamaCaptioner(testAnalyzeConfig(server.URL), logger.GetLogger())

	caption, err := captioner.Caption(context.Background(), writeTempImage(t))
	if err != nil {
		t.Fatalf("Caption failed: %v", err)
	}

	if caption != "a red car parked on a beach" {
		t.Errorf("Expected trimmed caption, got %q", caption)
	}
}

func TestOllamaCaptionerServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	captioner := NewOllamaCaptioner(testAnalyzeConfig(server.URL), logger.GetLogger())

	if _, err := captioner.Caption(context.Background(), writeTempImage(t)); err == nil {
		t.Error("Expected error on 500 response")
	}
}

func TestOllamaCaptionerMissingImage(t *testing.T) {
	captioner := NewOllamaCaptioner(testAnalyzeConfig("http://localhost:0"), logger.GetLogger())

	if _, err := captioner.Caption(context.Background(), "/does/not/exist.png"); err == nil {
		t.Error("Expected error for missing image file")
	}
}

func TestOllamaCaptionerHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	captioner := NewOllamaCaptioner(testAnalyzeConfig(server.URL), logger.GetLogger())
	if !captioner.Healthy(context.Background()) {
		t.Error("Expected healthy backend")
	}

	server.Close()
	if captioner.Healthy(context.Background()) {
		t.Error("Expected unhealthy after server shutdown")
	}
}
