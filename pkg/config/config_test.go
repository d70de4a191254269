package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)

	// Pinterest defaults
	assert.Equal(t, "https://www.pinterest.com", cfg.Pinterest.BaseURL)
	assert.NotEmpty(t, cfg.Pinterest.UserAgent)
	assert.Empty(t, cfg.Pinterest.SessionCookie)

	// Browser defaults
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 1920, cfg.Browser.ViewportWidth)
	assert.Equal(t, 1080, cfg.Browser.ViewportHeight)
	assert.Equal(t, 30*time.Second, cfg.Browser.NavigationTimeout)

	// Scrape defaults
	assert.Equal(t, 10, cfg.Scrape.MaxImages)
	assert.Equal(t, 3, cfg.Scrape.ScrollCount)
	assert.Equal(t, 2*time.Second, cfg.Scrape.CaptureDelay)

	// Output defaults
	assert.Equal(t, "./pinterest_images", cfg.Output.BaseDirectory)
	assert.False(t, cfg.Output.OverwriteExisting)
	assert.True(t, cfg.Output.MetadataSidecar)

	// Analyze defaults
	assert.Equal(t, "llava", cfg.Analyze.OllamaModel)
	assert.Equal(t, "http://localhost:11434", cfg.Analyze.OllamaURL)
	assert.Equal(t, []string{"eng"}, cfg.Analyze.OCRLanguages)
	assert.Equal(t, "json", cfg.Analyze.Format)

	// Logging defaults
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Logging.File)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PINSCOPE_SESSION_COOKIE", "test-cookie")
	t.Setenv("PINSCOPE_OUTPUT_DIR", "/tmp/test-images")
	t.Setenv("PINSCOPE_CAPTURE_DELAY", "5s")
	t.Setenv("PINSCOPE_SCROLL_COUNT", "7")
	t.Setenv("PINSCOPE_MAX_IMAGES", "25")
	t.Setenv("PINSCOPE_HEADLESS", "false")
	t.Setenv("PINSCOPE_OLLAMA_MODEL", "llava:13b")
	t.Setenv("PINSCOPE_OCR_LANGUAGES", "eng,deu")
	t.Setenv("PINSCOPE_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "test-cookie", cfg.Pinterest.SessionCookie)
	assert.Equal(t, "/tmp/test-images", cfg.Output.BaseDirectory)
	assert.Equal(t, 5*time.Second, cfg.Scrape.CaptureDelay)
	assert.Equal(t, 7, cfg.Scrape.ScrollCount)
	assert.Equal(t, 25, cfg.Scrape.MaxImages)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "llava:13b", cfg.Analyze.OllamaModel)
	assert.Equal(t, []string{"eng", "deu"}, cfg.Analyze.OCRLanguages)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{
			name:      "valid defaults",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "missing output directory",
			mutate:    func(c *Config) { c.Output.BaseDirectory = "" },
			wantError: true,
		},
		{
			name:      "zero max images",
			mutate:    func(c *Config) { c.Scrape.MaxImages = 0 },
			wantError: true,
		},
		{
			name:      "negative scroll count",
			mutate:    func(c *Config) { c.Scrape.ScrollCount = -1 },
			wantError: true,
		},
		{
			name:      "invalid viewport",
			mutate:    func(c *Config) { c.Browser.ViewportWidth = 0 },
			wantError: true,
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.Logging.Level = "verbose" },
			wantError: true,
		},
		{
			name:      "invalid export format",
			mutate:    func(c *Config) { c.Analyze.Format = "parquet" },
			wantError: true,
		},
		{
			name: "captions enabled without URL",
			mutate: func(c *Config) {
				c.Analyze.CaptionEnabled = true
				c.Analyze.OllamaURL = ""
			},
			wantError: true,
		},
		{
			name: "captions disabled without URL",
			mutate: func(c *Config) {
				c.Analyze.CaptionEnabled = false
				c.Analyze.OllamaURL = ""
			},
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
scrape:
  max_images: 42
  scroll_count: 5
output:
  base_directory: /data/pins
analyze:
  ollama_model: llava:34b
  format: csv
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, 42, cfg.Scrape.MaxImages)
	assert.Equal(t, 5, cfg.Scrape.ScrollCount)
	assert.Equal(t, "/data/pins", cfg.Output.BaseDirectory)
	assert.Equal(t, "llava:34b", cfg.Analyze.OllamaModel)
	assert.Equal(t, "csv", cfg.Analyze.Format)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Defaults untouched by the file should survive
	assert.Equal(t, 2*time.Second, cfg.Scrape.CaptureDelay)
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Scrape.MaxImages = 99
	cfg.Analyze.Format = "all"

	require.NoError(t, cfg.Save(path))

	reloaded := DefaultConfig()
	require.NoError(t, reloaded.LoadFromFile(path))

	assert.Equal(t, 99, reloaded.Scrape.MaxImages)
	assert.Equal(t, "all", reloaded.Analyze.Format)
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()

	flags := map[string]interface{}{
		"output":        "/tmp/flagged",
		"count":         15,
		"scroll-count":  6,
		"capture-delay": 3 * time.Second,
		"headless":      false,
		"format":        "xlsx",
		"caption":       false,
	}

	cfg.MergeCommandLineFlags(flags)

	assert.Equal(t, "/tmp/flagged", cfg.Output.BaseDirectory)
	assert.Equal(t, 15, cfg.Scrape.MaxImages)
	assert.Equal(t, 6, cfg.Scrape.ScrollCount)
	assert.Equal(t, 3*time.Second, cfg.Scrape.CaptureDelay)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "xlsx", cfg.Analyze.Format)
	assert.False(t, cfg.Analyze.CaptionEnabled)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scrape:\n  max_images: 20\n"), 0644))

	t.Setenv("PINSCOPE_MAX_IMAGES", "30")

	// Flags beat env, env beats file
	cfg, err := Load(path, map[string]interface{}{"count": 40})
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Scrape.MaxImages)

	cfg, err = Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Scrape.MaxImages)
}
