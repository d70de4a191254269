package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for pinscope
type Config struct {
	// Pinterest session settings
	Pinterest PinterestConfig `yaml:"pinterest" json:"pinterest"`

	// Browser automation settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Scrape behaviour
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Retry configuration
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Image analysis settings
	Analyze AnalyzeConfig `yaml:"analyze" json:"analyze"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// PinterestConfig holds Pinterest-specific configuration
type PinterestConfig struct {
	BaseURL       string `yaml:"base_url" json:"base_url"`
	SessionCookie string `yaml:"session_cookie" json:"session_cookie"`
	UserAgent     string `yaml:"user_agent" json:"user_agent"`
}

// BrowserConfig holds headless browser configuration
type BrowserConfig struct {
	Headless          bool          `yaml:"headless" json:"headless"`
	NoSandbox         bool          `yaml:"no_sandbox" json:"no_sandbox"`
	Bin               string        `yaml:"bin" json:"bin"`
	ViewportWidth     int           `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight    int           `yaml:"viewport_height" json:"viewport_height"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
	SelectorTimeout   time.Duration `yaml:"selector_timeout" json:"selector_timeout"`
}

// ScrapeConfig holds scrape-specific configuration
type ScrapeConfig struct {
	MaxImages    int           `yaml:"max_images" json:"max_images"`
	ScrollCount  int           `yaml:"scroll_count" json:"scroll_count"`
	ScrollPause  time.Duration `yaml:"scroll_pause" json:"scroll_pause"`
	CaptureDelay time.Duration `yaml:"capture_delay" json:"capture_delay"`
	SettleDelay  time.Duration `yaml:"settle_delay" json:"settle_delay"`
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxAttempts       int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay         time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay          time.Duration `yaml:"max_delay" json:"max_delay"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier" json:"backoff_multiplier"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory     string `yaml:"base_directory" json:"base_directory"`
	OverwriteExisting bool   `yaml:"overwrite_existing" json:"overwrite_existing"`
	MetadataSidecar   bool   `yaml:"metadata_sidecar" json:"metadata_sidecar"`
}

// AnalyzeConfig holds image analysis configuration
type AnalyzeConfig struct {
	Extensions        []string      `yaml:"extensions" json:"extensions"`
	OCRLanguages      []string      `yaml:"ocr_languages" json:"ocr_languages"`
	CaptionEnabled    bool          `yaml:"caption_enabled" json:"caption_enabled"`
	OllamaURL         string        `yaml:"ollama_url" json:"ollama_url"`
	OllamaModel       string        `yaml:"ollama_model" json:"ollama_model"`
	CaptionTimeout    time.Duration `yaml:"caption_timeout" json:"caption_timeout"`
	CaptionsPerSecond float64       `yaml:"captions_per_second" json:"captions_per_second"`
	Format            string        `yaml:"format" json:"format"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Pinterest: PinterestConfig{
			BaseURL:   "https://www.pinterest.com",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		},
		Browser: BrowserConfig{
			Headless:          true,
			NoSandbox:         false,
			ViewportWidth:     1920,
			ViewportHeight:    1080,
			NavigationTimeout: 30 * time.Second,
			SelectorTimeout:   10 * time.Second,
		},
		Scrape: ScrapeConfig{
			MaxImages:    10,
			ScrollCount:  3,
			ScrollPause:  time.Second,
			CaptureDelay: 2 * time.Second,
			SettleDelay:  500 * time.Millisecond,
		},
		Retry: RetryConfig{
			MaxAttempts:       3,
			BaseDelay:         time.Second,
			MaxDelay:          30 * time.Second,
			BackoffMultiplier: 2.0,
		},
		Output: OutputConfig{
			BaseDirectory:     "./pinterest_images",
			OverwriteExisting: false,
			MetadataSidecar:   true,
		},
		Analyze: AnalyzeConfig{
			Extensions:        []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".webp"},
			OCRLanguages:      []string{"eng"},
			CaptionEnabled:    true,
			OllamaURL:         "http://localhost:11434",
			OllamaModel:       "llava",
			CaptionTimeout:    60 * time.Second,
			CaptionsPerSecond: 1.0,
			Format:            "json",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if cookie := os.Getenv("PINSCOPE_SESSION_COOKIE"); cookie != "" {
		c.Pinterest.SessionCookie = cookie
	}
	if userAgent := os.Getenv("PINSCOPE_USER_AGENT"); userAgent != "" {
		c.Pinterest.UserAgent = userAgent
	}
	if headless := os.Getenv("PINSCOPE_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) == "true"
	}
	if bin := os.Getenv("PINSCOPE_BROWSER_BIN"); bin != "" {
		c.Browser.Bin = bin
	}
	if outputDir := os.Getenv("PINSCOPE_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if delay := os.Getenv("PINSCOPE_CAPTURE_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil && d > 0 {
			c.Scrape.CaptureDelay = d
		}
	}
	if scrolls := os.Getenv("PINSCOPE_SCROLL_COUNT"); scrolls != "" {
		var val int
		fmt.Sscanf(scrolls, "%d", &val)
		if val > 0 {
			c.Scrape.ScrollCount = val
		}
	}
	if maxImages := os.Getenv("PINSCOPE_MAX_IMAGES"); maxImages != "" {
		var val int
		fmt.Sscanf(maxImages, "%d", &val)
		if val > 0 {
			c.Scrape.MaxImages = val
		}
	}
	if ollamaURL := os.Getenv("PINSCOPE_OLLAMA_URL"); ollamaURL != "" {
		c.Analyze.OllamaURL = ollamaURL
	}
	if model := os.Getenv("PINSCOPE_OLLAMA_MODEL"); model != "" {
		c.Analyze.OllamaModel = model
	}
	if langs := os.Getenv("PINSCOPE_OCR_LANGUAGES"); langs != "" {
		c.Analyze.OCRLanguages = strings.Split(langs, ",")
	}
	if logLevel := os.Getenv("PINSCOPE_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".pinscope.yaml",
		".pinscope.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "pinscope", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "pinscope", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".pinscope.yaml"),
		filepath.Join(os.Getenv("HOME"), ".pinscope.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Pinterest.BaseURL == "" {
		errs = append(errs, errors.New("pinterest base URL is required"))
	}

	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		errs = append(errs, errors.New("viewport dimensions must be positive"))
	}
	if c.Browser.NavigationTimeout <= 0 {
		errs = append(errs, errors.New("navigation timeout must be positive"))
	}

	if c.Scrape.MaxImages <= 0 {
		errs = append(errs, errors.New("max images must be positive"))
	}
	if c.Scrape.ScrollCount < 0 {
		errs = append(errs, errors.New("scroll count cannot be negative"))
	}
	if c.Scrape.CaptureDelay < 0 {
		errs = append(errs, errors.New("capture delay cannot be negative"))
	}

	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, errors.New("max attempts cannot be negative"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if len(c.Analyze.Extensions) == 0 {
		errs = append(errs, errors.New("at least one image extension is required"))
	}
	if c.Analyze.CaptionEnabled && c.Analyze.OllamaURL == "" {
		errs = append(errs, errors.New("ollama URL is required when captions are enabled"))
	}
	validFormats := map[string]bool{
		"json": true, "csv": true, "xlsx": true, "both": true, "all": true,
	}
	if !validFormats[strings.ToLower(c.Analyze.Format)] {
		errs = append(errs, errors.New("invalid export format"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if cookie, ok := flags["session-cookie"].(string); ok && cookie != "" {
		c.Pinterest.SessionCookie = cookie
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if count, ok := flags["count"].(int); ok && count > 0 {
		c.Scrape.MaxImages = count
	}
	if scrolls, ok := flags["scroll-count"].(int); ok && scrolls >= 0 {
		c.Scrape.ScrollCount = scrolls
	}
	if delay, ok := flags["capture-delay"].(time.Duration); ok && delay >= 0 {
		c.Scrape.CaptureDelay = delay
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if ollamaURL, ok := flags["ollama-url"].(string); ok && ollamaURL != "" {
		c.Analyze.OllamaURL = ollamaURL
	}
	if model, ok := flags["model"].(string); ok && model != "" {
		c.Analyze.OllamaModel = model
	}
	if format, ok := flags["format"].(string); ok && format != "" {
		c.Analyze.Format = format
	}
	if caption, ok := flags["caption"].(bool); ok {
		c.Analyze.CaptionEnabled = caption
	}
	if langs, ok := flags["ocr-languages"].([]string); ok && len(langs) > 0 {
		c.Analyze.OCRLanguages = langs
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".pinscope.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
