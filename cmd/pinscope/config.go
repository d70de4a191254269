package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pinscope/pkg/config"
	"pinscope/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage Pinscope configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.pinscope.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values

Sensitive values like the session cookie will be masked.`,
	Run: runConfigShow,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Required fields
  - Value types and ranges
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".pinscope.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# Pinscope Configuration File
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with PINSCOPE_
# For example: PINSCOPE_SESSION_COOKIE, PINSCOPE_OUTPUT_DIR

# Pinterest session settings
pinterest:
  # Base URL for searches
  base_url: "https://www.pinterest.com"

  # Session cookie (_pinterest_sess) from your browser (optional)
  # Prefer 'pinscope auth login' over putting the cookie here
  session_cookie: ""

  # User agent string (optional)
  # Leave empty to use default
  user_agent: ""

# Browser automation settings
browser:
  # Run the browser headless
  headless: true

  # Disable the Chromium sandbox (needed in some containers)
  no_sandbox: false

  # Path to a Chrome/Chromium binary (optional)
  bin: ""

  # Viewport size
  viewport_width: 1920
  viewport_height: 1080

  # Timeout for page navigation
  navigation_timeout: 30s

  # Timeout waiting for the first pin to appear
  selector_timeout: 10s

# Capture behaviour
scrape:
  # Maximum number of pins to capture per run
  max_images: 10

  # Number of page scrolls before capturing
  scroll_count: 3

  # Pause between scrolls
  scroll_pause: 1s

  # Fixed delay between captures
  capture_delay: 2s

  # Settle time after scrolling a pin into view
  settle_delay: 500ms

# Retry configuration
retry:
  # Maximum number of attempts for transient failures
  max_attempts: 3

  # Initial backoff duration
  base_delay: 1s

  # Maximum backoff duration
  max_delay: 30s

  # Backoff multiplier
  backoff_multiplier: 2.0

# Output settings
output:
  # Directory for captured screenshots
  base_directory: "./pinterest_images"

  # Overwrite files that already exist
  overwrite_existing: false

  # Write a pins.json metadata sidecar next to the screenshots
  metadata_sidecar: true

# Image analysis settings
analyze:
  # File extensions to analyze
  extensions: [".png", ".jpg", ".jpeg", ".bmp", ".gif", ".webp"]

  # Tesseract language codes
  ocr_languages: ["eng"]

  # Generate captions with a local vision model
  caption_enabled: true

  # Ollama server URL
  ollama_url: "http://localhost:11434"

  # Vision model name
  ollama_model: "llava"

  # Timeout per caption request
  caption_timeout: 60s

  # Caption request rate limit
  captions_per_second: 1.0

  # Export format: json, csv, xlsx, both, all
  format: "json"

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to stderr only
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file to suit your setup")
	fmt.Println("2. Run 'pinscope config validate' to check the configuration")
	fmt.Println("3. Start capturing with 'pinscope scrape <keywords>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Mask the session cookie for display
	displayCfg := *cfg
	if displayCfg.Pinterest.SessionCookie != "" {
		displayCfg.Pinterest.SessionCookie = maskSecret(displayCfg.Pinterest.SessionCookie)
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (PINSCOPE_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile == "" {
		possiblePaths := []string{
			".pinscope.yaml",
			".pinscope.yml",
			filepath.Join(os.Getenv("HOME"), ".pinscope.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "pinscope", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	var warnings []string
	var errors []string

	if cfg.Pinterest.SessionCookie == "" {
		warnings = append(warnings, "No session cookie configured, searches will run logged out")
	}

	if cfg.Output.BaseDirectory != "" {
		if err := os.MkdirAll(cfg.Output.BaseDirectory, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create output directory: %v", err))
		}
	}

	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	if cfg.Scrape.MaxImages > 100 {
		warnings = append(warnings, "max_images above 100 may require many scrolls to load")
	}
	if cfg.Retry.MaxAttempts > 10 {
		errors = append(errors, "max_attempts must be between 0 and 10")
	}
	if cfg.Analyze.CaptionsPerSecond <= 0 {
		errors = append(errors, "captions_per_second must be positive")
	}

	if len(errors) > 0 {
		ui.PrintError("Configuration has errors:", "")
		for _, err := range errors {
			fmt.Printf("  - %s\n", err)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Output directory: %s\n", cfg.Output.BaseDirectory)
	fmt.Printf("  Max images: %d\n", cfg.Scrape.MaxImages)
	fmt.Printf("  Capture delay: %s\n", cfg.Scrape.CaptureDelay)
	fmt.Printf("  Export format: %s\n", cfg.Analyze.Format)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
