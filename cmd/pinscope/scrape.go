package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pinscope/pkg/auth"
	"pinscope/pkg/config"
	"pinscope/pkg/logger"
	"pinscope/pkg/scraper"
	"pinscope/pkg/ui"
)

var (
	// Scrape command flags
	outputDir     string
	imageCount    int
	scrollCount   int
	captureDelay  time.Duration
	headless      bool
	sessionCookie string
	profileName   string
	resumeRun     bool
	forceRestart  bool
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <keywords...>",
	Short: "Capture pin screenshots from a Pinterest search",
	Long: `Open a Pinterest search for the given keywords in a headless browser,
scroll the results feed to load more pins, and screenshot each pin
thumbnail to the output directory.

Captures are paced with a fixed delay and each file is named
<keywords>_<timestamp>_<index>.png. A session cookie is optional;
searches work logged out, but a stored session surfaces more results
(use 'pinscope auth login' to store one).`,
	Example: `  # Capture with default settings
  pinscope scrape vintage posters

  # Capture 25 pins after 6 scrolls to a specific directory
  pinscope scrape vintage posters --count 25 --scroll-count 6 --output ./pins

  # Use a stored session profile
  pinscope scrape vintage posters --profile personal

  # Resume an interrupted run
  pinscope scrape vintage posters --resume

  # Force restart, ignoring the existing checkpoint
  pinscope scrape vintage posters --force-restart`,
	Args: cobra.MinimumNArgs(1),
	Run:  runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for screenshots (default: ./pinterest_images)")
	scrapeCmd.Flags().IntVarP(&imageCount, "count", "n", 10, "maximum number of pins to capture")
	scrapeCmd.Flags().IntVar(&scrollCount, "scroll-count", 3, "number of page scrolls before capturing")
	scrapeCmd.Flags().DurationVar(&captureDelay, "capture-delay", 2*time.Second, "fixed delay between captures")
	scrapeCmd.Flags().BoolVar(&headless, "headless", true, "run the browser headless")
	scrapeCmd.Flags().StringVar(&sessionCookie, "session-cookie", "", "Pinterest session cookie value")
	scrapeCmd.Flags().StringVarP(&profileName, "profile", "a", "", "use a specific stored session profile")
	scrapeCmd.Flags().BoolVar(&resumeRun, "resume", false, "resume from last checkpoint")
	scrapeCmd.Flags().BoolVar(&forceRestart, "force-restart", false, "force restart, ignoring existing checkpoint")
}

func runScrape(cmd *cobra.Command, args []string) {
	keywords := strings.TrimSpace(strings.Join(args, " "))
	ui.PrintInfo("Search keywords", keywords)

	// Build flags map from command line
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if cmd.Flags().Changed("count") {
		flags["count"] = imageCount
	}
	if cmd.Flags().Changed("scroll-count") {
		flags["scroll-count"] = scrollCount
	}
	if cmd.Flags().Changed("capture-delay") {
		flags["capture-delay"] = captureDelay
	}
	if cmd.Flags().Changed("headless") {
		flags["headless"] = headless
	}
	if sessionCookie != "" {
		flags["session-cookie"] = sessionCookie
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	logger.WithField("version", version).Info("Pinscope starting")

	// A session is optional. Explicit cookie wins, then a stored
	// profile, then whatever the config/env provided.
	if cfg.Pinterest.SessionCookie == "" {
		if manager, err := auth.NewManager(); err == nil {
			var session *auth.Session
			if profileName != "" {
				session, err = manager.Retrieve(profileName)
				if err != nil {
					ui.PrintError("Profile not found", profileName)
					ui.PrintInfo("Available profiles", "Use 'pinscope auth list' to see stored sessions")
					os.Exit(1)
				}
			} else {
				session, _ = manager.RetrieveDefault()
			}
			if session != nil {
				cfg.Pinterest.SessionCookie = session.Cookie
				if session.UserAgent != "" {
					cfg.Pinterest.UserAgent = session.UserAgent
				}
				logger.WithField("profile", session.Profile).Info("Using stored session")
				ui.PrintInfo("Using session", session.Profile)
			}
		}
	}
	if cfg.Pinterest.SessionCookie == "" {
		logger.Info("No session configured, browsing logged out")
	}

	// Ctrl-C should stop cleanly so the checkpoint survives for --resume
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := scraper.New(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize scraper", err.Error())
		os.Exit(1)
	}

	result, err := s.RunWithResume(ctx, keywords, resumeRun, forceRestart)
	if err != nil {
		logger.WithError(err).WithField("keywords", keywords).Error("Capture failed")
		ui.PrintError("CAPTURE FAILED", err.Error())
		os.Exit(1)
	}

	logger.WithFields(map[string]interface{}{
		"keywords": keywords,
		"captured": result.Captured,
	}).Info("Capture completed successfully")

	fmt.Printf("\nSaved %d screenshots to %s\n", result.Captured, result.OutputDir)
}
