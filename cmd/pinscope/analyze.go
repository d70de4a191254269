package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"pinscope/pkg/analyzer"
	"pinscope/pkg/config"
	"pinscope/pkg/logger"
	"pinscope/pkg/ui"
)

var (
	// Analyze command flags
	analyzeOutput  string
	exportFormat   string
	ollamaModel    string
	ollamaURL      string
	captionEnabled bool
	ocrLanguages   []string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <input-dir>",
	Short: "Extract keywords from a directory of images",
	Long: `Run OCR and a local vision model over every image in a directory,
merge the extracted text and caption into a deduplicated keyword list
per image, and export the results.

Captions come from an Ollama server (llava by default). When the
server is unreachable the run degrades to OCR-only instead of failing.
Supported export formats: json, csv, xlsx, both (json+csv), all.`,
	Example: `  # Analyze captured screenshots with defaults
  pinscope analyze ./pinterest_images

  # Export to CSV and JSON with a custom model
  pinscope analyze ./pinterest_images --format both --model bakllava

  # OCR only, no caption backend
  pinscope analyze ./pinterest_images --caption=false

  # Multi-language OCR
  pinscope analyze ./pinterest_images --ocr-languages eng,deu`,
	Args: cobra.ExactArgs(1),
	Run:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "results.json", "output file path (extension follows format)")
	analyzeCmd.Flags().StringVar(&exportFormat, "format", "", "export format: json, csv, xlsx, both, all (default: json)")
	analyzeCmd.Flags().StringVar(&ollamaModel, "model", "", "Ollama vision model for captions (default: llava)")
	analyzeCmd.Flags().StringVar(&ollamaURL, "ollama-url", "", "Ollama server URL (default: http://localhost:11434)")
	analyzeCmd.Flags().BoolVar(&captionEnabled, "caption", true, "generate captions with the vision model")
	analyzeCmd.Flags().StringSliceVar(&ocrLanguages, "ocr-languages", nil, "Tesseract language codes (default: eng)")
}

func runAnalyze(cmd *cobra.Command, args []string) {
	inputDir := args[0]

	flags := make(map[string]interface{})
	if exportFormat != "" {
		flags["format"] = exportFormat
	}
	if ollamaModel != "" {
		flags["model"] = ollamaModel
	}
	if ollamaURL != "" {
		flags["ollama-url"] = ollamaURL
	}
	if cmd.Flags().Changed("caption") {
		flags["caption"] = captionEnabled
	}
	if len(ocrLanguages) > 0 {
		flags["ocr-languages"] = ocrLanguages
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

	ui.PrintInfo("Input directory", inputDir)
	ui.PrintInfo("Export format", cfg.Analyze.Format)

	extractor, err := analyzer.NewTesseractExtractor(cfg.Analyze.OCRLanguages)
	if err != nil {
		ui.PrintError("Failed to initialize OCR", err.Error())
		os.Exit(1)
	}
	defer extractor.Close()

	captioner := analyzer.NewOllamaCaptioner(cfg.Analyze, logger.GetLogger())
	a := analyzer.New(cfg.Analyze, extractor, captioner, logger.GetLogger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := a.AnalyzeDirectory(ctx, inputDir)
	if err != nil {
		logger.WithError(err).WithField("directory", inputDir).Error("Analysis failed")
		ui.PrintError("ANALYSIS FAILED", err.Error())
		os.Exit(1)
	}

	if len(results) == 0 {
		ui.PrintWarning("No images found to analyze")
		return
	}

	written, err := analyzer.Export(results, analyzeOutput, cfg.Analyze.Format)
	if err != nil {
		ui.PrintError("Export failed", err.Error())
		os.Exit(1)
	}

	summary := analyzer.Summarize(results)
	printSummary(summary, written)
}

func printSummary(summary analyzer.Summary, files []string) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("ANALYSIS SUMMARY")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Images analyzed:    %d\n", summary.TotalImages)
	fmt.Printf("Total keywords:     %d\n", summary.TotalKeywords)
	fmt.Printf("Unique keywords:    %d\n", summary.UniqueKeywords)
	fmt.Printf("Average per image:  %.1f\n", summary.AverageKeywords)
	fmt.Println(strings.Repeat("=", 50))

	for _, f := range files {
		ui.PrintSuccess(fmt.Sprintf("Results written to %s", f))
	}
}
