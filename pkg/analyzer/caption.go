package analyzer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"pinscope/pkg/config"
	errs "pinscope/pkg/errors"
	"pinscope/pkg/logger"
)

// captionPrompt asks the vision model for BLIP-style output: one plain
// sentence, no lists, no preamble.
const captionPrompt = "Describe this image in one short sentence. Respond with only the sentence."

// Captioner generates a natural-language caption for an image
type Captioner interface {
	Caption(ctx context.Context, imagePath string) (string, error)
	Healthy(ctx context.Context) bool
}

// OllamaCaptioner calls a local Ollama vision model over HTTP
type OllamaCaptioner struct {
	baseURL string
	model   string
	client  *http.Client
	limiter *rate.Limiter
	logger  logger.Logger
}

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Stream bool     `json:"stream"`
	Images []string `json:"images"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewOllamaCaptioner creates a captioner from the analyze configuration
func NewOllamaCaptioner(cfg config.AnalyzeConfig, log logger.Logger) *OllamaCaptioner {
	return &OllamaCaptioner{
		baseURL: strings.TrimRight(cfg.OllamaURL, "/"),
		model:   cfg.OllamaModel,
		client:  &http.Client{Timeout: cfg.CaptionTimeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.CaptionsPerSecond), 1),
		logger:  log,
	}
}

// Caption generates a caption for the image at the given path. Calls
// are paced by the configured rate limit.
func (o *OllamaCaptioner) Caption(ctx context.Context, imagePath string) (string, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return "", err
	}

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeCaption, "failed to read image", err)
	}

	reqBody := generateRequest{
		Model:  o.model,
		Prompt: captionPrompt,
		Stream: false,
		Images: []string{base64.StdEncoding.EncodeToString(imageData)},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeCaption, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeCaption, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := o.client.Do(req)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeCaption, "caption request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		// Caption errors are retryable by type; downgrade to unknown
		// for statuses where a retry cannot help.
		errType := errs.ErrorTypeCaption
		if !errs.IsRetryableStatusCode(resp.StatusCode) {
			errType = errs.ErrorTypeUnknown
		}
		return "", errs.New(errType, fmt.Sprintf("caption backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", errs.Wrap(errs.ErrorTypeCaption, "failed to decode response", err)
	}

	caption := strings.TrimSpace(result.Response)
	o.logger.DebugWithFields("Caption generated", map[string]interface{}{
		"image":       imagePath,
		"model":       result.Model,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return caption, nil
}

// Healthy reports whether the caption backend is reachable. The
// analyzer degrades to OCR-only when it is not.
func (o *OllamaCaptioner) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
