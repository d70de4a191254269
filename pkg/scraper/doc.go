// Package scraper orchestrates the capture flow: open the search
// results, scroll to load pins, screenshot each thumbnail with a fixed
// pacing delay, and save the results with a metadata sidecar. Runs are
// checkpointed so an interrupted capture can resume.
package scraper
