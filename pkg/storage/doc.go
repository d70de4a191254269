// Package storage provides file management for captured screenshots.
//
// The Manager type maintains an in-memory cache of saved files for fast
// duplicate detection and writes atomically (temp file + rename) to
// prevent corruption from interrupted runs.
//
// Usage:
//
//	manager, err := storage.NewManager("pinterest_images")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if !manager.Exists(filename) {
//	    if _, err := manager.SaveImage(pngBytes, filename); err != nil {
//	        log.Printf("Failed to save screenshot: %v", err)
//	    }
//	}
package storage
