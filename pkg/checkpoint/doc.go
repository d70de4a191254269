// Package checkpoint provides resume support for interrupted scrape sessions.
//
// A checkpoint is stored per keyword slug in the platform data directory
// and records which pin indexes were already captured. Saves are atomic
// (temp file + fsync + rename) so a crash mid-save never corrupts the
// previous checkpoint.
//
// Usage:
//
//	mgr, err := checkpoint.NewManager(slug)
//	cp, _ := mgr.Load()          // nil when no checkpoint exists
//	if cp == nil {
//	    cp, _ = mgr.Create(keywords, slug)
//	}
//	if !cp.IsCaptured(idx) {
//	    // capture, then:
//	    mgr.RecordCapture(cp, idx, filename)
//	}
package checkpoint
