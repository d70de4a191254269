// Package ratelimit provides request pacing for the Pinterest scraper
// and the caption backend.
//
// Available Implementations:
//
// Fixed Delay:
//   - Enforces a minimum pause between consecutive operations
//   - Used to space out screenshot captures (default 2s apart)
//
// Token Bucket:
//   - Fixed capacity bucket that refills after a specified period
//   - Suitable for burst traffic followed by quiet periods
//
// Sliding Window:
//   - Tracks requests within a moving time window
//   - More accurate rate limiting over time
//
// All rate limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait() - Block until a request is allowed
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	// Pace captures 2 seconds apart
//	pacer := ratelimit.NewFixedDelay(2 * time.Second)
//	for _, pin := range pins {
//	    pacer.Wait()
//	    capture(pin)
//	}
package ratelimit
