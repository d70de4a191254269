// Package auth manages Pinterest browser sessions for the scraper.
//
// A session is the _pinterest_sess cookie plus an optional user agent,
// stored under a profile name. Storage falls back through three
// backends: the system keychain, an AES-GCM encrypted file, and
// environment variables.
package auth
