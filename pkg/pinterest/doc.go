// Package pinterest drives a headless browser against Pinterest search
// results. It builds search URLs, scrolls the results feed to trigger
// lazy loading, locates pin thumbnails and screenshots them, and parses
// rendered HTML into pin metadata.
package pinterest
