// Package media copies remote media assets into the configured object
// store, returning stable URLs that outlive the upstream CDN's signed
// links. Relocation is strictly best-effort: any fetch or upload failure
// falls back to the original URL, and the overall scrape never fails
// because of it.
//
// Keys are deterministic, derived from the owning subject and the asset's
// position within it, so re-scraping a profile overwrites assets in place
// instead of accumulating copies.
package media
